/*
Package ddns keeps a single DNS address record pointed at the caller's public IP.

A run resolves the external address with a [Resolver],
finds the hosted zone for a domain with a [Provider],
checks the subdomain's A record and upserts it only when it no longer matches.

Usage will usually start with [ddns.New],
which returns the DDNSClient implementation.
New requires a domain and subdomain plus a provider option such as [UsingRoute53] or [UsingCloudflare].
Additional client configuration options are listed in the docs for New.
[Run] is a shortcut for a one-off Route53 run.

The individual stages ([ListZones], [ResolveZone], [NeedsUpdate], [ApplyUpdate])
are exported so they can be composed against any Provider.
*/
package ddns
