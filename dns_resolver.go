package ddns

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-logr/logr"
	"github.com/miekg/dns"
)

const (
	// OpenDNS answers this name with the address the query came from.
	DefaultDNSIPName   = "myip.opendns.com."
	DefaultDNSIPServer = "resolver1.opendns.com:53"
)

// DNSResolver constructs a resolver that learns the external IPv4 address from a DNS server
// that echoes the querying address back, such as OpenDNS.
// Empty arguments select DefaultDNSIPName and DefaultDNSIPServer.
// A server without a port is queried on port 53.
func DNSResolver(name, server string) Resolver {
	if name == "" {
		name = DefaultDNSIPName
	}
	if server == "" {
		server = DefaultDNSIPServer
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &dnsResolver{
		name:   dns.Fqdn(name),
		server: server,
		client: &dns.Client{Timeout: 5 * time.Second},
		logger: logr.Discard(),
	}
}

type dnsResolver struct {
	name   string
	server string
	client *dns.Client
	logger logr.Logger
}

func (r *dnsResolver) SetLogger(l logr.Logger) { r.logger = l }

// Resolve implements ddns.Resolver.
func (r *dnsResolver) Resolve(ctx context.Context) (string, error) {
	m := new(dns.Msg)
	m.SetQuestion(r.name, dns.TypeA)
	in, rtt, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return "", fmt.Errorf("%w: querying %s for %s: %w", ErrNetwork, r.server, r.name, err)
	}
	r.logger.V(1).Info("dns exchange", "server", r.server, "name", r.name, "rcode", dns.RcodeToString[in.Rcode], "rtt", rtt)
	if in.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("%w: %s answered %s for %s", ErrParse, r.server, dns.RcodeToString[in.Rcode], r.name)
	}
	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			ip := a.A.String()
			r.logger.V(1).Info("lookup succeeded", "ip", ip, "server", r.server)
			return ip, nil
		}
	}
	return "", fmt.Errorf("%w: %s returned no A record for %s", ErrParse, r.server, r.name)
}
