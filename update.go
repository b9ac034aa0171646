package ddns

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// ApplyUpdate upserts the A record for subdomain.domain in zoneID to ip with DefaultTTL.
// Any values previously stored on the record are replaced, not merged.
func ApplyUpdate(ctx context.Context, p Provider, zoneID, ip, domain, subdomain string, log logr.Logger) error {
	change := upsertA(FQDN(subdomain, domain), ip)
	log.V(1).Info("submitting change", "zone", zoneID, "action", change.Action, "name", change.RecordSet.Name, "value", ip, "ttl", change.RecordSet.TTL)

	if err := p.ChangeRecordSets(ctx, zoneID, []Change{change}); err != nil {
		return fmt.Errorf("%w: %s %s -> %s: %w", ErrUpdateRejected, change.Action, change.RecordSet.Name, ip, err)
	}
	log.Info("record updated", "name", change.RecordSet.Name, "ip", ip)
	return nil
}
