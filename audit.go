package ddns

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// NeedsUpdate reports whether the A record for subdomain.domain in zoneID differs from ip.
//
// The record must already exist and hold at least one value.
// Every value is compared, so a record holding ip plus any other address is out of date.
func NeedsUpdate(ctx context.Context, p Provider, zoneID, ip, domain, subdomain string, log logr.Logger) (bool, error) {
	name := FQDN(subdomain, domain)
	sets, err := p.ListRecordSets(ctx, zoneID, name, RecordTypeA)
	if err != nil {
		return false, fmt.Errorf("%w: listing record sets for %s: %w", ErrNetwork, name, err)
	}

	rs, found := findRecordSet(sets, name, RecordTypeA)
	if !found {
		return false, fmt.Errorf("%w: %s %s in zone %s", ErrRecordNotFound, RecordTypeA, name, zoneID)
	}
	if len(rs.Values) == 0 {
		return false, fmt.Errorf("%w: %s", ErrEmptyRecord, name)
	}

	for _, v := range rs.Values {
		if v != ip {
			log.Info("record is out of date", "name", name, "current", v, "ip", ip)
			return true, nil
		}
	}
	log.Info("record is up to date", "name", name, "ip", ip)
	return false, nil
}

// findRecordSet returns the first record set named exactly name.
func findRecordSet(sets []RecordSet, name string, recordType RecordType) (RecordSet, bool) {
	for _, rs := range sets {
		if rs.Name == name && rs.Type == recordType {
			return rs, true
		}
	}
	return RecordSet{}, false
}
