package ddns

import (
	"strings"

	"github.com/miekg/dns"
)

// DefaultTTL is the TTL in seconds written with every upsert.
const DefaultTTL = 300

// RecordType is a DNS record kind. Only address records are managed.
type RecordType string

const RecordTypeA RecordType = "A"

// ChangeAction is the mutation applied by a Change.
type ChangeAction string

// ChangeUpsert creates the record set if absent and replaces it wholesale otherwise.
const ChangeUpsert ChangeAction = "UPSERT"

// Zone is a hosted zone as listed by a Provider.
//
// ID is the raw, provider-namespaced identifier (e.g. "/hostedzone/Z123").
// Use ZoneID to get the bare identifier the other Provider calls expect.
type Zone struct {
	ID   string
	Name string
}

// RecordSet is every value stored under one (Name, Type) pair in a zone.
type RecordSet struct {
	Name   string // fully qualified, with trailing dot
	Type   RecordType
	Values []string
	TTL    int64
}

// Change is a single declarative mutation of one record set.
type Change struct {
	Action    ChangeAction
	RecordSet RecordSet
}

// FQDN builds the fully qualified record name "{subdomain}.{domain}.".
// A trailing dot already present on domain is not doubled.
func FQDN(subdomain, domain string) string {
	return dns.Fqdn(subdomain + "." + strings.TrimSuffix(domain, "."))
}

// upsertA builds the one change ApplyUpdate submits.
func upsertA(name, ip string) Change {
	return Change{
		Action: ChangeUpsert,
		RecordSet: RecordSet{
			Name:   name,
			Type:   RecordTypeA,
			Values: []string{ip},
			TTL:    DefaultTTL,
		},
	}
}
