package ddns

import (
	"context"
)

// Resolver looks up the caller's current external address.
type Resolver interface {
	Resolve(context.Context) (string, error)
}

// ResolverFunc adapts a plain function to a Resolver.
type ResolverFunc func(context.Context) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context) (string, error) {
	return f(ctx)
}

// Provider is the subset of a DNS provider API the reconciler consumes.
type Provider interface {
	// ListZones returns every zone visible to the account, in provider order.
	// Implementations must drain pagination before returning.
	ListZones(ctx context.Context) ([]Zone, error)

	// ListRecordSets returns record sets in zoneID starting at name.
	// The start name is a hint; other names may be returned as well.
	ListRecordSets(ctx context.Context, zoneID string, name string, recordType RecordType) ([]RecordSet, error)

	// ChangeRecordSets submits changes to zoneID as one batch.
	ChangeRecordSets(ctx context.Context, zoneID string, changes []Change) error
}
