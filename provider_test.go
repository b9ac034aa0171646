package ddns_test

import (
	"context"
	"sync"

	"github.com/Travis-Britz/route53-ddns"
)

// fakeProvider is an in-memory Provider with upsert semantics.
type fakeProvider struct {
	mu        sync.Mutex
	zones     []ddns.Zone
	sets      map[string][]ddns.RecordSet // key: bare zone ID
	batches   [][]ddns.Change
	listErr   error
	recordErr error
	changeErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		zones: []ddns.Zone{{ID: "/hostedzone/Z123", Name: "example.com."}},
		sets: map[string][]ddns.RecordSet{
			"Z123": {
				{Name: "example.com.", Type: "NS", Values: []string{"ns-1.awsdns-00.com."}, TTL: 172800},
				{Name: "home.example.com.", Type: ddns.RecordTypeA, Values: []string{"1.2.3.4"}, TTL: 300},
			},
		},
	}
}

func (f *fakeProvider) ListZones(context.Context) ([]ddns.Zone, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.zones, nil
}

// ListRecordSets ignores the start hint and returns the whole zone, which a real provider is allowed to do.
func (f *fakeProvider) ListRecordSets(_ context.Context, zoneID, _ string, _ ddns.RecordType) ([]ddns.RecordSet, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ddns.RecordSet, len(f.sets[zoneID]))
	copy(out, f.sets[zoneID])
	return out, nil
}

func (f *fakeProvider) ChangeRecordSets(_ context.Context, zoneID string, changes []ddns.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, changes)
	if f.changeErr != nil {
		return f.changeErr
	}
	for _, c := range changes {
		replaced := false
		for i, rs := range f.sets[zoneID] {
			if rs.Name == c.RecordSet.Name && rs.Type == c.RecordSet.Type {
				f.sets[zoneID][i] = c.RecordSet
				replaced = true
			}
		}
		if !replaced {
			f.sets[zoneID] = append(f.sets[zoneID], c.RecordSet)
		}
	}
	return nil
}

func (f *fakeProvider) record(zoneID, name string) (ddns.RecordSet, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rs := range f.sets[zoneID] {
		if rs.Name == name && rs.Type == ddns.RecordTypeA {
			return rs, true
		}
	}
	return ddns.RecordSet{}, false
}

func (f *fakeProvider) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func staticIP(ip string) ddns.Resolver {
	return ddns.ResolverFunc(func(context.Context) (string, error) { return ip, nil })
}
