package ddns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudflare/cloudflare-go"
	"github.com/go-logr/logr"
	"github.com/miekg/dns"
)

// cloudflareZonePrefix namespaces Cloudflare zone IDs the way the API paths do,
// so ZoneID extracts them the same way it does Route 53 IDs.
const cloudflareZonePrefix = "/zones/"

func newCloudflareProvider(token string, opts ...cloudflare.Option) (cf *cloudflareProvider, err error) {
	cf = new(cloudflareProvider)
	cf.token, cf.opts = token, opts
	cf.api, err = cloudflare.NewWithAPIToken(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating cloudflare api client: %w", err)
	}
	cf.logger = logr.Discard()
	cf.comment = "managed by ddns"
	return cf, err
}

// cloudflareProvider implements ddns.Provider.
//
// Cloudflare stores one record per value,
// so a RecordSet is assembled from every record sharing a name and type.
type cloudflareProvider struct {
	api     *cloudflare.API
	token   string
	opts    []cloudflare.Option
	logger  logr.Logger
	comment string // optional comment to attach to each new DNS entry
}

func (cf *cloudflareProvider) SetLogger(l logr.Logger) { cf.logger = l }

func (cf *cloudflareProvider) SetHTTPClient(c *http.Client) {
	api, err := cloudflare.NewWithAPIToken(cf.token, append(cf.opts, cloudflare.HTTPClient(c))...)
	if err != nil {
		// the token was accepted once already; only a nil client can fail here
		cf.logger.Error(err, "keeping default http client")
		return
	}
	cf.api = api
}

func (cf *cloudflareProvider) ListZones(ctx context.Context) ([]Zone, error) {
	zones, err := cf.api.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing zones: %w", err)
	}
	out := make([]Zone, 0, len(zones))
	for _, z := range zones {
		out = append(out, Zone{ID: cloudflareZonePrefix + z.ID, Name: dns.Fqdn(z.Name)})
	}
	return out, nil
}

func (cf *cloudflareProvider) ListRecordSets(ctx context.Context, zoneID, name string, recordType RecordType) ([]RecordSet, error) {
	records, err := cf.listRecords(ctx, zoneID, name, recordType)
	if err != nil {
		return nil, err
	}

	var sets []RecordSet
	index := map[string]int{}
	for _, r := range records {
		key := dns.Fqdn(r.Name) + "/" + r.Type
		i, found := index[key]
		if !found {
			i = len(sets)
			index[key] = i
			sets = append(sets, RecordSet{Name: dns.Fqdn(r.Name), Type: RecordType(r.Type), TTL: int64(r.TTL)})
		}
		sets[i].Values = append(sets[i].Values, r.Content)
	}
	return sets, nil
}

func (cf *cloudflareProvider) listRecords(ctx context.Context, zoneID, name string, recordType RecordType) ([]cloudflare.DNSRecord, error) {
	cf.logger.V(1).Info("looking up records", "zone", zoneID, "name", name, "type", recordType)
	records, _, err := cf.api.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.ListDNSRecordsParams{
		Type: string(recordType),
		Name: strings.TrimSuffix(name, "."),
	})
	if err != nil {
		return nil, fmt.Errorf("error listing DNS records: %w", err)
	}
	cf.logger.V(1).Info("found existing records", "count", len(records))
	return records, nil
}

// ChangeRecordSets applies upserts by deleting records whose content is not wanted
// and creating records for values that don't exist yet.
// Cloudflare has no batch endpoint, so a failure part way through leaves earlier steps applied.
func (cf *cloudflareProvider) ChangeRecordSets(ctx context.Context, zoneID string, changes []Change) error {
	for _, c := range changes {
		if c.Action != ChangeUpsert {
			return fmt.Errorf("cloudflare: unsupported change action %q", c.Action)
		}
		if err := cf.upsert(ctx, zoneID, c.RecordSet); err != nil {
			return err
		}
	}
	return nil
}

func (cf *cloudflareProvider) upsert(ctx context.Context, zoneID string, rs RecordSet) error {
	records, err := cf.listRecords(ctx, zoneID, rs.Name, rs.Type)
	if err != nil {
		return err
	}

	wanted := map[string]bool{}
	for _, v := range rs.Values {
		wanted[v] = true
	}
	existing := map[string]bool{}
	var errs []error
	for _, r := range records {
		if dns.Fqdn(r.Name) != rs.Name {
			continue
		}
		if wanted[r.Content] && !existing[r.Content] && r.TTL == int(rs.TTL) {
			existing[r.Content] = true
			cf.logger.V(1).Info("existing record is in the set of new values", "value", r.Content)
			continue
		}

		cf.logger.V(1).Info("deleting DNS record", "id", r.ID, "value", r.Content)
		if err := cf.api.DeleteDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), r.ID); err != nil {
			errs = append(errs, fmt.Errorf("unable to delete DNS record %s: %w", r.ID, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, v := range rs.Values {
		if existing[v] {
			continue
		}
		cf.logger.V(1).Info("creating DNS record", "name", rs.Name, "value", v)
		_, err := cf.api.CreateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.CreateDNSRecordParams{
			Type:    string(rs.Type),
			Name:    strings.TrimSuffix(rs.Name, "."),
			Content: v,
			ZoneID:  zoneID,
			TTL:     int(rs.TTL),
			Comment: cf.comment,
		})
		if err != nil {
			return fmt.Errorf("error creating DNS record: %w", err)
		}
	}
	return nil
}
