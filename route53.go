package ddns

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"github.com/go-logr/logr"
)

// FallbackRegion is used when neither the caller nor the environment/profile names a region.
const FallbackRegion = "us-east-1"

// LoadAWSConfig loads the shared AWS configuration.
// The region is taken from region when set,
// otherwise from the SDK's default chain (environment, shared profile),
// and finally FallbackRegion.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("error loading aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = FallbackRegion
	}
	return cfg, nil
}

// route53API is the slice of *route53.Client used by route53Provider.
type route53API interface {
	route53.ListHostedZonesAPIClient
	ListResourceRecordSets(context.Context, *route53.ListResourceRecordSetsInput, ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
	ChangeResourceRecordSets(context.Context, *route53.ChangeResourceRecordSetsInput, ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

func newRoute53Provider(cfg aws.Config) *route53Provider {
	return &route53Provider{
		cfg:     cfg,
		api:     route53.NewFromConfig(cfg),
		logger:  logr.Discard(),
		comment: "managed by ddns",
	}
}

// route53Provider implements ddns.Provider for Amazon Route 53.
type route53Provider struct {
	cfg     aws.Config
	api     route53API
	logger  logr.Logger
	comment string // attached to every change batch
}

func (p *route53Provider) SetLogger(l logr.Logger) { p.logger = l }

func (p *route53Provider) SetHTTPClient(c *http.Client) {
	p.cfg.HTTPClient = c
	p.api = route53.NewFromConfig(p.cfg)
}

func (p *route53Provider) ListZones(ctx context.Context) ([]Zone, error) {
	var zones []Zone
	pager := route53.NewListHostedZonesPaginator(p.api, &route53.ListHostedZonesInput{})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("route53: list hosted zones: %w", err)
		}
		for _, hz := range page.HostedZones {
			zones = append(zones, Zone{ID: aws.ToString(hz.Id), Name: aws.ToString(hz.Name)})
		}
	}
	return zones, nil
}

// ListRecordSets returns one page of record sets starting at name.
// Route 53 sorts record sets by name and type, so the set named name, if it exists, is at the head of that page.
func (p *route53Provider) ListRecordSets(ctx context.Context, zoneID, name string, recordType RecordType) ([]RecordSet, error) {
	out, err := p.api.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(zoneID),
		StartRecordName: aws.String(name),
		StartRecordType: types.RRType(recordType),
	})
	if err != nil {
		return nil, fmt.Errorf("route53: list resource record sets: %w", err)
	}
	p.logger.V(1).Info("listed resource record sets", "zone", zoneID, "start", name, "count", len(out.ResourceRecordSets), "truncated", out.IsTruncated)

	sets := make([]RecordSet, 0, len(out.ResourceRecordSets))
	for _, rrs := range out.ResourceRecordSets {
		rs := RecordSet{
			Name: aws.ToString(rrs.Name),
			Type: RecordType(rrs.Type),
			TTL:  aws.ToInt64(rrs.TTL),
		}
		for _, rr := range rrs.ResourceRecords {
			rs.Values = append(rs.Values, aws.ToString(rr.Value))
		}
		sets = append(sets, rs)
	}
	return sets, nil
}

func (p *route53Provider) ChangeRecordSets(ctx context.Context, zoneID string, changes []Change) error {
	batch := &types.ChangeBatch{Comment: aws.String(p.comment)}
	for _, c := range changes {
		rrs := &types.ResourceRecordSet{
			Name: aws.String(c.RecordSet.Name),
			Type: types.RRType(c.RecordSet.Type),
			TTL:  aws.Int64(c.RecordSet.TTL),
		}
		for _, v := range c.RecordSet.Values {
			rrs.ResourceRecords = append(rrs.ResourceRecords, types.ResourceRecord{Value: aws.String(v)})
		}
		batch.Changes = append(batch.Changes, types.Change{
			Action:            types.ChangeAction(c.Action),
			ResourceRecordSet: rrs,
		})
	}

	out, err := p.api.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch:  batch,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("route53 rejected change batch with %s: %w", apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("route53: change resource record sets: %w", err)
	}
	if out.ChangeInfo != nil {
		p.logger.V(1).Info("change submitted", "id", aws.ToString(out.ChangeInfo.Id), "status", out.ChangeInfo.Status)
	}
	return nil
}
