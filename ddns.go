package ddns

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/cloudflare/cloudflare-go"
	"github.com/go-logr/logr"
)

// MinInterval is the shortest interval RunDaemon will wait between runs.
const MinInterval = 1 * time.Minute

// New returns a client that keeps the A record subdomain.domain pointed at the caller's external IP.
//
// A provider option (UsingRoute53, UsingCloudflare or UsingProvider) is required.
// The default resolver is WebResolver(DefaultIPService, DefaultIPField).
func New(domain, subdomain string, options ...Option) (DDNSClient, error) {
	if domain == "" {
		return nil, fmt.Errorf("ddns.New: domain cannot be empty")
	}
	if subdomain == "" {
		return nil, fmt.Errorf("ddns.New: subdomain cannot be empty")
	}
	c := &client{
		domain:    domain,
		subdomain: subdomain,
		logger:    logr.Discard(),
	}
	for i, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("ddns.New: option %d returned an error: %w", i, err)
		}
	}

	if c.Provider == nil {
		return nil, fmt.Errorf("ddns.New: no DNS provider was registered and there is no default option - use ddns.UsingRoute53 or similar")
	}
	if c.Resolver == nil {
		r, err := WebResolver(DefaultIPService, DefaultIPField)
		if err != nil {
			return nil, fmt.Errorf("ddns.New: %w", err)
		}
		c.Resolver = r
	}

	// options can be given in any order, so the logger and http client reach the dependencies only once all are registered
	c.propagate()
	return c, nil
}

// Option configures a client built by New.
type Option func(*client) error

// UsingRoute53 manages the record in Amazon Route 53. See LoadAWSConfig.
func UsingRoute53(cfg aws.Config) Option {
	return func(c *client) error {
		c.Provider = newRoute53Provider(cfg)
		return nil
	}
}

// UsingCloudflare manages the record in Cloudflare DNS using an API token with Zone.DNS edit rights.
func UsingCloudflare(token string, opts ...cloudflare.Option) Option {
	return func(c *client) (err error) {
		if c.Provider, err = newCloudflareProvider(token, opts...); err != nil {
			return fmt.Errorf("ddns.UsingCloudflare: error creating cloudflare DNS provider: %w", err)
		}
		return nil
	}
}

// UsingProvider registers any Provider implementation.
func UsingProvider(p Provider) Option {
	return func(c *client) error {
		if p == nil {
			return fmt.Errorf("provider cannot be nil")
		}
		c.Provider = p
		return nil
	}
}

func UsingResolver(resolver Resolver) Option {
	return func(c *client) error {
		c.Resolver = resolver
		return nil
	}
}

func UsingWebResolver(serviceURL, field string) Option {
	return func(c *client) (err error) {
		c.Resolver, err = WebResolver(serviceURL, field)
		return err
	}
}

func UsingDNSResolver(name, server string) Option {
	return func(c *client) error {
		c.Resolver = DNSResolver(name, server)
		return nil
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(c *client) error {
		c.logger = logger
		return nil
	}
}

func UsingHTTPClient(httpclient *http.Client) Option {
	return func(c *client) error {
		if httpclient == nil {
			httpclient = http.DefaultClient
		}
		c.httpClient = httpclient
		return nil
	}
}

// DryRun makes Run audit the record without ever submitting a change.
func DryRun() Option {
	return func(c *client) error {
		c.dryRun = true
		return nil
	}
}

func (c *client) propagate() {
	type setLogger interface {
		SetLogger(logr.Logger)
	}
	type setHTTPClient interface {
		SetHTTPClient(*http.Client)
	}

	deps := map[string]any{"resolver": c.Resolver, "provider": c.Provider}
	for name, dep := range deps {
		if s, ok := dep.(setLogger); ok {
			s.SetLogger(c.logger.WithName(name))
		}
		if s, ok := dep.(setHTTPClient); ok && c.httpClient != nil {
			s.SetHTTPClient(c.httpClient)
		}
	}
}

type DDNSClient interface {
	Run(ctx context.Context) (Result, error)
}

type client struct {
	Resolver
	Provider
	logger     logr.Logger
	httpClient *http.Client
	domain     string
	subdomain  string
	dryRun     bool
}

// State is a step of a single run.
type State int

const (
	StateStart State = iota
	StateIPResolved
	StateZoneResolved
	StateAudited
	StateUpdated
	StateSkipped
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateIPResolved:
		return "ip-resolved"
	case StateZoneResolved:
		return "zone-resolved"
	case StateAudited:
		return "audited"
	case StateUpdated:
		return "updated"
	case StateSkipped:
		return "skipped"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result describes how far a run got and what it observed.
type Result struct {
	State   State // StateDone or StateFailed
	Reached State // last step completed; where a failed run stopped
	IP      string
	Zone    Zone
	ZoneID  string
	Name    string // fully qualified record name
	Stale   bool   // the record did not match IP
	Updated bool
}

// Run resolves the external IP, finds the zone, audits the record and upserts it when stale.
// Any failure ends the run; the error is returned as the failing step produced it.
func (c *client) Run(ctx context.Context) (Result, error) {
	res := Result{State: StateStart, Reached: StateStart, Name: FQDN(c.subdomain, c.domain)}
	log := c.logger.WithValues("record", res.Name)
	enter := func(stage string) {
		log.V(1).Info("stage entered", "stage", stage, "after", res.Reached)
	}
	advance := func(s State) {
		res.Reached = s
		log.V(1).Info("stage complete", "stage", s)
	}
	fail := func(err error) (Result, error) {
		res.State = StateFailed
		log.Error(err, "run failed", "after", res.Reached)
		observeRun(outcomeFailed)
		return res, err
	}

	enter("resolve-ip")
	ip, err := c.Resolve(ctx)
	if err != nil {
		return fail(err)
	}
	res.IP = ip
	log.Info("got external IP address", "ip", ip)
	advance(StateIPResolved)

	enter("resolve-zone")
	zones, err := ListZones(ctx, c.Provider, log)
	if err != nil {
		return fail(err)
	}
	zone, zoneID, err := ResolveZone(zones, c.domain)
	if err != nil {
		return fail(err)
	}
	res.Zone, res.ZoneID = zone, zoneID
	log.Info("resolved hosted zone", "zone", zone.Name, "id", zoneID)
	advance(StateZoneResolved)

	enter("audit")
	stale, err := NeedsUpdate(ctx, c.Provider, zoneID, ip, c.domain, c.subdomain, log)
	if err != nil {
		return fail(err)
	}
	res.Stale = stale
	advance(StateAudited)

	if !stale || c.dryRun {
		if stale {
			log.Info("dry run, leaving stale record in place", "ip", ip)
		}
		advance(StateSkipped)
		res.State = StateDone
		observeRun(outcomeSkipped)
		return res, nil
	}

	enter("update")
	if err := ApplyUpdate(ctx, c.Provider, zoneID, ip, c.domain, c.subdomain, log); err != nil {
		return fail(err)
	}
	res.Updated = true
	advance(StateUpdated)
	res.State = StateDone
	observeRun(outcomeUpdated)
	return res, nil
}

// Run performs one reconcile of subdomain.domain against Route 53.
// region may be empty; see LoadAWSConfig for the fallback chain.
func Run(ctx context.Context, region, domain, subdomain string, options ...Option) (Result, error) {
	fail := func(err error) (Result, error) {
		observeRun(outcomeFailed)
		return Result{State: StateFailed, Reached: StateStart, Name: FQDN(subdomain, domain)}, err
	}
	cfg, err := LoadAWSConfig(ctx, region)
	if err != nil {
		return fail(err)
	}
	c, err := New(domain, subdomain, append([]Option{UsingRoute53(cfg)}, options...)...)
	if err != nil {
		return fail(err)
	}
	return c.Run(ctx)
}

// RunDaemon runs ddnsClient immediately and then once per interval until ctx is done.
//
// Intervals shorter than MinInterval are raised to MinInterval.
// A failed run is logged and retried at the next tick; nothing carries over between runs.
func RunDaemon(ctx context.Context, ddnsClient DDNSClient, interval time.Duration, logger logr.Logger) {
	if interval < MinInterval {
		interval = MinInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := ddnsClient.Run(ctx); err != nil {
			logger.Error(err, "ddns.RunDaemon: run failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
