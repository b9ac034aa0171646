package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Travis-Britz/route53-ddns"
	"github.com/spf13/pflag"
	"go.yaml.in/yaml/v3"
)

// configEnv names a YAML config file when --config is not given.
const configEnv = "R53DDNS_CONFIG"

type Config struct {
	Region      string        `yaml:"region"`
	Domain      string        `yaml:"domain"`
	Subdomain   string        `yaml:"subdomain"`
	Provider    string        `yaml:"provider"`
	KeyFile     string        `yaml:"key_file"`
	Resolver    string        `yaml:"resolver"`
	IPService   string        `yaml:"ip_service"`
	IPField     string        `yaml:"ip_field"`
	IP          string        `yaml:"ip"`
	Interface   string        `yaml:"interface"`
	DNSServer   string        `yaml:"dns_server"`
	Interval    time.Duration `yaml:"interval"`
	MetricsAddr string        `yaml:"metrics_addr"`
	DryRun      bool          `yaml:"dry_run"`
	Verbose     bool          `yaml:"verbose"`
}

func defaultConfig(getenv func(string) string) Config {
	return Config{
		Provider:  "route53",
		KeyFile:   filepath.Join(getenv("HOME"), ".cloudflare"),
		Resolver:  "web",
		IPService: ddns.DefaultIPService,
		IPField:   ddns.DefaultIPField,
		DNSServer: ddns.DefaultDNSIPServer,
	}
}

func bindFlags(fs *pflag.FlagSet, c *Config, configPath *string) {
	fs.StringVarP(configPath, "config", "c", *configPath, "YAML config file (env "+configEnv+")")
	fs.StringVarP(&c.Region, "region", "r", c.Region, "AWS region; empty uses the environment or shared profile")
	fs.StringVarP(&c.Domain, "domain", "d", c.Domain, "domain managed by the hosted zone, e.g. example.com")
	fs.StringVarP(&c.Subdomain, "subdomain", "s", c.Subdomain, "record label under domain, e.g. home")
	fs.StringVar(&c.Provider, "provider", c.Provider, "DNS provider: route53 or cloudflare")
	fs.StringVarP(&c.KeyFile, "key-file", "k", c.KeyFile, "path to Cloudflare API token file")
	fs.StringVar(&c.Resolver, "resolver", c.Resolver, "IP lookup method: web, dns, interface or static")
	fs.StringVar(&c.IPService, "ip-service", c.IPService, "URL of a JSON service returning the caller's address")
	fs.StringVar(&c.IPField, "ip-field", c.IPField, "JSON field holding the address")
	fs.StringVar(&c.IP, "ip", c.IP, "address to set when --resolver=static")
	fs.StringVar(&c.Interface, "interface", c.Interface, "network interface to read when --resolver=interface")
	fs.StringVar(&c.DNSServer, "dns-server", c.DNSServer, "server to query when --resolver=dns")
	fs.DurationVarP(&c.Interval, "interval", "i", c.Interval, "time between runs; 0 runs once and exits")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "serve Prometheus metrics on this address while running as a daemon, e.g. :9100")
	fs.BoolVar(&c.DryRun, "dry-run", c.DryRun, "audit the record without changing it")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "enable verbose logging")
}

// loadConfig builds the configuration from defaults, an optional config file and args, in that order of precedence.
func loadConfig(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	c := defaultConfig(getenv)
	path := getenv(configEnv)

	// first pass only finds --config
	scratch := c
	pre := pflag.NewFlagSet("r53ddns", pflag.ContinueOnError)
	pre.SetOutput(io.Discard)
	bindFlags(pre, &scratch, &path)
	_ = pre.Parse(args)

	if path != "" {
		if err := readConfigFile(path, &c); err != nil {
			return c, err
		}
	}

	fs := pflag.NewFlagSet("r53ddns", pflag.ContinueOnError)
	fs.SetOutput(output)
	bindFlags(fs, &c, &path)
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if fs.NArg() > 0 {
		return c, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return c, c.validate()
}

func readConfigFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// servesMetrics reports whether the metrics endpoint should run.
// A one-shot run exits before anything could scrape it.
func (c Config) servesMetrics() bool {
	return c.MetricsAddr != "" && c.Interval > 0
}

func (c Config) validate() error {
	var errs []error
	if c.Domain == "" {
		errs = append(errs, errors.New("domain cannot be empty"))
	} else if !strings.Contains(c.Domain, ".") {
		errs = append(errs, errors.New("domain must have at least one dot"))
	}
	if c.Subdomain == "" {
		errs = append(errs, errors.New("subdomain cannot be empty"))
	}
	if c.Interval < 0 || (c.Interval > 0 && c.Interval < ddns.MinInterval) {
		errs = append(errs, fmt.Errorf("interval must be 0 or at least %s; got %s", ddns.MinInterval, c.Interval))
	}
	switch c.Provider {
	case "route53":
	case "cloudflare":
		if c.KeyFile == "" {
			errs = append(errs, errors.New("cloudflare provider needs a key file"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}
	switch c.Resolver {
	case "web", "dns":
	case "interface":
		if c.Interface == "" {
			errs = append(errs, errors.New("interface resolver needs --interface"))
		}
	case "static":
		if c.IP == "" {
			errs = append(errs, errors.New("static resolver needs --ip"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown resolver %q", c.Resolver))
	}
	return errors.Join(errs...)
}
