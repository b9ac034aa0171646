package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := loadConfig([]string{"-d", "example.com", "-s", "home", "-r", "eu-west-1", "--resolver", "static", "--ip", "203.0.113.5", "-i", "5m", "--dry-run"},
		env(map[string]string{"HOME": "/home/me"}), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Domain != "example.com" || cfg.Subdomain != "home" || cfg.Region != "eu-west-1" {
		t.Errorf("Unexpected identity: %+v", cfg)
	}
	if cfg.Resolver != "static" || cfg.IP != "203.0.113.5" || cfg.Interval != 5*time.Minute || !cfg.DryRun {
		t.Errorf("Unexpected options: %+v", cfg)
	}
	if cfg.Provider != "route53" || cfg.KeyFile != filepath.Join("/home/me", ".cloudflare") {
		t.Errorf("Expected defaults to survive; got %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r53ddns.yaml")
	data := `
domain: example.com
subdomain: home
provider: cloudflare
key_file: ${SECRETS}/cf-token
resolver: dns
interval: 10m
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SECRETS", "/run/secrets")

	// flags given on the command line win over the file
	cfg, err := loadConfig([]string{"-s", "office"}, env(map[string]string{configEnv: path}), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Domain != "example.com" || cfg.Subdomain != "office" {
		t.Errorf("Unexpected identity: %+v", cfg)
	}
	if cfg.Provider != "cloudflare" || cfg.KeyFile != "/run/secrets/cf-token" {
		t.Errorf("Unexpected provider settings: %+v", cfg)
	}
	if cfg.Resolver != "dns" || cfg.Interval != 10*time.Minute {
		t.Errorf("Unexpected resolver settings: %+v", cfg)
	}

	// --config takes priority over the environment
	if _, err := loadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}, env(map[string]string{configEnv: path}), io.Discard); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no domain", []string{"-s", "home"}, "domain cannot be empty"},
		{"no dot", []string{"-d", "localhost", "-s", "home"}, "at least one dot"},
		{"no subdomain", []string{"-d", "example.com"}, "subdomain cannot be empty"},
		{"short interval", []string{"-d", "example.com", "-s", "home", "-i", "30s"}, "interval"},
		{"bad provider", []string{"-d", "example.com", "-s", "home", "--provider", "bind"}, "unknown provider"},
		{"bad resolver", []string{"-d", "example.com", "-s", "home", "--resolver", "upnp"}, "unknown resolver"},
		{"static without ip", []string{"-d", "example.com", "-s", "home", "--resolver", "static"}, "needs --ip"},
		{"interface without name", []string{"-d", "example.com", "-s", "home", "--resolver", "interface"}, "needs --interface"},
		{"positional", []string{"-d", "example.com", "-s", "home", "extra"}, "unexpected arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.args, env(nil), io.Discard)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Expected error containing %q; got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigHelp(t *testing.T) {
	_, err := loadConfig([]string{"--help"}, env(nil), io.Discard)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("Expected pflag.ErrHelp; got %v", err)
	}
}

func TestServesMetrics(t *testing.T) {
	for _, tt := range []struct {
		addr     string
		interval time.Duration
		want     bool
	}{
		{":9100", 5 * time.Minute, true},
		{":9100", 0, false},
		{"", 5 * time.Minute, false},
	} {
		c := Config{MetricsAddr: tt.addr, Interval: tt.interval}
		if got := c.servesMetrics(); got != tt.want {
			t.Errorf("servesMetrics(%q, %s): got %v, want %v", tt.addr, tt.interval, got, tt.want)
		}
	}
}
