// Command r53ddns keeps a DNS A record pointed at this host's external IPv4 address.
//
//	r53ddns -d example.com -s home
//	r53ddns -d example.com -s home --resolver dns -i 5m --metrics-addr :9100
//	r53ddns -c /etc/r53ddns.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Travis-Britz/route53-ddns"
	"github.com/go-logr/zerologr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	zlog := newLogger(cfg.Verbose)
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, zlog); err != nil {
		stop()
		zlog.Fatal().Err(err).Msg("r53ddns failed")
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
		zerologr.SetMaxV(1)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func run(ctx context.Context, cfg Config, zlog zerolog.Logger) error {
	zlog.Debug().Interface("config", cfg).Msg("config is valid")
	logger := zerologr.New(&zlog)

	opts, err := clientOptions(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	client, err := ddns.New(cfg.Domain, cfg.Subdomain, append(opts, ddns.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("error creating ddns client: %w", err)
	}

	if cfg.servesMetrics() {
		go serveMetrics(ctx, cfg.MetricsAddr, zlog)
	}

	if cfg.Interval == 0 {
		res, err := client.Run(ctx)
		if err != nil {
			return fmt.Errorf("run stopped after %s: %w", res.Reached, err)
		}
		zlog.Info().Str("record", res.Name).Str("ip", res.IP).Bool("updated", res.Updated).Msg("done")
		return nil
	}
	zlog.Info().Dur("interval", cfg.Interval).Msg("running as daemon")
	ddns.RunDaemon(ctx, client, cfg.Interval, logger)
	return nil
}

func clientOptions(ctx context.Context, cfg Config, zlog zerolog.Logger) ([]ddns.Option, error) {
	var opts []ddns.Option
	switch cfg.Provider {
	case "route53":
		awsCfg, err := ddns.LoadAWSConfig(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		zlog.Debug().Str("region", awsCfg.Region).Msg("loaded aws config")
		opts = append(opts, ddns.UsingRoute53(awsCfg))
	case "cloudflare":
		token, err := cloudflareToken(ctx, cfg.KeyFile, zlog)
		if err != nil {
			return nil, fmt.Errorf("error reading key: %w", err)
		}
		opts = append(opts, ddns.UsingCloudflare(token))
	}

	switch cfg.Resolver {
	case "web":
		opts = append(opts, ddns.UsingWebResolver(cfg.IPService, cfg.IPField))
	case "dns":
		opts = append(opts, ddns.UsingDNSResolver("", cfg.DNSServer))
	case "interface":
		opts = append(opts, ddns.UsingResolver(ddns.InterfaceResolver(cfg.Interface)))
	case "static":
		r, err := ddns.FromString(cfg.IP)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ddns.UsingResolver(r))
	}

	if cfg.DryRun {
		opts = append(opts, ddns.DryRun())
	}
	return opts, nil
}

func serveMetrics(ctx context.Context, addr string, zlog zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	zlog.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Error().Err(err).Msg("metrics server stopped")
	}
}
