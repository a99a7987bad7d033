// Package main provides the orderwatch CLI: it audits "newest items" listings
// by paginating them until enough items are gathered, then validating that the
// sample is in descending time order.
//
// Usage:
//
//	orderwatch [-config audits.yaml] [-url URL] [-driver chrome|static] [-target N] [-schedule CRON]
//
// Exit codes: 0 when every listing is correctly ordered, 1 when any listing
// fails validation, 2 on a fatal run error.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"orderwatch/internal/config"
	"orderwatch/internal/handler/console"
	"orderwatch/internal/infra/source"
	"orderwatch/internal/observability/logging"
	"orderwatch/internal/observability/metrics"
	"orderwatch/internal/usecase/accumulate"
	"orderwatch/internal/usecase/validate"
	pkgconfig "orderwatch/pkg/config"
)

// Exit codes.
const (
	exitOK        = 0
	exitViolation = 1
	exitFatal     = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		listURL    string
		driverName string
		target     int
		schedule   string
	)
	flag.StringVar(&configPath, "config", "", "Path to the audits YAML file (default: built-in Hacker News newest target)")
	flag.StringVar(&listURL, "url", "", "Override the listing URL")
	flag.StringVar(&driverName, "driver", "", "Override the page source driver: chrome or static")
	flag.IntVar(&target, "target", 0, "Override the number of items to gather and validate")
	flag.StringVar(&schedule, "schedule", "", "Cron expression; keep running audits on this schedule and expose metrics")
	flag.Parse()

	logger := initLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		return exitFatal
	}
	if err := applyOverrides(cfg, listURL, driverName, target); err != nil {
		logger.Error("invalid flag overrides", slog.Any("error", err))
		return exitFatal
	}

	runtime, err := config.LoadRuntime()
	if err != nil {
		logger.Error("failed to load runtime configuration", slog.Any("error", err))
		return exitFatal
	}

	factory := source.NewFactory(
		createHTTPClient(),
		runtime,
		pkgconfig.GetEnvStringList("AUDIT_CHROME_FLAGS", nil),
		logger,
	)
	reporter := console.New(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if schedule != "" {
		return runScheduled(ctx, logger, reporter, factory, runtime, cfg, schedule)
	}
	return auditAll(ctx, logger, reporter, factory, runtime, cfg)
}

// applyOverrides applies single-listing flag overrides to the configuration.
func applyOverrides(cfg *config.Config, listURL, driverName string, target int) error {
	if listURL == "" && driverName == "" && target == 0 {
		return nil
	}
	if len(cfg.Listings) != 1 {
		return fmt.Errorf("flag overrides require a single listing, config has %d", len(cfg.Listings))
	}

	l := &cfg.Listings[0]
	if listURL != "" {
		l.URL = listURL
		l.Name = listURL
	}
	if driverName != "" {
		l.Driver = driverName
	}
	if target != 0 {
		l.Target = target
	}
	return l.Validate()
}

// auditAll audits every configured listing sequentially and returns the worst
// exit code across them.
func auditAll(ctx context.Context, logger *slog.Logger, reporter *console.Reporter, factory *source.Factory, runtime config.Runtime, cfg *config.Config) int {
	code := exitOK
	for _, listing := range cfg.Listings {
		if ctx.Err() != nil {
			logger.Warn("audit interrupted", slog.Any("error", ctx.Err()))
			return exitFatal
		}
		if c := auditListing(ctx, logger, reporter, factory, runtime, listing); c > code {
			code = c
		}
	}
	return code
}

// auditListing runs one full audit: create the driver, navigate, accumulate,
// validate, report. The driver is released on every path.
func auditListing(ctx context.Context, logger *slog.Logger, reporter *console.Reporter, factory *source.Factory, runtime config.Runtime, listing config.Listing) int {
	runID := uuid.NewString()
	log := logging.WithRunID(logger, runID)
	start := time.Now()

	log.Info("audit started",
		slog.String("target", listing.Name),
		slog.String("url", listing.URL),
		slog.String("driver", listing.Driver),
		slog.Int("items", listing.Target))

	driver, err := factory.Create(ctx, listing)
	if err != nil {
		log.Error("failed to create page source", slog.Any("error", err))
		reporter.ReportError(listing.Name, err)
		metrics.RecordAuditRun(listing.Name, metrics.OutcomeError, time.Since(start))
		return exitFatal
	}
	defer func() {
		if err := driver.Close(context.Background()); err != nil {
			log.Error("failed to release page source", slog.Any("error", err))
		}
	}()

	if err := driver.Navigate(ctx, listing.URL); err != nil {
		log.Error("navigation failed", slog.Any("error", err))
		reporter.ReportError(listing.Name, err)
		metrics.RecordAuditRun(listing.Name, metrics.OutcomeError, time.Since(start))
		return exitFatal
	}

	var limiter *rate.Limiter
	if runtime.PageInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(runtime.PageInterval), 1)
	}

	accumulator := accumulate.NewService(driver, limiter, log, listing.Name, accumulate.Config{
		Target:   listing.Target,
		MaxPages: listing.MaxPages,
	})
	collection, stats, err := accumulator.Collect(ctx)
	if err != nil {
		log.Error("accumulation failed",
			slog.Any("error", err),
			slog.Int("collected", stats.Admitted),
			slog.Int("pages", stats.Pages))
		reporter.ReportError(listing.Name, err)
		metrics.RecordAuditRun(listing.Name, metrics.OutcomeError, time.Since(start))
		return exitFatal
	}

	result := validate.Check(collection, listing.Target)
	reporter.Report(listing.Name, result)

	outcome := metrics.OutcomeOK
	code := exitOK
	if !result.OK() {
		code = exitViolation
		outcome = metrics.OutcomeViolation
		if result.Violation.Kind == validate.KindInvalidTimestamp {
			outcome = metrics.OutcomeInvalidTimestamp
		}
		log.Warn("audit failed",
			slog.String("target", listing.Name),
			slog.String("violation", result.Violation.String()))
	} else {
		log.Info("audit passed",
			slog.String("target", listing.Name),
			slog.Int("items", len(result.Ordered)),
			slog.Int("duplicates", stats.Duplicates),
			slog.Duration("duration", stats.Duration))
	}
	metrics.RecordAuditRun(listing.Name, outcome, time.Since(start))
	return code
}

// runScheduled audits every listing on a cron schedule until interrupted.
// The Prometheus metrics server runs for the lifetime of the process.
func runScheduled(ctx context.Context, logger *slog.Logger, reporter *console.Reporter, factory *source.Factory, runtime config.Runtime, cfg *config.Config, schedule string) int {
	server := startMetricsServer(ctx, logger, runtime.MetricsPort)

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		auditAll(ctx, logger, reporter, factory, runtime, cfg)
	})
	if err != nil {
		logger.Error("invalid cron schedule",
			slog.String("schedule", schedule),
			slog.Any("error", err))
		return exitFatal
	}
	c.Start()
	logger.Info("scheduler started", slog.String("schedule", schedule))

	<-ctx.Done()
	logger.Info("shutting down")

	cronCtx := c.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", slog.Any("error", err))
	}

	return exitOK
}

// initLogger initializes and returns a structured logger based on environment
// configuration. LOG_FORMAT=text switches to the human-readable handler.
func initLogger() *slog.Logger {
	var logger *slog.Logger
	if pkgconfig.GetEnvString("LOG_FORMAT", "json") == "text" {
		logger = logging.NewTextLogger()
	} else {
		logger = logging.NewLogger()
	}
	slog.SetDefault(logger)
	return logger
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling
// for the static driver. TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
