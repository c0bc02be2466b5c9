package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/catalog"
	"github.com/aluiziolira/go-equipment-catalog/config"
	"github.com/aluiziolira/go-equipment-catalog/feed"
	"github.com/aluiziolira/go-equipment-catalog/loader"
	"github.com/aluiziolira/go-equipment-catalog/metrics"
	"github.com/aluiziolira/go-equipment-catalog/pipeline"
	"github.com/aluiziolira/go-equipment-catalog/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if _, err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	d := config.DefaultConfig()
	listenAddr := flag.String("addr", envString("LISTEN_ADDR", d.ListenAddr), "HTTP listen address")
	metricsAddr := flag.String("metrics-addr", envString("METRICS_ADDR", d.MetricsAddr), "Separate Prometheus listen address (empty serves /metrics on the main router)")
	feedURL := flag.String("feed-url", envString("FEED_URL", d.FeedURL), "Supplier XML feed URL")
	catalogURL := flag.String("catalog-url", envString("CATALOG_URL", d.CatalogURL), "Remote catalog JSON URL (empty builds the catalog from the feed)")
	massagers := flag.String("massagers-category", envString("MASSAGERS_CATEGORY", d.MassagersCategory), "Feed category id of massagers")
	injectors := flag.String("injectors-category", envString("INJECTORS_CATEGORY", d.InjectorsCategory), "Feed category id of injectors")
	cacheTTL := flag.Duration("cache-ttl", envDuration("CACHE_TTL", d.CacheTTL), "Parsed feed cache TTL")
	staleRetry := flag.Duration("stale-retry", envDuration("STALE_RETRY", d.StaleRetry), "How long a stale catalog is served before upstream is tried again")
	refresh := flag.Duration("refresh", envDuration("CATALOG_REFRESH", d.RefreshInterval), "Catalog refresh interval (0 disables)")
	renderWait := flag.Duration("render-wait", envDuration("RENDER_WAIT", d.RenderWait), "How long a catalog page waits for a pending load")
	timeout := flag.Duration("timeout", envDuration("FETCH_TIMEOUT", d.Timeout), "Upstream request timeout")
	maxRetries := flag.Int("max-retries", envInt("FETCH_MAX_RETRIES", d.MaxRetries), "Maximum retry attempts per upstream request")
	leadsFile := flag.String("leads-file", envString("LEADS_FILE", d.LeadsFile), "Leads output file path")
	leadsFormat := flag.String("leads-format", envString("LEADS_FORMAT", d.LeadsFormat), "Leads output format: csv, json, or dual")
	leadWorkers := flag.Int("lead-workers", envInt("LEAD_WORKERS", d.LeadWorkers), "Number of lead pipeline workers")
	allowedOrigin := flag.String("allowed-origin", envString("ALLOWED_ORIGIN", d.AllowedOrigin), "CORS allowed origin of the JSON API")
	verbose := flag.Bool("v", envBool("VERBOSE", d.Verbose), "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.ListenAddr = *listenAddr
	cfg.MetricsAddr = *metricsAddr
	cfg.FeedURL = *feedURL
	cfg.CatalogURL = *catalogURL
	cfg.MassagersCategory = *massagers
	cfg.InjectorsCategory = *injectors
	cfg.CacheTTL = *cacheTTL
	cfg.StaleRetry = *staleRetry
	cfg.RefreshInterval = *refresh
	cfg.RenderWait = *renderWait
	cfg.Timeout = *timeout
	cfg.MaxRetries = *maxRetries
	cfg.LeadsFile = *leadsFile
	cfg.LeadsFormat = strings.ToLower(*leadsFormat)
	cfg.LeadWorkers = *leadWorkers
	cfg.AllowedOrigin = *allowedOrigin
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	fetcher := feed.NewFetcher(cfg, m)

	var (
		source  catalog.Source
		service *catalog.Service
	)
	if cfg.CatalogURL != "" {
		source = loader.NewRemoteSource(fetcher, cfg.CatalogURL)
		slog.Info("using remote catalog", slog.String("url", cfg.CatalogURL))
	} else {
		service = catalog.NewService(cfg, fetcher, m)
		source = service
		slog.Info("building catalog from feed", slog.String("url", cfg.FeedURL))
	}

	ld := loader.New(source)
	ld.Start(ctx)
	if cfg.RefreshInterval > 0 {
		go refreshLoop(ctx, ld, service, cfg.RefreshInterval)
	}

	writer, err := pipeline.NewWriter(cfg.LeadsFormat, cfg.LeadsFile)
	if err != nil {
		return fmt.Errorf("create leads writer: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close leads writer", slog.Any("error", err))
		}
	}()

	p := pipeline.NewPipeline(ctx, writer, cfg).WithMetrics(m)
	p.Start(cfg.LeadWorkers)
	if cfg.Verbose {
		p.StartMetricsReporting(time.Minute)
	}

	app := web.NewApp(ctx, cfg, ld, source, p, m)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           web.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("listening", slog.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining requests and leads")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", slog.Any("error", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}

	if err := p.Close(); err != nil {
		return fmt.Errorf("pipeline shutdown: %w", err)
	}
	summary := p.GetMetrics()
	slog.Info("leads pipeline closed",
		slog.Any("processed_leads", summary["processed_leads"]),
		slog.Any("validation_errors", summary["validation_errors"]),
	)
	return nil
}

// refreshLoop reloads the catalog every interval. The feed cache is
// dropped first so the reload reaches upstream.
func refreshLoop(ctx context.Context, ld *loader.Loader, service *catalog.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ld.Snapshot().Phase != loader.PhaseLoaded {
				continue
			}
			if service != nil {
				service.Invalidate()
			}
			if ld.Refresh(ctx) {
				slog.Debug("catalog refresh started")
			}
		}
	}
}

func envString(key, fallback string) string {
	if value, ok := config.EnvString(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value, ok, err := config.EnvInt(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s: %v\n", key, err)
		os.Exit(1)
	}
	if !ok {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, ok, err := config.EnvDuration(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s: %v\n", key, err)
		os.Exit(1)
	}
	if !ok {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	value, ok, err := config.EnvBool(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s: %v\n", key, err)
		os.Exit(1)
	}
	if !ok {
		return fallback
	}
	return value
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
