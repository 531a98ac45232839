// Command whisperd serves the tx-whisperer HTTP API: it classifies
// blockchain identifiers, screens them against the flagged-entry dataset,
// and keeps a history of everything it has been asked about.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/emmi-lili/tx-whisperer/internal/alert"
	"github.com/emmi-lili/tx-whisperer/internal/config"
	"github.com/emmi-lili/tx-whisperer/internal/dataset"
	"github.com/emmi-lili/tx-whisperer/internal/history"
	"github.com/emmi-lili/tx-whisperer/internal/screening"
	"github.com/emmi-lili/tx-whisperer/internal/server"
	"github.com/emmi-lili/tx-whisperer/internal/store/postgres"
	"github.com/emmi-lili/tx-whisperer/internal/store/redis"
	"github.com/emmi-lili/tx-whisperer/internal/tracing"
)

func main() {
	// A .env file is optional; in containers the environment comes from
	// the orchestrator.
	_ = godotenv.Load()

	// Setup logger
	logLevel := slog.LevelInfo
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting tx-whisperer",
		"api_addr", cfg.Server.APIAddr,
		"health_addr", cfg.Server.HealthAddr,
		"dataset_path", cfg.Dataset.Path,
		"reload_interval", cfg.Dataset.ReloadInterval,
		"history_limit", cfg.History.Limit,
		"db_enabled", cfg.DB.URL != "",
		"cache_enabled", cfg.Redis.URL != "",
	)

	// Initialize OpenTelemetry tracing
	shutdownTracing, err := tracing.Init(context.Background(), tracing.Config{
		Endpoint:    cfg.Tracing.OTLPEndpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.OTLPEndpoint != "" {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.OTLPEndpoint)
	}

	// Load the flagged-entry dataset. The service refuses to start without
	// one; a screening API with nothing to screen against is worse than
	// no API at all.
	provider := dataset.NewProvider(cfg.Dataset.Path, cfg.Dataset.ReloadInterval, logger)
	if err := provider.Load(); err != nil {
		logger.Error("failed to load dataset", "error", err, "path", cfg.Dataset.Path)
		os.Exit(1)
	}
	meta := provider.Snapshot().Meta()
	logger.Info("dataset loaded",
		"version", meta.Version,
		"entries", meta.EntryCount,
		"path", cfg.Dataset.Path,
	)

	alerter := buildAlerter(cfg.Alert, logger)
	provider.SetAlerter(alerter)

	// Check history, with an optional PostgreSQL mirror
	hist := history.NewService(cfg.History.Limit, logger)
	if cfg.DB.URL != "" {
		db, err := postgres.New(postgres.Config{
			URL:                cfg.DB.URL,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetime:    cfg.DB.ConnMaxLifetime,
			StatementTimeoutMS: cfg.DB.StatementTimeoutMS,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		hist.SetRepository(postgres.NewCheckHistoryRepo(db))
		logger.Info("connected to database")
	}

	// Screening service
	svc := screening.NewService(provider, logger)
	svc.SetHistory(hist)
	svc.SetAlerter(alerter)
	if cfg.Redis.URL != "" {
		cache, err := redis.NewCache(cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		svc.SetResultCache(cache)
		logger.Info("result cache enabled", "ttl", cfg.Redis.TTL)
	}

	// HTTP API with rate limiting and mutation auditing
	srv := server.NewServer(svc, logger,
		server.WithHistory(hist),
		server.WithMaxInputBytes(cfg.Server.MaxInputBytes),
	)
	rl := server.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
	defer rl.Stop()
	apiHandler := rl.Wrap(server.AuditMiddleware(logger, srv.Handler()))

	// Context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// API server
	g.Go(func() error {
		return runAPIServer(gCtx, cfg.Server.APIAddr, apiHandler, logger)
	})

	// Health check server
	g.Go(func() error {
		return runHealthServer(gCtx, cfg.Server.HealthAddr, provider, logger)
	})

	// Dataset reloads
	if cfg.Dataset.ReloadInterval > 0 {
		g.Go(func() error {
			return provider.Watch(gCtx)
		})
	}

	// Signal handler
	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("tx-whisperer exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("tx-whisperer shut down gracefully")
}

func runAPIServer(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("API server shutdown error", "error", err)
		}
	}()

	logger.Info("API server started", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// buildAlerter assembles the alert fan-out from config. With no webhook URLs
// configured the service stays quiet and alerts go nowhere.
func buildAlerter(cfg config.AlertConfig, logger *slog.Logger) alert.Alerter {
	var channels []alert.Alerter
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, alert.NewSlackAlerter(cfg.SlackWebhookURL))
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, alert.NewWebhookAlerter(cfg.WebhookURL))
	}
	if len(channels) == 0 {
		return &alert.NoopAlerter{}
	}
	logger.Info("alerting enabled", "channels", len(channels), "cooldown", cfg.Cooldown)
	return alert.NewMultiAlerter(cfg.Cooldown, logger, channels...)
}

func newHealthMux(provider *dataset.Provider, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})
	// Ready means a dataset snapshot is in memory. Kubernetes keeps traffic
	// away until the first load succeeds.
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if provider.Snapshot() == nil {
			http.Error(w, "dataset not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("failed to write readiness response", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func runHealthServer(ctx context.Context, addr string, provider *dataset.Provider, logger *slog.Logger) error {
	server := &http.Server{
		Addr:    addr,
		Handler: newHealthMux(provider, logger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()

	logger.Info("health server started", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
