package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supermarket-dashboard/internal/config"
	"supermarket-dashboard/internal/middleware"
	"supermarket-dashboard/internal/observability"
	"supermarket-dashboard/internal/server"
	"supermarket-dashboard/internal/services"
	"supermarket-dashboard/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
)

func dashboardHandler(controller *services.Controller, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		var buf bytes.Buffer
		if err := templates.RenderDashboard(controller).Render(ctx, &buf); err != nil {
			observability.RequestLogger(r.Context(), logger).Error("render dashboard", "error", err)
			http.Error(w, "render error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = buf.WriteTo(w)
	}
}

// loadAnalytics reads the dataset, derives its fields and precomputes the
// all-time overview.
func loadAnalytics(ctx context.Context, cfg config.DatasetConfig, logger *slog.Logger) (*services.Analytics, error) {
	var cache *services.TableCache
	if cfg.CacheEnabled {
		cache = services.NewTableCache(cfg.CacheDir)
	}

	ctx, cancel := context.WithTimeout(ctx, csvLoadTimeout)
	defer cancel()

	table, err := services.NewLoader(cache, logger).Load(ctx, cfg.CSVFile)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	derived, err := services.DeriveFields(table)
	if err != nil {
		return nil, fmt.Errorf("derive fields: %w", err)
	}

	return services.NewAnalytics(derived), nil
}

func newHandler(cfg *config.Config, controller *services.Controller, metrics *observability.Metrics, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(controller, logger),
	}
	srv := server.NewServer(controller, metrics, logger, templateHandlers)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
		middleware.Metrics(metrics),
	)

	return chain(srv)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	start := time.Now()
	analytics, err := loadAnalytics(ctx, cfg.Dataset, logger)
	if err != nil {
		return err
	}
	records := analytics.Table().Len()
	metrics.SetRecordsLoaded(records)
	logger.Info("dataset ready", "records", records, "duration", time.Since(start))

	controller := services.NewController(analytics, metrics)
	limiter := middleware.NewRateLimiter(cfg.Security)

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go limiter.Run(limiterCtx)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, controller, metrics, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		stopLimiter()
		logger.Info("rate limiter stopped")
		return nil
	})

	return gracefulServer.ListenAndServe(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"csv_file", cfg.Dataset.CSVFile,
		"cache_enabled", cfg.Dataset.CacheEnabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
