// Command server exposes history reconstruction and comparison over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/trainhist/internal/adapters/http/api"
	"github.com/okian/trainhist/internal/adapters/http/swagger"
	"github.com/okian/trainhist/internal/adapters/repository"
	"github.com/okian/trainhist/internal/adapters/upstream"
	"github.com/okian/trainhist/internal/app"
	"github.com/okian/trainhist/internal/config"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/pkg/logger"
	"github.com/okian/trainhist/pkg/metrics"
)

// HTTP server timeout constants. Comparisons fan out to several upstream
// fetches per entity, so writes get more room than reads.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 2 * time.Minute
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the service and its adapters from cfg.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	client := upstream.New(
		upstream.WithBaseURL(cfg.UpstreamBaseURL),
		upstream.WithSport(cfg.Sport),
		upstream.WithLocation(loc),
		upstream.WithLogger(log.Named("upstream")),
	)

	var store repository.Store = repository.NewInMemoryStore()
	if cfg.PreferencesPath != "" {
		sqlite, err := repository.OpenSQLite(cfg.PreferencesPath)
		if err != nil {
			return nil, fmt.Errorf("preferences: %w", err)
		}
		store = sqlite
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithSource(client),
		app.WithStore(store),
		app.WithLocation(loc),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithReportCacheSize(cfg.ReportCacheSize),
		app.WithMaxCompare(cfg.MaxCompareEntities),
		app.WithDefaultCurrency(cfg.DefaultCurrency),
	}
	if cfg.HasStaticAnchor() {
		date, err := time.ParseInLocation(config.AnchorDateLayout, cfg.AnchorDate, loc)
		if err != nil {
			return nil, fmt.Errorf("anchor_date: %w", err)
		}
		a, err := season.NewAnchor(date, cfg.AnchorSeason, cfg.AnchorDay)
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithStaticAnchor(a))
	}
	return app.New(opts...), nil
}

// newMux registers the API and its documentation.
func newMux(ctx context.Context, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithRequestLogger(log)).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	interval := metrics.RefreshInterval()
	if interval <= 0 {
		interval = systemMetricsInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
