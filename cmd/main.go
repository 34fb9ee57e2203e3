package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/hiddengems/internal/adapters/http/api"
	"github.com/okian/hiddengems/internal/adapters/http/site"
	"github.com/okian/hiddengems/internal/adapters/http/swagger"
	"github.com/okian/hiddengems/internal/adapters/mapview"
	"github.com/okian/hiddengems/internal/adapters/source"
	service "github.com/okian/hiddengems/internal/app"
	"github.com/okian/hiddengems/internal/config"
	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/okian/hiddengems/pkg/logger"
	"github.com/okian/hiddengems/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logging: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
	)
	if err := metrics.Register(collectors.NewBuildInfoCollector()); err != nil {
		log.Warn(ctx, "build info collector not registered", logger.Error(err))
	}

	svc := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithSource(newSource(cfg)),
		service.WithBoundsPadding(cfg.BoundsPadding),
		service.WithLocale(cfg.LocaleTag()),
		service.WithSubmitURL(cfg.SubmitURL),
	)

	loadDataset(ctx, svc, log)

	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// loadDataset runs the startup load on a page holding no filters and returns
// it. Browsers run their own first pass through /api/markers; this page only
// records the unfiltered view so startup can report it. A failed load leaves
// the map empty and the page learns of it through /api/status.
func loadDataset(ctx context.Context, svc *service.Service, log logger.Logger) *mapview.Page {
	boot := mapview.NewPage(filter.State{})
	if err := svc.Load(ctx, boot); err != nil {
		log.Warn(ctx, "serving without dataset", logger.Error(err))
		return boot
	}
	_, fitted := boot.Viewport()
	log.Info(ctx, "initial view ready",
		logger.Int("visible", len(boot.Visible())),
		logger.Bool("fitted", fitted))
	return boot
}

// newSource picks the configured dataset location, or the sample embedded
// in the site when none is set.
func newSource(cfg *config.Config) source.Source {
	if cfg.DataURL == "" {
		return source.NewFS(site.Static(), site.DatasetPath)
	}
	return source.New(cfg.DataURL, cfg.FetchTimeout())
}

// newHandler wires the API, docs and site routes. The site is registered
// last so its catch-all never shadows an API route.
func newHandler(ctx context.Context, cfg *config.Config, svc *service.Service) http.Handler {
	apiServer := api.NewServer(svc,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithLogger(logger.Named("http")),
		api.WithMapSettings(mapSettings(cfg)),
	)
	r := apiServer.Router()
	apiServer.Register(ctx, r)
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return r
}

func mapSettings(cfg *config.Config) api.MapSettings {
	m := api.DefaultMapSettings()
	m.CenterLat = cfg.MapCenterLat
	m.CenterLng = cfg.MapCenterLng
	m.Zoom = cfg.MapZoom
	m.ClusterRadius = cfg.ClusterRadius
	return m
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
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
