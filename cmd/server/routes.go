package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/backend"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/cache"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/catalog"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/config"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/endpoint"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/logger"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/metrics"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/middleware"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/progress"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/service"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/transport"
	"github.com/prajwalbharadwajbm/campaignstudio/internal/view"
)

const shutdownTimeout = 30 * time.Second

type serveOptions struct {
	general config.GeneralConfig
	backend config.BackendConfig
	ui      config.UIConfig
	cache   cache.CacheConfig
	demo    bool
}

// app is the wired UI with the resources that need closing
type app struct {
	handler http.Handler
	tracker *progress.Tracker
	cache   *cache.HybridCache
}

func (a *app) Close() {
	a.tracker.Close()
	a.cache.Close()
}

func serve(ctx context.Context, opts serveOptions) error {
	logger := logger.New(logger.Config{
		Service: "campaignstudio",
		Version: VERSION,
		Level:   opts.general.LogLevel,
	})

	a, err := newApp(opts, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", opts.general.Port),
		Handler:     a.handler,
		ReadTimeout: 30 * time.Second,
		// generation is polled, so no response needs to stay open long
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		level.Info(logger).Log("msg", "starting server", "port", opts.general.Port, "backend", opts.backend.BaseURL, "demo", opts.demo)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		level.Info(logger).Log("msg", "shutting down, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	level.Info(logger).Log("msg", "server stopped", "err", err)
	return err
}

// newApp wires backend, catalog, progress tracking, service middlewares,
// endpoints and transport into one handler
func newApp(opts serveOptions, logger log.Logger) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewPrometheusMetrics(registry)

	var (
		api    backend.API
		assets http.Handler
	)
	if opts.demo {
		api = backend.NewFakeAPI()
		assets = backend.NewFakeAssets()
	} else {
		client, err := backend.NewClient(backend.Options{
			BaseURL:         opts.backend.BaseURL,
			Timeout:         opts.backend.Timeout,
			GenerateTimeout: opts.backend.GenerateTimeout,
		})
		if err != nil {
			return nil, err
		}
		api = client

		target, _ := url.Parse(opts.backend.BaseURL)
		assets = httputil.NewSingleHostReverseProxy(target)
	}
	api = backend.NewInstrumentedAPI(api, m, logger)

	hc, err := cache.NewHybridCache(opts.cache)
	if err != nil {
		return nil, err
	}
	source := cache.NewCachedSource(api, hc, opts.cache.DefaultTTL, log.With(logger, "component", "catalog_cache"))
	loader := catalog.NewLoader(source, log.With(logger, "component", "catalog"))

	tracker := progress.NewTracker(progress.Options{
		Interval: opts.ui.ProgressInterval,
		TTL:      opts.ui.JobTTL,
	}, log.With(logger, "component", "progress"))

	var svc service.StudioService = service.NewStudio(api, loader, tracker, service.Options{
		HistoryLimit:    opts.ui.HistoryLimit,
		SearchTopK:      opts.ui.SearchTopK,
		GenerateTimeout: opts.backend.GenerateTimeout,
	}, log.With(logger, "component", "studio"))
	svc = middleware.NewLoggingMiddleware(logger)(svc)
	svc = middleware.NewServiceMetricsMiddleware(m)(svc)

	renderer, err := view.NewRenderer()
	if err != nil {
		tracker.Close()
		hc.Close()
		return nil, err
	}

	handler := transport.NewHTTPHandler(endpoint.MakeStudioEndpoints(svc), renderer, transport.Options{
		Version:  VERSION,
		Gatherer: registry,
		Assets:   assets,
		CacheHealth: func() config.CacheHealthCheck {
			return config.GetCacheHealth(opts.cache, source.GetCacheStats())
		},
		InvalidateCache: source.InvalidateCache,
	}, logger)

	handler = middleware.NewMetricsMiddleware(m).Middleware(handler)
	handler = middleware.NewRequestIDMiddleware().Middleware(handler)
	handler = handlers.CompressHandler(handler)
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{level.Error(logger)}),
		handlers.PrintRecoveryStack(opts.general.Env == "dev"),
	)(handler)

	return &app{handler: handler, tracker: tracker, cache: hc}, nil
}

// recoveryLogger adapts a go-kit logger to the gorilla recovery handler
type recoveryLogger struct {
	logger log.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Log("msg", "panic recovered", "err", fmt.Sprint(v...))
}
