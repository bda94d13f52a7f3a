// Package app assembles the HTTP server from its components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qpcrcli/internal/config"
	apierrors "qpcrcli/internal/errors"
	"qpcrcli/internal/metrics"
	"qpcrcli/internal/middleware"
	"qpcrcli/internal/services"
	handlers "qpcrcli/internal/transport/http"
)

// Version is the application version, set at build time.
var Version = "dev"

// Application wires the service, transport and observability layers.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Router  *chi.Mux
	Server  *http.Server
	Service *services.AnalysisService
}

// New creates the application with all dependencies wired.
func New(cfg *config.Config, logger *slog.Logger) *Application {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := metrics.New(registry)
	service := services.NewAnalysisService(logger, m)
	errorHandler := apierrors.NewErrorHandler(logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.StructuredLogger(logger))
	router.Use(chimiddleware.Recoverer)

	limiter := middleware.NewRateLimiter(cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst)

	router.Route("/api", func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Mount("/", handlers.NewAnalysisHandler(service, logger, errorHandler, cfg.Limits.MaxUploadBytes).Routes())
	})
	router.Mount("/healthz", handlers.NewHealthHandler(Version).Routes())
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Router:  router,
		Server:  server,
		Service: service,
	}
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version),
		)
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("shutting down server",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	a.Logger.Info("server stopped")
	return nil
}
