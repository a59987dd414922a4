// Package server wires the console's components and runs the HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fiu-sentinel/console/internal/auth"
	"github.com/fiu-sentinel/console/internal/config"
	"github.com/fiu-sentinel/console/internal/data"
	"github.com/fiu-sentinel/console/internal/fixtures"
	"github.com/fiu-sentinel/console/internal/handlers"
	"github.com/fiu-sentinel/console/internal/metrics"
	"github.com/fiu-sentinel/console/internal/middleware"
	"github.com/fiu-sentinel/console/internal/session"
	"github.com/fiu-sentinel/console/internal/upstream"
)

// Server is the assembled console service.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	httpServer *http.Server
	sessions   *session.Manager
	store      session.Store
	collector  *metrics.Collector
}

// New builds the full component graph: session store, session manager,
// upstream client, fixture library, data service and HTTP handlers.
func New(cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	store, err := newSessionStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	sessions := session.NewManager(store, logger)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	library := fixtures.NewLibrary()
	gen := fixtures.NewGenerator(library, cfg.Fixtures.Seed)
	upstreamClient := upstream.NewClient(cfg.Upstream, sessions, logger)
	demoAuth := auth.NewService(cfg.Demo)

	service := data.NewService(cfg, upstreamClient, library, gen, sessions, demoAuth, collector, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Metrics(httpMetrics))
	router.Use(middleware.CORS())

	handler := handlers.NewHandler(service, sessions, logger, version)
	handler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Endpoint, gin.WrapH(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		))
	}

	httpServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.HTTP.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.HTTP.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.HTTP.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.HTTP.IdleTimeout) * time.Second,
		MaxHeaderBytes: cfg.Server.HTTP.MaxHeaderBytes,
	}

	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		sessions:   sessions,
		store:      store,
		collector:  collector,
	}, nil
}

// Start restores any persisted session, serves HTTP and blocks until a
// shutdown signal arrives.
func (s *Server) Start() error {
	restoreCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := s.sessions.Restore(restoreCtx); err != nil {
		s.logger.Warn("Session restore failed, starting unauthenticated", zap.Error(err))
	} else if s.sessions.IsAuthenticated() {
		s.collector.RecordSessionRestore()
	}
	cancel()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		s.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return s.Shutdown()
}

// Shutdown drains in-flight requests and closes the session store.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error("Failed to close session store", zap.Error(err))
		}
	}

	s.logger.Info("Server shutdown complete")
	return nil
}

func newSessionStore(cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	switch cfg.Session.Backend {
	case "redis":
		logger.Info("Using Redis session store",
			zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
		return session.NewRedisStore(cfg.Redis)
	case "memory", "":
		logger.Info("Using in-memory session store")
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
