// Package server wires the route modules, router and middlewares into an
// HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackielii/routemodules"
	"github.com/jackielii/routemodules/chirouter"
	"github.com/jackielii/routemodules/hrouter"
	"github.com/jackielii/routemodules/internal/config"
	"github.com/jackielii/routemodules/internal/routes"
	"github.com/jackielii/routemodules/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type router interface {
	routemodules.Router
	http.Handler
}

func newRouter(kind string) (router, error) {
	switch kind {
	case config.RouterStd, "":
		return routemodules.NewRouter(http.NewServeMux()), nil
	case config.RouterChi:
		return chirouter.NewChiRouter(chi.NewRouter()), nil
	case config.RouterHTTPRouter:
		return hrouter.New(nil), nil
	}
	return nil, fmt.Errorf("unknown router %q", kind)
}

// NewHandler mounts the application routes and the metrics endpoint.
func NewHandler(cfg config.Config, logger *zap.Logger, reg *prometheus.Registry) (http.Handler, error) {
	r, err := newRouter(cfg.Router)
	if err != nil {
		return nil, err
	}
	rm := routemodules.New(
		routemodules.WithLogger(logger),
		routemodules.WithIgnoredRoutes(cfg.IgnoredRoutes...),
		routemodules.WithMiddlewares(
			middleware.RequestID,
			middleware.Logger(logger),
			middleware.Metrics(middleware.WithRegistry(reg)),
			middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName}),
		),
	)
	if err := rm.MountModules(r, "/", routes.Routes{}); err != nil {
		return nil, fmt.Errorf("mount routes: %w", err)
	}
	if cfg.MetricsPath != "" {
		r.HandleMethod(http.MethodGet, cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}
	return r, nil
}

// Server is the HTTP server for the route modules.
type Server struct {
	cfg        config.Config
	logger     *zap.Logger
	httpServer *http.Server
}

// New builds a Server with its own metrics registry.
func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	h, err := NewHandler(cfg, logger, reg)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: &http.Server{Addr: cfg.Addr, Handler: h},
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends, then drains
// in-flight requests for at most the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.logger.Info("listening", zap.String("addr", s.cfg.Addr), zap.String("router", s.cfg.Router))
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
