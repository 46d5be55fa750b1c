package server

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/tasks-be/internal/auth"
	"github.com/hongminglow/tasks-be/internal/config"
	"github.com/hongminglow/tasks-be/internal/eventlog"
	"github.com/hongminglow/tasks-be/internal/http/handlers"
	"github.com/hongminglow/tasks-be/internal/middleware"
	"github.com/hongminglow/tasks-be/internal/storage"
)

const metricsNamespace = "tasks"

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	metrics *middleware.Metrics
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, log logrus.FieldLogger) *Server {
	metrics := middleware.NewMetrics(metricsNamespace)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	protect := middleware.RequireAuth(tokens, log)
	deps := handlers.Deps{
		Log:      log,
		Errors:   eventlog.NewSink(cfg.LogDir, eventlog.ErrorLog, log),
		Cascaded: metrics.CascadeDeleted,
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), cfg.StorageDriver).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())
	handlers.NewAuthHandler(store, tokens, deps).Register(mux)
	handlers.NewTaskHandler(store, deps).Register(mux, protect)
	handlers.NewUserHandler(store, store, deps).Register(mux, protect)

	handler := middleware.Chain(mux,
		middleware.Logging(log, eventlog.NewSink(cfg.LogDir, eventlog.RequestLog, log)),
		middleware.CORS(cfg.CORSOrigins),
		metrics.Middleware(),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, metrics: metrics}
}

// Handler exposes the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
