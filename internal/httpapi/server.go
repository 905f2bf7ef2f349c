package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"snaplog-go/internal/core"
)

// Server serves the JSON-over-HTTP surface for one project's change log.
type Server struct {
	svc    *core.Service
	logger core.Logger
	http   *http.Server
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, svc *core.Service, logger core.Logger) *Server {
	s := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/snapshots", s.handleListSnapshots)
	r.Post("/snapshots/revert-cascade", s.handleCascadeRevert)
	r.Get("/snapshot/{id}", s.handleGetSnapshot)
	r.Get("/snapshot/{id}/file", s.handleGetSnapshotFile)
	r.Post("/snapshot/{id}/revert", s.handleRevertSnapshot)
	r.Post("/snapshot/revert-file", s.handleRevertFile)
	r.Get("/pending-changes", s.handleGetPendingChanges)
	r.Put("/pending-changes", s.handlePutPendingChanges)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
