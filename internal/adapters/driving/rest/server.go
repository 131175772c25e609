// Package rest exposes the answer and rebuild services over a JSON HTTP API.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("rest: answer service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Answer answers questions about events.
	Answer driving.AnswerService

	// Rebuild replaces the vector index. Optional; /rebuild answers 501 without it.
	Rebuild driving.RebuildService

	// History exposes recorded asks and rebuilds. Optional.
	History driving.HistoryService
}

// Options configures the HTTP server.
type Options struct {
	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string
}

// Server is the REST API.
type Server struct {
	ports  *Ports
	router chi.Router
}

// NewServer builds the router for the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if ports == nil || ports.Answer == nil {
		return nil, ErrMissingAnswerService
	}

	s := &Server{ports: ports}
	s.router = s.routes(opts)
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(opts Options) chi.Router {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleHealth)
	r.Post("/ask", s.handleAsk)
	r.Post("/rebuild", s.handleRebuild)
	r.Get("/cities", s.handleCities)
	r.Route("/history", func(r chi.Router) {
		r.Get("/asks", s.handleAskHistory)
		r.Get("/rebuilds", s.handleRebuildHistory)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("REST API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.WithFields(map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("http")
	})
}
