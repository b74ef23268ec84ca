// Package server exposes the book of a user as a read-only JSON API.
//
// Mutations go through the opc command line; the API only reports and
// simulates.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds what the server needs to answer requests.
type Config struct {
	Store          store.Store
	User           string
	Addr           string
	AllowedOrigins []string
	AlertDays      int
	Log            zerolog.Logger

	// Today returns the reference day of reports. Defaults to opcoes.Today.
	Today func() opcoes.Date
}

// Server is the HTTP API server.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	store     store.Store
	user      string
	alertDays int
	today     func() opcoes.Date
	log       zerolog.Logger
}

// New creates a server with its routes.
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		store:     cfg.Store,
		user:      cfg.User,
		alertDays: cfg.AlertDays,
		today:     cfg.Today,
		log:       cfg.Log.With().Str("component", "server").Logger(),
	}
	if s.today == nil {
		s.today = opcoes.Today
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/positions", s.handlePositions)
		r.Get("/profits", s.handleProfits)
		r.Get("/collateral", s.handleCollateral)
		r.Get("/goals", s.handleGoals)
		r.Post("/preview", s.handlePreview)
	})
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Str("user", s.user).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
