// Package server exposes the training log, recommendations, and reports
// over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/majowuji/wuji/internal/metrics"
	"github.com/majowuji/wuji/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	log    *slog.Logger
	apiKey string
	loc    *time.Location
	m      *metrics.Metrics
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, apiKey string, loc *time.Location, m *metrics.Metrics, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		log:    log,
		apiKey: apiKey,
		loc:    loc,
		m:      m,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Instrument(s.m))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/trainings", s.handleLogTraining)
		r.Get("/trainings", s.handleListTrainings)
		r.Get("/recommendation", s.handleRecommendation)
		r.Get("/goals/{exercise}", s.handleGoals)
		r.Get("/balance", s.handleBalance)
		r.Get("/records", s.handleRecords)
		r.Get("/stats/{exercise}", s.handleStats)
		r.Get("/exercises", s.handleExercises)
	})
}
