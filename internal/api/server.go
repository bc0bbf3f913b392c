// Package api exposes the organization collection, the course assignment
// matrix, and the dashboard aggregations over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"orgmatrix/internal/core"
)

// Server holds the HTTP surface over a core.Service.
type Server struct {
	svc     *core.Service
	logger  core.Logger
	metrics http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger installs the request logger.
func WithLogger(logger core.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts the supplied handler at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer constructs the HTTP surface over the supplied service.
func NewServer(svc *core.Service, opts ...Option) *Server {
	s := &Server{svc: svc, logger: core.NopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the router with all endpoints mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", s.listOrganizations)
			r.Post("/", s.createOrganization)
			r.Post("/samples", s.addSampleOrganizations)
			r.Post("/reset", s.resetOrganizations)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getOrganization)
				r.Patch("/", s.updateOrganization)
				r.Delete("/", s.deleteOrganization)
			})
		})

		r.Get("/courses", s.listCourses)

		r.Route("/matrix", func(r chi.Router) {
			r.Get("/", s.getMatrix)
			r.Delete("/", s.clearMatrix)
			r.Put("/{courseID}/{orgID}/enabled", s.setCourseEnabled)
			r.Put("/{courseID}/{orgID}/value", s.setCourseValue)
		})

		r.Get("/dashboard", s.dashboard)
	})

	return r
}
