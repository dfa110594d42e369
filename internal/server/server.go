// Package server exposes the aggregation pipeline over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/numagg/internal/codec"
	"github.com/tjfontaine/numagg/internal/domain"
	"github.com/tjfontaine/numagg/internal/pipeline"
)

// QueryParam is the query parameter holding the comma separated numbers.
const QueryParam = "nums"

// HealthPath answers liveness probes.
const HealthPath = "/healthz"

// Server routes aggregation requests to the pipeline.
type Server struct {
	Router   *chi.Mux
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// New builds the router: one GET route per aggregation kind, and a JSON 404
// for everything else, including wrong methods on known paths.
func New(p *pipeline.Pipeline, logger *slog.Logger, requestTimeout time.Duration) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(requestTimeout))
	r.Use(RecoveryMiddleware(logger))
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "numagg")
	})
	r.Use(middleware.Heartbeat(HealthPath))

	s := &Server{
		Router:   r,
		pipeline: p,
		logger:   logger,
	}

	for _, kind := range domain.AggregationKinds {
		r.Get("/"+string(kind), s.handleAggregate(kind))
	}
	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) handleAggregate(kind domain.AggregationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		AddLogField(ctx, "operation", string(kind))

		exec := s.pipeline.Run(ctx, kind, r.URL.Query().Get(QueryParam))
		if perr := exec.Err(); perr != nil {
			AddLogField(ctx, "error_kind", string(perr.Kind))
			AddError(ctx, perr)
		}

		codec.WriteEnvelope(w, exec.Envelope)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	AddLogField(r.Context(), "error_kind", string(domain.ErrorKindNotFound))
	codec.WriteEnvelope(w, domain.Failure(domain.ErrNotFound()))
}
