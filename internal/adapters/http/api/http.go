// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/trainhist/internal/app"
	"github.com/okian/trainhist/internal/domain/compare"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// NewView opens the per-request view holding the preferred currency.
	NewView(ctx context.Context) *app.View

	Detail(ctx context.Context, view *app.View, id string) (*app.Report, error)
	RepriceCached(ctx context.Context, id, code string) ([]app.TransferView, error)
	Compare(ctx context.Context, view *app.View, raw string) (*app.Comparison, error)
	ComputeBundle(ctx context.Context, b app.Bundle) (*app.Report, error)

	PreferredCurrency(ctx context.Context) string
	SetPreferredCurrency(ctx context.Context, code string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	playersHandler     *PlayersHandler
	compareHandler     *CompareHandler
	reconstructHandler *ReconstructHandler
	preferencesHandler *PreferencesHandler
	log                logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRequestLogger logs failed requests to l.
func WithRequestLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l.Named("http")
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		playersHandler:     NewPlayersHandler(deps),
		compareHandler:     NewCompareHandler(deps),
		reconstructHandler: NewReconstructHandler(deps),
		preferencesHandler: NewPreferencesHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc, endpoint string) {
	mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint, s.log))
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	s.handle(mux, "GET /healthz", s.healthHandler.HandleHealth, "healthz")
	s.handle(mux, "GET /stats", s.statsHandler.HandleStats, "stats")
	s.handle(mux, "GET /players/{id}/history", s.playersHandler.HandleHistory, "history")
	s.handle(mux, "GET /players/{id}/transfers", s.playersHandler.HandleTransfers, "transfers")
	s.handle(mux, "GET /compare", s.compareHandler.HandleCompare, "compare")
	s.handle(mux, "POST /reconstruct", s.reconstructHandler.HandleReconstruct, "reconstruct")
	s.handle(mux, "GET /preferences/currency", s.preferencesHandler.HandleGet, "preferences")
	s.handle(mux, "PUT /preferences/currency", s.preferencesHandler.HandlePut, "preferences")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a service error onto a status code and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, compare.ErrInvalidID),
		errors.Is(err, compare.ErrNoEntities),
		errors.Is(err, compare.ErrTooManyEntities),
		errors.Is(err, app.ErrInvalidCurrency),
		errors.Is(err, app.ErrInvalidBundle):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, app.ErrNotCached):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, season.ErrAnchorUnavailable):
		return http.StatusServiceUnavailable, "analytics_unavailable"
	case errors.Is(err, app.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	case errors.Is(err, app.ErrInputUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
