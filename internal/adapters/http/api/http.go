// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/autoapply/internal/app"
	"github.com/okian/autoapply/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the run orchestrator.
type Dependencies interface {
	// StartRun schedules a new run. A nil threshold uses the default.
	StartRun(ctx context.Context, threshold *float64) (string, error)

	// Status returns the latest snapshot of a run.
	Status(ctx context.Context, runID string) (model.RunSnapshot, error)

	// Health reports which optional backends are live.
	Health() service.Health

	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	autoApplyHandler *AutoApplyHandler
	statusHandler    *StatusHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
}

// NewServer creates a new API server with all handlers. port is echoed by
// the health endpoint.
func NewServer(deps Dependencies, port string) *Server {
	return &Server{
		autoApplyHandler: NewAutoApplyHandler(deps),
		statusHandler:    NewStatusHandler(deps),
		healthHandler:    NewHealthHandler(deps, port),
		statsHandler:     NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/auto-apply", MetricsMiddleware(s.autoApplyHandler.HandleStartRun, "auto-apply"))
	mux.HandleFunc("/status/", MetricsMiddleware(s.statusHandler.HandleGetStatus, "status"))
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", MetricsHandler())
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
