package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/autoapply/internal/app"
	"github.com/okian/autoapply/pkg/metrics"
)

// HealthDependencies reports backend availability.
type HealthDependencies interface {
	Health() service.Health
}

type healthResponse struct {
	OK bool `json:"ok"`
	service.Health
	Port string `json:"port"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps HealthDependencies
	port string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies, port string) *HealthHandler {
	return &HealthHandler{deps: deps, port: port}
}

// HandleHealth handles GET /health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Health: h.deps.Health(), Port: h.port})
}

// MetricsHandler serves the custom Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
