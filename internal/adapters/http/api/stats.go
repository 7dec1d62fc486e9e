package api

import (
	"net/http"

	"github.com/okian/autoapply/internal/domain/model"
)

// StatsProvider exposes orchestrator counters: runs by status, sink queue
// depth and the live scorer and sink.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a stats handler over statsProvider.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats writes the orchestrator stats. Run statuses with no runs are
// reported as zero so dashboards always see all four states.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	stats := make(map[string]interface{})
	for k, v := range h.statsProvider.GetStats() {
		stats[k] = v
	}
	if byStatus, ok := stats["runsByStatus"].(map[string]int); ok {
		filled := make(map[string]int, len(model.AllRunStatuses()))
		for _, status := range model.AllRunStatuses() {
			filled[string(status)] = byStatus[string(status)]
		}
		stats["runsByStatus"] = filled
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, stats)
}
