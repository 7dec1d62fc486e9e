package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/autoapply/internal/adapters/repository"
	"github.com/okian/autoapply/internal/domain/model"
)

// StatusDependencies defines the interface for run lookups.
type StatusDependencies interface {
	Status(ctx context.Context, runID string) (model.RunSnapshot, error)
}

// notFoundResponse is the 404 body existing clients match on.
type notFoundResponse struct {
	Error string `json:"error"`
}

// StatusHandler handles run status requests.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleGetStatus handles GET /status/{id} requests.
func (h *StatusHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_status"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	runID := strings.TrimPrefix(r.URL.Path, "/status/")
	if runID == "" || strings.Contains(runID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	snap, err := h.deps.Status(r.Context(), runID)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundResponse{Error: "Run not found"})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
