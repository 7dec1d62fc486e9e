package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/autoapply/internal/app"
)

const maxRequestBody = 1 << 16

// StartRunDependencies defines what the start handler needs.
type StartRunDependencies interface {
	StartRun(ctx context.Context, threshold *float64) (string, error)
}

// startRunRequest is the optional body of POST /auto-apply.
type startRunRequest struct {
	Threshold *float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
}

// startRunBody is the wire form. A threshold that is not a JSON number is
// ignored and the default applies.
type startRunBody struct {
	Threshold json.RawMessage `json:"threshold"`
}

type startRunResponse struct {
	RunID string `json:"runId"`
}

// AutoApplyHandler handles run start requests.
type AutoApplyHandler struct {
	deps      StartRunDependencies
	validator *validator.Validate
}

// NewAutoApplyHandler creates a new start handler.
func NewAutoApplyHandler(deps StartRunDependencies) *AutoApplyHandler {
	return &AutoApplyHandler{
		deps:      deps,
		validator: validator.New(),
	}
}

// HandleStartRun handles POST /auto-apply requests. An empty body uses the
// default threshold.
func (h *AutoApplyHandler) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_run"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	req, err := h.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	runID, err := h.deps.StartRun(r.Context(), req.Threshold)
	switch {
	case errors.Is(err, service.ErrInvalidThreshold):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, startRunResponse{RunID: runID})
}

func (h *AutoApplyHandler) decode(r *http.Request) (startRunRequest, error) {
	var req startRunRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	var wire startRunBody
	if err := json.Unmarshal(body, &wire); err != nil {
		return req, fmt.Errorf("invalid json: %w", err)
	}
	req.Threshold = numberOrNil(wire.Threshold)
	if err := h.validator.Struct(req); err != nil {
		return req, errors.New(validationMessage(err))
	}
	return req, nil
}

func numberOrNil(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	num, ok := v.(json.Number)
	if !ok {
		return nil
	}
	f, err := num.Float64()
	if err != nil {
		return nil
	}
	return &f
}

// validationMessage turns validator errors into a short client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return fmt.Sprintf("validation error: %s must satisfy %s=%s", ve.Field(), ve.Tag(), ve.Param())
	}
	return "validation error: invalid request"
}
