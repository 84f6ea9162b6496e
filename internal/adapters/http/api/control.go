package api

import (
	"context"
	"net/http"

	"github.com/okian/headcount/internal/domain/model"
)

// ControlDependencies defines the lifecycle commands the handler drives.
type ControlDependencies interface {
	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Snapshot() model.Snapshot
}

// ControlHandler handles lifecycle commands.
type ControlHandler struct {
	deps ControlDependencies
}

// NewControlHandler creates a new control handler.
func NewControlHandler(deps ControlDependencies) *ControlHandler {
	return &ControlHandler{deps: deps}
}

type stateResponse struct {
	State     string `json:"state"`
	SessionID string `json:"session_id"`
}

// HandleInit handles POST /init requests. It blocks until the load settles.
func (h *ControlHandler) HandleInit(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "api.init", h.deps.Init)
}

// HandleStart handles POST /start requests.
func (h *ControlHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "api.start", h.deps.Start)
}

// HandleStop handles POST /stop requests.
func (h *ControlHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "api.stop", h.deps.Stop)
}

func (h *ControlHandler) command(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context) error) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := fn(r.Context()); err != nil {
		writeServiceError(w, op, err)
		return
	}
	snap := h.deps.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{State: snap.State, SessionID: snap.SessionID})
}
