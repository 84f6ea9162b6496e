package api

import (
	"net/http"

	"github.com/okian/headcount/internal/domain/model"
)

// StatusDependencies defines the reads and toggles behind the status routes.
type StatusDependencies interface {
	Snapshot() model.Snapshot
	AttendanceLog() []model.AttendanceEvent
	SetAttendanceEnabled(enabled bool)
	SetOverlayEnabled(enabled bool)
}

// StatusHandler serves the presentation read model and its toggles.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

type attendanceResponse struct {
	Enabled bool                    `json:"enabled"`
	Events  []model.AttendanceEvent `json:"events"`
}

type toggleResponse struct {
	Enabled bool `json:"enabled"`
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Snapshot())
}

// HandleAttendance handles GET /attendance and POST /attendance?enabled=.
func (h *StatusHandler) HandleAttendance(w http.ResponseWriter, r *http.Request) {
	const op = "api.attendance"
	switch r.Method {
	case http.MethodGet:
		events := h.deps.AttendanceLog()
		if events == nil {
			events = []model.AttendanceEvent{}
		}
		writeJSON(w, http.StatusOK, attendanceResponse{
			Enabled: h.deps.Snapshot().AttendanceEnabled,
			Events:  events,
		})
	case http.MethodPost:
		enabled, err := enabledParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		h.deps.SetAttendanceEnabled(enabled)
		writeJSON(w, http.StatusOK, toggleResponse{Enabled: enabled})
	default:
		http.NotFound(w, r)
	}
}

// HandleOverlay handles POST /overlay?enabled= requests.
func (h *StatusHandler) HandleOverlay(w http.ResponseWriter, r *http.Request) {
	const op = "api.overlay"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	enabled, err := enabledParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.deps.SetOverlayEnabled(enabled)
	writeJSON(w, http.StatusOK, toggleResponse{Enabled: enabled})
}
