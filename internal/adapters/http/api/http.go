// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/headcount/internal/adapters/mq/hub"
	service "github.com/okian/headcount/internal/app"
	"github.com/okian/headcount/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the loop driver.
type Dependencies interface {
	StatsProvider

	// Lifecycle commands.
	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Presentation toggles.
	SetAttendanceEnabled(enabled bool)
	SetOverlayEnabled(enabled bool)

	// Read operations.
	Snapshot() model.Snapshot
	AttendanceLog() []model.AttendanceEvent
}

// Feed hands out live snapshot subscriptions.
type Feed interface {
	Subscribe() (*hub.Subscription, error)
}

// Server wires HTTP routes for the monitoring API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	controlHandler *ControlHandler
	statusHandler  *StatusHandler
	streamHandler  *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, feed Feed) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		controlHandler: NewControlHandler(deps),
		statusHandler:  NewStatusHandler(deps),
		streamHandler:  NewStreamHandler(feed),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/attendance", MetricsMiddleware(s.statusHandler.HandleAttendance, "attendance"))
	mux.HandleFunc("/overlay", MetricsMiddleware(s.statusHandler.HandleOverlay, "overlay"))
	mux.HandleFunc("/init", MetricsMiddleware(s.controlHandler.HandleInit, "init"))
	mux.HandleFunc("/start", MetricsMiddleware(s.controlHandler.HandleStart, "start"))
	mux.HandleFunc("/stop", MetricsMiddleware(s.controlHandler.HandleStop, "stop"))
	// the upgrade needs the raw writer
	mux.HandleFunc("/stream", s.streamHandler.HandleStream)
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

// writeServiceError maps loop driver errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusConflict, "not_ready", WrapKind(op, ErrConflict, err))
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", WrapKind(op, ErrConflict, err))
	case errors.Is(err, service.ErrAcquisition):
		writeError(w, http.StatusServiceUnavailable, "acquisition_failed", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, service.ErrModelLoad):
		writeError(w, http.StatusServiceUnavailable, "model_load_failed", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// enabledParam reads the required boolean "enabled" query parameter.
func enabledParam(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("enabled")
	if raw == "" {
		return false, errors.New("missing enabled parameter")
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid enabled parameter; must be true or false")
	}
	return v, nil
}
