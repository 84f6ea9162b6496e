package smoketest

import (
	"time"

	"github.com/okian/headcount/internal/domain/model"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Duration     time.Duration // How long to watch a running session
	PollInterval time.Duration // Delay between /status polls
	Timeout      time.Duration // HTTP request timeout
	ReadyTimeout time.Duration // How long to wait for the estimator to load
	WindowSize   int           // Expected rolling window capacity
	LogSize      int           // Expected attendance log capacity
	Attendance   bool          // Enable attendance tracking for the run
	Verbose      bool          // Log every poll
}

// Stats holds smoke run statistics.
type Stats struct {
	RunID      string
	Polls      int
	FirstTick  uint64
	LastTick   uint64
	MaxFaces   int
	Events     int
	Violations int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// attendanceResponse mirrors GET /attendance.
type attendanceResponse struct {
	Enabled bool                    `json:"enabled"`
	Events  []model.AttendanceEvent `json:"events"`
}

// stateResponse mirrors the lifecycle command responses.
type stateResponse struct {
	State     string `json:"state"`
	SessionID string `json:"session_id"`
}
