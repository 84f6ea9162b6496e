package model

import "time"

// Snapshot is the read model handed to presentation once per applied tick.
type Snapshot struct {
	SessionID         string            `json:"session_id"`
	State             string            `json:"state"`
	Tick              uint64            `json:"tick"`
	FaceCount         int               `json:"face_count"`
	InstantaneousRate int               `json:"instantaneous_rate"`
	AverageCount      float64           `json:"average_count"`
	HasAverage        bool              `json:"has_average"`
	WindowLen         int               `json:"window_len"`
	IsActive          bool              `json:"is_active"`
	OverlayEnabled    bool              `json:"overlay_enabled"`
	Regions           []Region          `json:"regions,omitempty"`
	AttendanceEnabled bool              `json:"attendance_enabled"`
	AttendanceLog     []AttendanceEvent `json:"attendance_log,omitempty"`
	ObservedAt        time.Time         `json:"observed_at"`
	LastError         string            `json:"last_error,omitempty"`
}
