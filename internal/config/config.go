// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and the environment on top of the defaults.
// - Errors returned to callers wrap this package's sentinel kinds.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RefreshRateHz is the nominal tick rate of the detection loop.
	RefreshRateHz int `koanf:"refresh_rate_hz"`

	// WindowSize bounds the rolling window used for the average count.
	WindowSize int `koanf:"window_size"`

	// AttendanceLogSize bounds the attendance log.
	AttendanceLogSize int `koanf:"attendance_log_size"`

	// AttendanceEnabled is the initial attendance tracking flag.
	AttendanceEnabled bool `koanf:"attendance_enabled"`

	// AttendanceBaseline is "zero" or "first_sample".
	AttendanceBaseline string `koanf:"attendance_baseline"`

	// OverlayEnabled is the initial overlay flag.
	OverlayEnabled bool `koanf:"overlay_enabled"`

	// ResetOnRestart starts a fresh session on every restart.
	ResetOnRestart bool `koanf:"reset_on_restart"`

	// AutoStart starts monitoring as soon as the estimator is loaded.
	AutoStart bool `koanf:"auto_start"`

	// FeedBufferSize is the per-subscriber snapshot buffer of the live feed.
	FeedBufferSize int `koanf:"feed_buffer_size"`

	// CameraWidth and CameraHeight set the synthetic camera resolution.
	CameraWidth  int `koanf:"camera_width"`
	CameraHeight int `koanf:"camera_height"`

	// EstimatorMaxFaces caps the simulated face count.
	EstimatorMaxFaces int `koanf:"estimator_max_faces"`

	// EstimatorLatencyMinMS and EstimatorLatencyMaxMS bound simulated inference latency.
	EstimatorLatencyMinMS int `koanf:"estimator_latency_min_ms"`
	EstimatorLatencyMaxMS int `koanf:"estimator_latency_max_ms"`

	// EstimatorFailureRate is the probability in [0,1] that an estimate fails.
	EstimatorFailureRate float64 `koanf:"estimator_failure_rate"`

	// EstimatorLoadDelayMS simulates model load time.
	EstimatorLoadDelayMS int `koanf:"estimator_load_delay_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		RefreshRateHz:         30,
		WindowSize:            30,
		AttendanceLogSize:     10,
		AttendanceEnabled:     false,
		AttendanceBaseline:    "zero",
		OverlayEnabled:        true,
		ResetOnRestart:        false,
		AutoStart:             false,
		FeedBufferSize:        16,
		CameraWidth:           640,
		CameraHeight:          480,
		EstimatorMaxFaces:     4,
		EstimatorLatencyMinMS: 20,
		EstimatorLatencyMaxMS: 60,
		EstimatorFailureRate:  0,
		EstimatorLoadDelayMS:  500,
	}
}

// RefreshInterval converts RefreshRateHz to a tick interval.
func (c *Config) RefreshInterval() time.Duration {
	if c.RefreshRateHz <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.RefreshRateHz)
}

// EstimatorLatency returns the simulated latency bounds.
func (c *Config) EstimatorLatency() (lo, hi time.Duration) {
	return time.Duration(c.EstimatorLatencyMinMS) * time.Millisecond,
		time.Duration(c.EstimatorLatencyMaxMS) * time.Millisecond
}

// EstimatorLoadDelay returns the simulated model load time.
func (c *Config) EstimatorLoadDelay() time.Duration {
	return time.Duration(c.EstimatorLoadDelayMS) * time.Millisecond
}
