package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/headcount/internal/domain/attendance"
)

// Environment variable names.
const (
	EnvPrefix     = "HEADCOUNT_"
	EnvConfigFile = "HEADCOUNT_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HEADCOUNT_CONFIG is set
//  3. env (prefix HEADCOUNT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// HEADCOUNT_WINDOW_SIZE -> window_size; underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case c.RefreshRateHz <= 0:
		return invalid("refresh_rate_hz must be positive")
	case c.WindowSize <= 0:
		return invalid("window_size must be positive")
	case c.AttendanceLogSize <= 0:
		return invalid("attendance_log_size must be positive")
	case c.FeedBufferSize <= 0:
		return invalid("feed_buffer_size must be positive")
	case c.CameraWidth <= 0 || c.CameraHeight <= 0:
		return invalid("camera_width and camera_height must be positive")
	case c.EstimatorMaxFaces < 0:
		return invalid("estimator_max_faces must not be negative")
	case c.EstimatorLatencyMinMS < 0 || c.EstimatorLatencyMaxMS < c.EstimatorLatencyMinMS:
		return invalid("estimator latency range must satisfy 0 <= min <= max")
	case c.EstimatorFailureRate < 0 || c.EstimatorFailureRate > 1:
		return invalid("estimator_failure_rate must be within [0,1]")
	case c.EstimatorLoadDelayMS < 0:
		return invalid("estimator_load_delay_ms must not be negative")
	}
	if _, err := attendance.ParseBaseline(c.AttendanceBaseline); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
