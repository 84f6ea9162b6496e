package service

import (
	"time"

	"github.com/okian/headcount/internal/adapters/detector"
	"github.com/okian/headcount/internal/domain/attendance"
	"github.com/okian/headcount/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRefreshInterval sets the delay between the end of one tick and the next.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithWindowSize sets the aggregator window capacity.
func WithWindowSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.windowSize = size
		}
	}
}

// WithAttendanceLogSize sets the attendance log capacity.
func WithAttendanceLogSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.logSize = size
		}
	}
}

// WithAttendanceBaseline sets how the attendance tracker treats its first sample.
func WithAttendanceBaseline(b attendance.Baseline) Option {
	return func(s *Service) {
		s.baseline = b
	}
}

// WithAttendanceEnabled sets the initial attendance tracking flag.
func WithAttendanceEnabled(enabled bool) Option {
	return func(s *Service) {
		s.attendanceEnabled = enabled
	}
}

// WithOverlayEnabled sets the initial overlay flag.
func WithOverlayEnabled(enabled bool) Option {
	return func(s *Service) {
		s.overlayEnabled = enabled
	}
}

// WithResetOnRestart starts a fresh session on every Stopped to Running
// transition instead of carrying the window and log over.
func WithResetOnRestart(reset bool) Option {
	return func(s *Service) {
		s.resetOnRestart = reset
	}
}

// WithPublisher sets where applied snapshots are sent.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithDetectorOptions forwards options to the detector adapter built after load.
func WithDetectorOptions(opts ...detector.Option) Option {
	return func(s *Service) {
		s.detectorOpts = append(s.detectorOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
