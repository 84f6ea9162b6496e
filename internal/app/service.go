// Package service provides the loop driver: it owns the lifecycle of a
// monitoring session and feeds each tick's sample into the aggregator and the
// attendance tracker.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/headcount/internal/adapters/camera"
	"github.com/okian/headcount/internal/adapters/detector"
	"github.com/okian/headcount/internal/adapters/estimator"
	"github.com/okian/headcount/internal/domain/aggregator"
	"github.com/okian/headcount/internal/domain/attendance"
	"github.com/okian/headcount/internal/domain/model"
	"github.com/okian/headcount/pkg/logger"
	"github.com/okian/headcount/pkg/metrics"
)

// Default driver configuration constants.
const (
	defaultRefreshInterval = time.Second / 30
)

// Publisher receives the snapshot of every applied tick.
type Publisher interface {
	Publish(ctx context.Context, snap model.Snapshot)
}

// Service is the loop driver.
type Service struct {
	mu sync.Mutex

	// Collaborators
	loader       estimator.Loader
	camera       camera.Camera
	publisher    Publisher
	detectorOpts []detector.Option
	detector     *detector.Adapter

	// Configuration
	interval       time.Duration
	windowSize     int
	logSize        int
	baseline       attendance.Baseline
	resetOnRestart bool

	// State
	state             State
	session           *Session
	gen               uint64
	run               *run
	loops             map[uint64]*run
	acquiring         bool
	abortStart        bool
	attendanceEnabled bool
	overlayEnabled    bool
	lastErr           error

	// Logging
	logger logger.Logger
}

// New constructs a Service in the Idle state.
func New(loader estimator.Loader, cam camera.Camera, opts ...Option) *Service {
	s := &Service{
		loader:         loader,
		camera:         cam,
		interval:       defaultRefreshInterval,
		windowSize:     aggregator.DefaultWindowSize,
		logSize:        attendance.DefaultCapacity,
		baseline:       attendance.BaselineZero,
		overlayEnabled: true,
		loops:          make(map[uint64]*run),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("monitor")
	}
	s.session = s.newSession()
	metrics.UpdateMonitorState(int(s.state))

	return s
}

// Init loads the estimator. On failure the driver returns to Idle and Init
// may be called again; nothing retries on its own.
func (s *Service) Init(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateLoading:
		s.mu.Unlock()
		return fmt.Errorf("%w: load already in progress", ErrInvalidTransition)
	case StateReady, StateRunning, StateStopped:
		s.mu.Unlock()
		return nil
	}
	s.setState(StateLoading)
	s.mu.Unlock()

	s.logger.Info(ctx, "loading estimator...")
	start := time.Now()
	est, err := s.loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.setState(StateIdle)
		s.lastErr = err
		metrics.RecordModelLoadError()
		metrics.RecordErrorByComponent("monitor", "model_load")
		s.logger.Error(ctx, "estimator load failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	s.detector = detector.New(est, s.detectorOpts...)
	s.lastErr = nil
	s.setState(StateReady)
	s.logger.Info(ctx, "estimator loaded", logger.Duration("took", time.Since(start)))
	return nil
}

// Start acquires the camera and begins ticking. Starting a running driver is
// a no-op. If the camera cannot be acquired the state does not change.
// The driver lock is not held while the camera is acquired.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.state == StateRunning:
		s.mu.Unlock()
		return nil
	case !s.state.Loaded():
		s.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ErrNotReady, s.state)
	case s.acquiring:
		s.mu.Unlock()
		return fmt.Errorf("%w: start already in progress", ErrInvalidTransition)
	}
	s.acquiring = true
	s.abortStart = false
	s.mu.Unlock()

	handle, err := s.camera.Acquire(ctx)

	s.mu.Lock()
	s.acquiring = false
	if err != nil {
		s.lastErr = err
		metrics.RecordCameraAcquisitionError()
		metrics.RecordErrorByComponent("monitor", "acquisition")
		s.logger.Warn(ctx, "camera acquisition failed",
			logger.String("state", s.state.String()),
			logger.Error(err),
		)
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	if s.abortStart {
		s.abortStart = false
		s.mu.Unlock()
		_ = s.release(ctx, handle)
		return fmt.Errorf("%w: stopped during camera acquisition", ErrInvalidTransition)
	}
	defer s.mu.Unlock()

	if s.state == StateStopped && s.resetOnRestart {
		s.session = s.newSession()
	}

	s.gen++
	runCtx, cancel := context.WithCancel(context.Background())
	r := &run{
		gen:      s.gen,
		handle:   handle,
		detector: s.detector,
		interval: s.interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.run = r
	s.loops[r.gen] = r
	s.lastErr = nil
	s.setState(StateRunning)
	metrics.RecordMonitoringRun()

	go s.loop(runCtx, r)

	s.logger.Info(ctx, "monitoring started",
		logger.String("session", s.session.ID),
		logger.Uint64("generation", r.gen),
		logger.Duration("interval", s.interval),
	)
	return nil
}

// Stop cancels the pending tick and releases the camera. A detection still in
// flight is not waited for; its result is discarded when it lands. A Start
// still waiting on the camera is abandoned.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	r := s.stopLocked(ctx)
	s.mu.Unlock()

	if r == nil {
		return nil
	}
	return s.release(ctx, r.handle)
}

// Shutdown stops the driver and waits for every tick goroutine, including
// those of earlier runs still blocked in a detection, to exit or ctx to
// expire.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	r := s.stopLocked(ctx)
	pending := make([]*run, 0, len(s.loops))
	for _, lr := range s.loops {
		pending = append(pending, lr)
	}
	s.mu.Unlock()

	var err error
	if r != nil {
		err = s.release(ctx, r.handle)
	}
	for _, lr := range pending {
		select {
		case <-lr.done:
		case <-ctx.Done():
			s.logger.Warn(ctx, "shutdown timed out waiting for tick loop",
				logger.Uint64("generation", lr.gen),
			)
			return fmt.Errorf("shutdown timed out: %w", ctx.Err())
		}
	}
	return err
}

// stopLocked moves a running driver to Stopped and returns the run whose
// camera handle the caller must release. Caller holds mu.
func (s *Service) stopLocked(ctx context.Context) *run {
	if s.acquiring {
		s.abortStart = true
	}
	if s.state != StateRunning || s.run == nil {
		return nil
	}

	r := s.run
	s.run = nil
	s.gen++
	r.cancel()
	s.setState(StateStopped)

	s.logger.Info(ctx, "monitoring stopped",
		logger.String("session", s.session.ID),
		logger.Uint64("ticks", s.session.Ticks),
	)
	return r
}

// release hands a camera handle back. It is called without holding mu.
func (s *Service) release(ctx context.Context, h camera.Handle) error {
	if err := s.camera.Release(h); err != nil {
		metrics.RecordErrorByComponent("monitor", "release")
		s.logger.Error(ctx, "camera release failed", logger.Error(err))
		return fmt.Errorf("release camera: %w", err)
	}
	return nil
}

// SetAttendanceEnabled toggles attendance tracking. While disabled the
// tracker receives no samples, so its log and last count stay frozen.
func (s *Service) SetAttendanceEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendanceEnabled = enabled
}

// SetOverlayEnabled toggles whether snapshots carry detection regions.
func (s *Service) SetOverlayEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlayEnabled = enabled
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current read model.
func (s *Service) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AttendanceLog returns the attendance log, most recent first.
func (s *Service) AttendanceLog() []model.AttendanceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Tracker.Log()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.session.Aggregator.Current()
	stats := map[string]interface{}{
		"state":              s.state.String(),
		"session":            s.session.ID,
		"sessionStartedAt":   s.session.StartedAt,
		"ticks":              s.session.Ticks,
		"generation":         s.gen,
		"activeLoops":        len(s.loops),
		"acquiring":          s.acquiring,
		"refreshIntervalMs":  s.interval.Milliseconds(),
		"windowLength":       m.WindowLen,
		"windowSize":         s.session.Aggregator.WindowSize(),
		"attendanceLogSize":  s.session.Tracker.Len(),
		"attendanceCapacity": s.session.Tracker.Capacity(),
		"attendanceEnabled":  s.attendanceEnabled,
		"attendanceBaseline": s.baseline.String(),
		"overlayEnabled":     s.overlayEnabled,
		"resetOnRestart":     s.resetOnRestart,
	}
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
	}
	return stats
}

func (s *Service) setState(st State) {
	if s.state != st {
		s.logger.Debug(context.Background(), "state transition",
			logger.String("from", s.state.String()),
			logger.String("to", st.String()),
		)
	}
	s.state = st
	metrics.UpdateMonitorState(int(st))
}

func (s *Service) snapshotLocked() model.Snapshot {
	m := s.session.Aggregator.Current()
	snap := model.Snapshot{
		SessionID:         s.session.ID,
		State:             s.state.String(),
		Tick:              s.session.Ticks,
		FaceCount:         s.session.Last.Count,
		InstantaneousRate: m.InstantaneousRate,
		AverageCount:      m.AverageCount,
		HasAverage:        m.HasAverage,
		WindowLen:         m.WindowLen,
		IsActive:          s.state == StateRunning,
		OverlayEnabled:    s.overlayEnabled,
		AttendanceEnabled: s.attendanceEnabled,
		ObservedAt:        s.session.Last.ObservedAt,
	}
	if s.overlayEnabled && len(s.session.Last.Regions) > 0 {
		snap.Regions = append([]model.Region(nil), s.session.Last.Regions...)
	}
	if s.attendanceEnabled {
		snap.AttendanceLog = s.session.Tracker.Log()
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}
