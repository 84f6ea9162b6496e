package service

import (
	"context"
	"time"

	"github.com/okian/headcount/internal/adapters/camera"
	"github.com/okian/headcount/internal/adapters/detector"
	"github.com/okian/headcount/internal/domain/model"
	"github.com/okian/headcount/pkg/logger"
	"github.com/okian/headcount/pkg/metrics"
)

// run is one Running period. Its generation stamps every result so a
// detection that finishes after Stop is recognised and dropped.
type run struct {
	gen      uint64
	handle   camera.Handle
	detector *detector.Adapter
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// loop schedules ticks until ctx is cancelled. The next tick is armed only
// after the current one has been applied, so at most one detection is in
// flight.
func (s *Service) loop(ctx context.Context, r *run) {
	defer func() {
		s.mu.Lock()
		delete(s.loops, r.gen)
		s.mu.Unlock()
		close(r.done)
	}()

	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		frame, ok := s.frame(r)
		if !ok {
			return
		}

		sample, err := r.detector.Detect(ctx, frame)
		s.apply(ctx, r, sample, err)

		timer.Reset(r.interval)
	}
}

// frame pulls the current frame if r is still the live run.
func (s *Service) frame(r *run) (model.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.gen != s.gen || s.state != StateRunning {
		return model.Frame{}, false
	}
	return r.handle.CurrentFrame(), true
}

// apply lands one tick's result. A failed detection leaves the session
// untouched.
func (s *Service) apply(ctx context.Context, r *run, sample model.Sample, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.gen != s.gen || s.state != StateRunning {
		metrics.RecordStaleSample()
		s.logger.Debug(ctx, "discarding stale detection",
			logger.Uint64("generation", r.gen),
			logger.Uint64("current", s.gen),
		)
		return
	}

	if err != nil {
		s.lastErr = err
		metrics.RecordDetectionError()
		metrics.RecordErrorByComponent("detector", "detection")
		s.logger.Warn(ctx, "detection failed", logger.Error(err))
		return
	}

	sess := s.session
	sess.Ticks++
	sess.Last = sample
	m := sess.Aggregator.OnSample(sample.Count, sample.ObservedAt)

	if s.attendanceEnabled {
		if ev, ok := sess.Tracker.Observe(sample.Count, sample.ObservedAt); ok {
			metrics.RecordAttendanceEvent(ev.Kind.String())
			s.logger.Info(ctx, "attendance event",
				logger.String("kind", ev.Kind.String()),
				logger.Int("count", ev.Count),
			)
		}
		metrics.UpdateAttendanceLogLength(sess.Tracker.Len())
	}
	s.lastErr = nil

	metrics.RecordTick()
	metrics.UpdateFaceCount(sample.Count)
	metrics.UpdateInstantaneousFPS(m.InstantaneousRate)
	metrics.UpdateWindowLength(m.WindowLen)
	if m.HasAverage {
		metrics.UpdateAverageFaceCount(m.AverageCount)
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, s.snapshotLocked())
	}
}
