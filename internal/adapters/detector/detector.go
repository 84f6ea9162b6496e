// Package detector adapts an opaque face estimator into per-tick samples.
package detector

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/headcount/internal/domain/model"
	"github.com/okian/headcount/pkg/metrics"
)

// Estimator is the external face estimator. It must tolerate repeated calls.
type Estimator interface {
	EstimateFaces(ctx context.Context, frame model.Frame) ([]model.Region, error)
}

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithClock overrides the time source used for ObservedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// Adapter calls the estimator once per Detect and counts its regions.
// It must not be invoked concurrently; the loop driver keeps one call in flight.
type Adapter struct {
	estimator Estimator
	now       func() time.Time
}

// New wraps an estimator.
func New(estimator Estimator, opts ...Option) *Adapter {
	a := &Adapter{estimator: estimator, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Detect runs the estimator on frame. The count is the number of regions
// returned, unfiltered. Estimator errors and panics come back as
// *DetectionError.
func (a *Adapter) Detect(ctx context.Context, frame model.Frame) (sample model.Sample, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("detector", "panic")
			sample = model.Sample{}
			err = &DetectionError{FrameSeq: frame.Seq, Err: fmt.Errorf("estimator panic: %v", r)}
		}
	}()

	start := time.Now()
	regions, err := a.estimator.EstimateFaces(ctx, frame)
	metrics.RecordDetectionLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return model.Sample{}, &DetectionError{FrameSeq: frame.Seq, Err: err}
	}

	return model.Sample{
		Count:      len(regions),
		ObservedAt: a.now(),
		Regions:    regions,
	}, nil
}
