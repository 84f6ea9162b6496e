package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/headcount/internal/adapters/detector"
)

// Loader loads the estimator model. Load may take a while and is retried only
// by the caller.
type Loader interface {
	Load(ctx context.Context) (detector.Estimator, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (detector.Estimator, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) (detector.Estimator, error) { return f(ctx) }

// SimulatedLoader produces a Simulated estimator after a delay.
type SimulatedLoader struct {
	Delay   time.Duration
	Fail    error    // returned instead of an estimator when set
	Options []Option // passed to NewSimulated
}

// Load implements Loader.
func (l *SimulatedLoader) Load(ctx context.Context) (detector.Estimator, error) {
	if l.Delay > 0 {
		timer := time.NewTimer(l.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("model load cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	if l.Fail != nil {
		return nil, l.Fail
	}
	return NewSimulated(l.Options...), nil
}
