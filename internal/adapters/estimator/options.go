// Package estimator provides the estimator loading contract and a simulated
// face estimator for running the pipeline without a model.
package estimator

import "time"

// Option applies a configuration option to the Simulated estimator.
type Option func(*Simulated)

// WithLatencyRange sets the simulated inference latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Simulated) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithMaxFaces caps the simulated face count.
func WithMaxFaces(n int) Option {
	return func(s *Simulated) {
		if n >= 0 {
			s.maxFaces = n
		}
	}
}

// WithFailureRate sets the probability in [0,1] that a call fails.
func WithFailureRate(rate float64) Option {
	return func(s *Simulated) {
		if rate >= 0 && rate <= 1 {
			s.failureRate = rate
		}
	}
}

// WithStepProbability sets the per-call probability that the count moves by one.
func WithStepProbability(p float64) Option {
	return func(s *Simulated) {
		if p >= 0 && p <= 1 {
			s.stepProbability = p
		}
	}
}

// WithSeed makes the simulation reproducible.
func WithSeed(seed int64) Option {
	return func(s *Simulated) {
		s.seed = seed
	}
}

// WithFrameSize sets the frame dimensions used to place regions.
func WithFrameSize(width, height int) Option {
	return func(s *Simulated) {
		if width > 0 && height > 0 {
			s.frameWidth = width
			s.frameHeight = height
		}
	}
}

// WithScript replaces the random walk with a fixed count sequence that
// repeats once exhausted.
func WithScript(counts ...int) Option {
	return func(s *Simulated) {
		if len(counts) > 0 {
			s.script = append([]int(nil), counts...)
		}
	}
}
