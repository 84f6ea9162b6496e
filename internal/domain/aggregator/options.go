package aggregator

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWindowSize sets the rolling window capacity in samples.
// Non-positive sizes keep the default.
func WithWindowSize(size int) Option {
	return func(a *Aggregator) {
		if size > 0 {
			a.windowSize = size
		}
	}
}
