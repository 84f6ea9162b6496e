package attendance

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithCapacity bounds the event log. Non-positive values keep the default.
func WithCapacity(capacity int) Option {
	return func(t *Tracker) {
		if capacity > 0 {
			t.capacity = capacity
		}
	}
}

// WithBaseline selects how the first observation is compared.
func WithBaseline(b Baseline) Option {
	return func(t *Tracker) {
		t.baseline = b
	}
}

// WithIDGenerator overrides how event IDs are produced.
func WithIDGenerator(gen func() string) Option {
	return func(t *Tracker) {
		if gen != nil {
			t.newID = gen
		}
	}
}
