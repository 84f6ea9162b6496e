package smoketest

import "time"

// Default run configuration constants.
const (
	DefaultDuration     = 5 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultTimeout      = 5 * time.Second
	DefaultReadyTimeout = 30 * time.Second
	DefaultWindowSize   = 30
	DefaultLogSize      = 10

	// settleDelay is how long to watch a stopped session for stray ticks.
	settleDelay = 250 * time.Millisecond
)
