package aggregator

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindowSize approximates one second of samples at ~30 ticks/sec.
// The horizon is sample based; tick spacing follows the display refresh.
const DefaultWindowSize = 30

// Metrics is the aggregator output for the most recent tick.
type Metrics struct {
	InstantaneousRate int     `json:"instantaneous_rate"`
	AverageCount      float64 `json:"average_count"`
	HasAverage        bool    `json:"has_average"`
	WindowLen         int     `json:"window_len"`
}

// Aggregator owns the rolling window and the rate state. It is not safe for
// concurrent use; callers serialize OnSample.
type Aggregator struct {
	windowSize int
	window     *Window
	lastTickAt time.Time // zero until the first sample
	current    Metrics
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{windowSize: DefaultWindowSize}
	for _, opt := range opts {
		opt(a)
	}
	a.window = NewWindow(a.windowSize)
	return a
}

// OnSample folds one count into the window and recomputes rate and average.
func (a *Aggregator) OnSample(count int, now time.Time) Metrics {
	a.window.Push(float64(count))

	if !a.lastTickAt.IsZero() {
		elapsedMs := float64(now.Sub(a.lastTickAt)) / float64(time.Millisecond)
		if elapsedMs > 0 {
			a.current.InstantaneousRate = int(math.Round(1000 / elapsedMs))
		}
	}
	a.lastTickAt = now

	if n := a.window.Len(); n > 0 {
		a.current.AverageCount = math.Round(stat.Mean(a.window.Values(), nil)*10) / 10
		a.current.HasAverage = true
	}
	a.current.WindowLen = a.window.Len()

	return a.current
}

// Current returns the metrics computed by the last OnSample.
func (a *Aggregator) Current() Metrics { return a.current }

// WindowValues returns the rolling window contents, oldest first.
func (a *Aggregator) WindowValues() []float64 { return a.window.Values() }

// WindowSize returns the configured window capacity.
func (a *Aggregator) WindowSize() int { return a.window.Cap() }

// Reset clears the window, rate state and derived metrics.
func (a *Aggregator) Reset() {
	a.window.Reset()
	a.lastTickAt = time.Time{}
	a.current = Metrics{}
}
