// Package aggregator turns the per-tick count stream into a smoothed average
// and an instantaneous frame rate.
package aggregator

// Window is a fixed-capacity FIFO of recent sample counts backed by a ring.
// Pushing past capacity evicts the oldest value.
type Window struct {
	buf   []float64
	start int // index of the oldest value
	size  int
}

// NewWindow creates a window holding at most capacity values.
// A capacity below one is raised to one.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends v, evicting the oldest value when full.
func (w *Window) Push(v float64) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = v
		w.size++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

// Len returns the number of values held.
func (w *Window) Len() int { return w.size }

// Cap returns the capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Values returns the held values, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Reset empties the window.
func (w *Window) Reset() {
	w.start = 0
	w.size = 0
}
