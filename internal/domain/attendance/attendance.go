// Package attendance derives discrete arrival and departure events from the
// per-tick face count.
package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/headcount/internal/domain/model"
)

// DefaultCapacity is the number of events kept in the log.
const DefaultCapacity = 10

// Baseline decides what the first observed count is compared against.
type Baseline int

const (
	// BaselineZero compares the first sample against 0, so a first sample of 0
	// emits nothing and a first sample of 3 emits appeared(3).
	BaselineZero Baseline = iota
	// BaselineFirstSample records the first sample as the baseline without
	// emitting an event.
	BaselineFirstSample
)

// String returns the config name of the baseline.
func (b Baseline) String() string {
	switch b {
	case BaselineZero:
		return "zero"
	case BaselineFirstSample:
		return "first_sample"
	default:
		return fmt.Sprintf("baseline(%d)", int(b))
	}
}

// ParseBaseline maps a config string to a Baseline.
func ParseBaseline(s string) (Baseline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return BaselineZero, nil
	case "first_sample":
		return BaselineFirstSample, nil
	default:
		return BaselineZero, fmt.Errorf("unknown attendance baseline %q", s)
	}
}

// Tracker is the attendance state machine. It holds the last observed count
// and a head-first, bounded event log. Not safe for concurrent use.
type Tracker struct {
	capacity int
	baseline Baseline
	newID    func() string

	lastCount int
	observed  bool
	log       []model.AttendanceEvent // head is the most recent event
}

// New creates a Tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		capacity: DefaultCapacity,
		baseline: BaselineZero,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = make([]model.AttendanceEvent, 0, t.capacity)
	return t
}

// Observe applies one sample. It returns the emitted event, if any.
// lastCount is overwritten whether or not an event is emitted.
func (t *Tracker) Observe(count int, now time.Time) (model.AttendanceEvent, bool) {
	if !t.observed && t.baseline == BaselineFirstSample {
		t.lastCount = count
		t.observed = true
		return model.AttendanceEvent{}, false
	}

	prev := t.lastCount
	t.lastCount = count
	t.observed = true

	if count == prev {
		return model.AttendanceEvent{}, false
	}

	ev := model.AttendanceEvent{
		ID:        t.newID(),
		Timestamp: now,
		Count:     count,
		Kind:      classify(prev, count),
	}
	t.push(ev)
	return ev, true
}

// classify maps a transition to its kind. Equal counts map to KindChange,
// which Observe never reaches because it returns early on equality.
func classify(prev, cur int) model.Kind {
	switch {
	case cur > prev:
		return model.KindAppeared
	case cur < prev:
		return model.KindDisappeared
	default:
		return model.KindChange
	}
}

// push inserts ev at the head and drops the tail past capacity.
func (t *Tracker) push(ev model.AttendanceEvent) {
	if len(t.log) < t.capacity {
		t.log = append(t.log, model.AttendanceEvent{})
	}
	copy(t.log[1:], t.log[:len(t.log)-1])
	t.log[0] = ev
}

// LastCount returns the last observed count and whether any sample has been
// observed. Before the first sample the count reads 0.
func (t *Tracker) LastCount() (int, bool) { return t.lastCount, t.observed }

// Log returns a head-first copy of the event log.
func (t *Tracker) Log() []model.AttendanceEvent {
	out := make([]model.AttendanceEvent, len(t.log))
	copy(out, t.log)
	return out
}

// Len returns the number of logged events.
func (t *Tracker) Len() int { return len(t.log) }

// Capacity returns the log bound.
func (t *Tracker) Capacity() int { return t.capacity }

// Reset clears the log and returns to the unobserved state.
func (t *Tracker) Reset() {
	t.log = t.log[:0]
	t.lastCount = 0
	t.observed = false
}
