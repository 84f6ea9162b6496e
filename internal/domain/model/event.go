package model

import (
	"fmt"
	"time"
)

// Kind classifies an attendance transition.
type Kind int

// Attendance event kinds. KindChange cannot be produced while transitions
// are classified by strict greater/less comparison, since equal counts never
// emit an event. It stays part of the type for consumers that switch on all
// three cases.
const (
	KindAppeared Kind = iota
	KindDisappeared
	KindChange
)

var kindNames = [...]string{ //nolint:gochecknoglobals // lookup table
	KindAppeared:    "appeared",
	KindDisappeared: "disappeared",
	KindChange:      "change",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown attendance kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown attendance kind %q", string(b))
}

// AttendanceEvent records one count transition. Immutable once created.
type AttendanceEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Kind      Kind      `json:"kind"`
}
