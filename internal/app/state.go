package service

import "fmt"

// State is the loop driver lifecycle state.
type State int

// Loop driver states.
const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateRunning
	StateStopped
)

var stateNames = [...]string{
	StateIdle:    "idle",
	StateLoading: "loading",
	StateReady:   "ready",
	StateRunning: "running",
	StateStopped: "stopped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Loaded reports whether the estimator is available in this state.
func (s State) Loaded() bool {
	return s == StateReady || s == StateRunning || s == StateStopped
}
