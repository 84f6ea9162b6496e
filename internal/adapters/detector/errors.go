package detector

import (
	"errors"
	"fmt"
)

// ErrDetection is the sentinel matched by every DetectionError.
var ErrDetection = errors.New("detection failed")

// DetectionError reports a failed estimator call for one frame.
type DetectionError struct {
	FrameSeq uint64
	Err      error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detection failed for frame %d: %v", e.FrameSeq, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// Is reports ErrDetection as a match.
func (e *DetectionError) Is(target error) bool { return target == ErrDetection }
