package service

import "errors"

// Sentinel kinds for loop driver errors.
var (
	ErrModelLoad         = errors.New("model load failed")
	ErrAcquisition       = errors.New("camera acquisition failed")
	ErrNotReady          = errors.New("estimator not loaded")
	ErrInvalidTransition = errors.New("invalid state transition")
)
