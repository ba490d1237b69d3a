package models

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrMalformed       = errors.New("malformed table")
	ErrMissingColumn   = errors.New("missing column")
	ErrInvalidLookBack = errors.New("invalid look-back")
	ErrSessionNotFound = errors.New("session not found")
)

// InsufficientDataError is returned when a series is too short to form
// a single window.
type InsufficientDataError struct {
	N        int
	LookBack int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d points cannot form a window of %d", e.N, e.LookBack)
}

// TrainingError reports a rejected or failed training run.
type TrainingError struct {
	Reason string
	Err    error
}

func (e *TrainingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("training: %s: %v", e.Reason, e.Err)
	}
	return "training: " + e.Reason
}

func (e *TrainingError) Unwrap() error { return e.Err }

// LoadError reports a table that could not be read. Err is one of the
// sentinels above, possibly wrapped.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
