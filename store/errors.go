package store

import "errors"

var (
	// ErrWriteFailed is returned when an entry could not be written.
	ErrWriteFailed = errors.New("store write failed")
	// ErrStoreFull is returned when a new key would exceed Options.MaxEntries.
	ErrStoreFull = errors.New("store full")
)
