package gatechain

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidClockTime is returned when a clock time string cannot be parsed
	ErrInvalidClockTime = errors.New("invalid clock time, expected HH:MM")

	// ErrStoreFailed is returned when window store operations fail
	ErrStoreFailed = errors.New("window store operation failed")

	// ErrSinkClosed is returned when writing to a log sink that has been closed
	ErrSinkClosed = errors.New("log sink is closed")
)
