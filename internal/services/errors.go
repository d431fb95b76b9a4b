package services

import "errors"

// Service errors
var (
	// Input errors
	ErrEmptyInput   = errors.New("input is empty")
	ErrNotText      = errors.New("input is not valid UTF-8 text")
	ErrInvalidInput = errors.New("invalid input")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoReportsFound    = errors.New("no reports found")

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
