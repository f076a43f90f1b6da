package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrNotFound         = errors.New("not found")
	ErrPersist          = errors.New("persist records")
	ErrPayloadTooLarge  = errors.New("import payload too large")
	ErrFetchUnavailable = errors.New("remote fetch not configured")
)
