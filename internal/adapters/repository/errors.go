package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed     = errors.New("store closed")
	ErrNoPath     = errors.New("database path is empty")
	ErrInvalidRow = errors.New("invalid stored record")
)
