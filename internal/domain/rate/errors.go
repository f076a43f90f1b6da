package rate

import "errors"

// Sentinel kinds for rate errors.
var (
	ErrOutOfRange = errors.New("achievement rate out of range")
	ErrSyntax     = errors.New("invalid achievement rate")
	ErrEmpty      = errors.New("empty achievement rate")
)
