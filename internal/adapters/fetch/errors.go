package fetch

import "errors"

// Sentinel kinds for fetch errors.
var (
	ErrFetch      = errors.New("fetch failed")
	ErrStatus     = errors.New("unexpected status")
	ErrTooLarge   = errors.New("response too large")
	ErrSuperseded = errors.New("fetch superseded by a newer request")
)
