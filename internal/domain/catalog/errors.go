package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrUnknownSong  = errors.New("unknown song")
	ErrUnknownChart = errors.New("unknown chart")
	ErrInvalid      = errors.New("invalid catalog")
)
