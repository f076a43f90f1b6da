package entry

import "errors"

var (
	ErrSongRequired       = errors.New("song is required")
	ErrDifficultyRequired = errors.New("difficulty is required")
)
