// Package entry holds the state of a manual record entry and derives what can
// be selected and whether the input forms a valid record.
package entry

import (
	"strconv"

	"github.com/okian/chartrec/internal/domain/model"
	"github.com/okian/chartrec/internal/domain/rate"
)

// Catalog is the subset of the song catalog the form needs.
type Catalog interface {
	FindSong(id string) (model.Song, bool)
	Resolve(songID, level string) (model.Song, model.Chart, error)
}

// Form is the raw state of one manual entry.
type Form struct {
	SongID          string
	DifficultyLevel string
	AchievementRate int
}

// View is derived from a Form and a Catalog. It is never stored.
type View struct {
	// Song is set when SongID names a catalog song.
	Song    model.Song
	HasSong bool
	// Charts lists the difficulties selectable for Song.
	Charts []model.Chart

	SongErr       error
	DifficultyErr error
	RateErr       error

	Valid bool
}

// SelectSong switches the song and clears the difficulty, which only makes
// sense for the previous song.
func (f *Form) SelectSong(id string) {
	if f.SongID == id {
		return
	}
	f.SongID = id
	f.DifficultyLevel = ""
}

// SelectDifficulty sets the chart difficulty.
func (f *Form) SelectDifficulty(level string) {
	f.DifficultyLevel = level
}

// SetRateInput coerces free text into a rate inside [rate.Min, rate.Max].
func (f *Form) SetRateInput(s string) {
	f.AchievementRate = rate.Coerce(s)
}

// RateInput renders the rate for an input field.
func (f Form) RateInput() string {
	return strconv.Itoa(f.AchievementRate)
}

// Reset clears the form.
func (f *Form) Reset() {
	*f = Form{}
}

// Derive computes the view of f against cat.
func (f Form) Derive(cat Catalog) View {
	var v View

	switch s, ok := cat.FindSong(f.SongID); {
	case f.SongID == "":
		v.SongErr = ErrSongRequired
	case ok:
		v.Song, v.HasSong = s, true
		v.Charts = s.Charts
	default:
		_, _, v.SongErr = cat.Resolve(f.SongID, f.DifficultyLevel)
	}

	switch {
	case f.DifficultyLevel == "":
		v.DifficultyErr = ErrDifficultyRequired
	case v.HasSong:
		_, _, v.DifficultyErr = cat.Resolve(f.SongID, f.DifficultyLevel)
	}

	v.RateErr = rate.Validate(f.AchievementRate)
	v.Valid = v.SongErr == nil && v.DifficultyErr == nil && v.RateErr == nil
	return v
}

// Candidate returns the record f describes, or the first validation error.
func (f Form) Candidate(cat Catalog) (model.Record, error) {
	v := f.Derive(cat)
	for _, err := range []error{v.SongErr, v.DifficultyErr, v.RateErr} {
		if err != nil {
			return model.Record{}, err
		}
	}
	return model.Record{
		SongID:          f.SongID,
		DifficultyLevel: f.DifficultyLevel,
		AchievementRate: f.AchievementRate,
	}, nil
}
