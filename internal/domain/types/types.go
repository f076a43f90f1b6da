// Package types contains the views returned by the service to its callers.
package types

import (
	"time"

	"github.com/okian/chartrec/internal/domain/model"
	"github.com/okian/chartrec/internal/domain/rate"
)

// RecordView is a record enriched with catalog details.
type RecordView struct {
	SongID            string  `json:"song_id"`
	DifficultyLevel   string  `json:"difficulty_level"`
	AchievementRate   int     `json:"achievement_rate"`
	Rate              string  `json:"rate"`
	Title             string  `json:"title,omitempty"`
	Artist            string  `json:"artist,omitempty"`
	DifficultyDecimal float64 `json:"difficulty_decimal,omitempty"`
}

// NewRecordView builds a view of r. song and chart may be zero values when
// the catalog no longer knows the chart.
func NewRecordView(r model.Record, song model.Song, chart model.Chart) RecordView {
	v := RecordView{
		SongID:            r.SongID,
		DifficultyLevel:   r.DifficultyLevel,
		AchievementRate:   r.AchievementRate,
		Rate:              rate.Format(r.AchievementRate),
		DifficultyDecimal: chart.DifficultyDecimal,
		Artist:            song.Artist,
	}
	if song.ID != "" {
		v.Title = song.DisplayTitle()
	}
	return v
}

// ChartView is one difficulty of a song.
type ChartView struct {
	DifficultyLevel   string  `json:"difficulty_level"`
	DifficultyDecimal float64 `json:"difficulty_decimal"`
	ChartDesigner     string  `json:"chart_designer,omitempty"`
	Version           string  `json:"version,omitempty"`
}

// SongView is a catalog song, optionally with a search score.
type SongView struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Titles map[string]string `json:"title_localized,omitempty"`
	Artist string            `json:"artist"`
	Charts []ChartView       `json:"charts"`
	Score  float64           `json:"score,omitempty"`
}

// NewSongView builds a view of s.
func NewSongView(s model.Song, score float64) SongView {
	charts := make([]ChartView, len(s.Charts))
	for i, c := range s.Charts {
		charts[i] = ChartView{
			DifficultyLevel:   c.DifficultyLevel,
			DifficultyDecimal: c.DifficultyDecimal,
			ChartDesigner:     c.ChartDesigner,
			Version:           c.Version,
		}
	}
	return SongView{
		ID:     s.ID,
		Title:  s.DisplayTitle(),
		Titles: s.Title,
		Artist: s.Artist,
		Charts: charts,
		Score:  score,
	}
}

// SubmitResult is the outcome of a single record submission.
type SubmitResult struct {
	Outcome string     `json:"outcome"`
	Record  RecordView `json:"record"`
}

// Rejection is an import entry that was skipped.
type Rejection struct {
	Index           int    `json:"index"`
	SongID          string `json:"song_id,omitempty"`
	DifficultyLevel string `json:"difficulty_level,omitempty"`
	Reason          string `json:"reason"`
}

// ImportSummary describes a completed import.
type ImportSummary struct {
	BatchID  string      `json:"batch_id"`
	Shape    string      `json:"shape"`
	Entries  int         `json:"entries"`
	Imported int         `json:"imported"`
	Unplayed int         `json:"unplayed_dropped"`
	Rejected []Rejection `json:"rejected"`
	At       time.Time   `json:"at"`
}

// Stats is a snapshot of the service state.
type Stats struct {
	Started    bool           `json:"started"`
	Records    int            `json:"records"`
	Songs      int            `json:"songs"`
	Charts     int            `json:"charts"`
	BestRate   string         `json:"best_rate,omitempty"`
	LastImport *ImportSummary `json:"last_import,omitempty"`
}
