// Package model contains domain models passed between layers.
package model

// DefaultLocale is the title key every catalog song must provide.
const DefaultLocale = "default"

// Song is an immutable catalog entry with its ordered charts.
type Song struct {
	ID     string            `json:"id"`
	Title  map[string]string `json:"title_localized"`
	Artist string            `json:"artist"`
	Charts []Chart           `json:"charts"`
}

// Chart is one difficulty variant of a song.
type Chart struct {
	DifficultyLevel   string  `json:"difficultyLevel"`
	DifficultyDecimal float64 `json:"difficultyDecimal"`
	ChartDesigner     string  `json:"chartDesigner"`
	Version           string  `json:"version,omitempty"`
}

// DisplayTitle returns the default-locale title, falling back to the ID.
func (s Song) DisplayTitle() string {
	if t := s.Title[DefaultLocale]; t != "" {
		return t
	}
	return s.ID
}

// Chart looks up a chart of the song by its difficulty label.
// Labels are compared exactly.
func (s Song) Chart(level string) (Chart, bool) {
	for _, c := range s.Charts {
		if c.DifficultyLevel == level {
			return c, true
		}
	}
	return Chart{}, false
}
