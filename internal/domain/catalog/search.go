package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"

	"github.com/okian/chartrec/internal/domain/model"
)

// Default search tuning. Title matches weigh more than artist matches.
const (
	DefaultTitleWeight  = 1.5
	DefaultArtistWeight = 1.0
	// DefaultThreshold follows the usual fuzzy-finder convention: 0 accepts
	// only exact matches, 1 accepts anything.
	DefaultThreshold = 0.6
)

// SearchOptions tunes Search.
type SearchOptions struct {
	TitleWeight  float64
	ArtistWeight float64
	Threshold    float64
	// Limit caps the number of matches; 0 means no cap.
	Limit int
}

// DefaultSearchOptions returns the default tuning.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		TitleWeight:  DefaultTitleWeight,
		ArtistWeight: DefaultArtistWeight,
		Threshold:    DefaultThreshold,
	}
}

// Match is a song with its similarity to the query in [0, 1].
type Match struct {
	Song  model.Song
	Score float64
}

// Search ranks songs by weighted similarity of the query to their default
// title and artist. An empty query returns every song in catalog order.
// Equal scores keep catalog order, so results are deterministic.
func (c *Catalog) Search(query string, opts SearchOptions) []Match {
	q := normalize(query)
	if q == "" {
		out := make([]Match, 0, len(c.songs))
		for _, s := range c.songs {
			out = append(out, Match{Song: s, Score: 1})
		}
		return limit(out, opts.Limit)
	}

	tw, aw := opts.TitleWeight, opts.ArtistWeight
	if tw < 0 {
		tw = 0
	}
	if aw < 0 {
		aw = 0
	}
	if tw+aw == 0 {
		tw, aw = DefaultTitleWeight, DefaultArtistWeight
	}

	var out []Match
	for _, s := range c.songs {
		score := (tw*similarity(q, normalize(s.DisplayTitle())) + aw*similarity(q, normalize(s.Artist))) / (tw + aw)
		if 1-score <= opts.Threshold {
			out = append(out, Match{Song: s, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return limit(out, opts.Limit)
}

func limit(m []Match, n int) []Match {
	if n > 0 && len(m) > n {
		return m[:n]
	}
	return m
}

// similarity scores how well q matches field. A substring hit is a perfect
// match; otherwise the best Levenshtein similarity against the whole field or
// any run of words as long as the query is used.
func similarity(q, field string) float64 {
	if field == "" {
		return 0
	}
	if strings.Contains(field, q) {
		return 1
	}

	best := levenshtein.Similarity(q, field, nil)
	words := strings.Fields(field)
	n := len(strings.Fields(q))
	for i := 0; i+n <= len(words); i++ {
		if s := levenshtein.Similarity(q, strings.Join(words[i:i+n], " "), nil); s > best {
			best = s
		}
	}
	return best
}

// normalize lowercases s and collapses punctuation and whitespace runs into
// single spaces.
func normalize(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
