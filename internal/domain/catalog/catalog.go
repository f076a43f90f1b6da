// Package catalog holds the read-only song and chart catalog used to resolve
// chart records.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/chartrec/internal/domain/model"
)

//go:embed data/songs.json
var defaultSongs []byte

// Catalog is an immutable, ordered set of songs. It is safe for concurrent
// reads.
type Catalog struct {
	songs []model.Song
	byID  map[string]int
}

// New builds a catalog from songs, keeping their order. Song IDs must be
// unique and non-empty, and chart labels unique within a song.
func New(songs ...model.Song) (*Catalog, error) {
	c := &Catalog{
		songs: make([]model.Song, 0, len(songs)),
		byID:  make(map[string]int, len(songs)),
	}
	for i, s := range songs {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: song #%d has no id", ErrInvalid, i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate song id %q", ErrInvalid, s.ID)
		}
		levels := make(map[string]struct{}, len(s.Charts))
		for _, ch := range s.Charts {
			if ch.DifficultyLevel == "" {
				return nil, fmt.Errorf("%w: song %q has a chart without difficulty", ErrInvalid, s.ID)
			}
			if _, dup := levels[ch.DifficultyLevel]; dup {
				return nil, fmt.Errorf("%w: song %q repeats difficulty %q", ErrInvalid, s.ID, ch.DifficultyLevel)
			}
			levels[ch.DifficultyLevel] = struct{}{}
		}
		c.byID[s.ID] = len(c.songs)
		c.songs = append(c.songs, s)
	}
	return c, nil
}

// Load decodes a JSON array of songs.
func Load(r io.Reader) (*Catalog, error) {
	var songs []model.Song
	dec := json.NewDecoder(r)
	if err := dec.Decode(&songs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return New(songs...)
}

// LoadFile reads a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultSongs))
}

// Songs returns the songs in catalog order. The slice must not be modified.
func (c *Catalog) Songs() []model.Song { return c.songs }

// Len returns the number of songs.
func (c *Catalog) Len() int { return len(c.songs) }

// FindSong looks up a song by its exact identifier.
func (c *Catalog) FindSong(id string) (model.Song, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Song{}, false
	}
	return c.songs[i], true
}

// Chart looks up a chart by song identifier and difficulty label.
func (c *Catalog) Chart(songID, level string) (model.Chart, bool) {
	s, ok := c.FindSong(songID)
	if !ok {
		return model.Chart{}, false
	}
	return s.Chart(level)
}

// Resolve returns the song and chart a record points at, or ErrUnknownSong /
// ErrUnknownChart.
func (c *Catalog) Resolve(songID, level string) (model.Song, model.Chart, error) {
	s, ok := c.FindSong(songID)
	if !ok {
		return model.Song{}, model.Chart{}, fmt.Errorf("%w: %q", ErrUnknownSong, songID)
	}
	ch, ok := s.Chart(level)
	if !ok {
		return model.Song{}, model.Chart{}, fmt.Errorf("%w: %q has no difficulty %q", ErrUnknownChart, songID, level)
	}
	return s, ch, nil
}
