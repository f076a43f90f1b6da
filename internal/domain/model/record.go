package model

// ChartKey identifies a chart across the catalog. Two records refer to the
// same chart exactly when their keys are equal.
type ChartKey struct {
	SongID          string
	DifficultyLevel string
}

// Record is a user's best achievement rate on one chart.
type Record struct {
	SongID          string `json:"songId"`
	DifficultyLevel string `json:"difficultyLevel"`
	AchievementRate int    `json:"achievementRate"`
}

// Key returns the chart identity of the record.
func (r Record) Key() ChartKey {
	return ChartKey{SongID: r.SongID, DifficultyLevel: r.DifficultyLevel}
}

// IsSameChart reports whether a and b refer to the same chart. Identifiers
// are compared byte for byte; no case folding or trimming is applied.
func IsSameChart(a, b Record) bool {
	return a.Key() == b.Key()
}

// Collection is an ordered list of records holding at most one record per
// chart. Order is insertion order; updates keep their position.
type Collection []Record

// Index returns the position of the record for key, or -1.
func (c Collection) Index(key ChartKey) int {
	for i, r := range c {
		if r.Key() == key {
			return i
		}
	}
	return -1
}

// Find returns the record for key if present.
func (c Collection) Find(key ChartKey) (Record, bool) {
	if i := c.Index(key); i >= 0 {
		return c[i], true
	}
	return Record{}, false
}

// Clone returns an independent copy of c. A nil collection clones to an
// empty, non-nil one so that it encodes as [] rather than null.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Without returns a copy of c with the record for key removed, and whether
// anything was removed.
func (c Collection) Without(key ChartKey) (Collection, bool) {
	i := c.Index(key)
	if i < 0 {
		return c, false
	}
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:i]...)
	out = append(out, c[i+1:]...)
	return out, true
}
