// Package merge applies a single chart record to a collection while keeping
// one record per chart and never lowering a stored achievement rate.
package merge

import "github.com/okian/chartrec/internal/domain/model"

// Outcome describes what AddOrUpdate did with the candidate.
type Outcome int

const (
	// OutcomeUnchanged means a record for the chart already held an equal or
	// higher rate; the candidate was discarded.
	OutcomeUnchanged Outcome = iota
	// OutcomeInserted means the chart had no record and the candidate was appended.
	OutcomeInserted
	// OutcomeUpdated means the stored record was replaced in place.
	OutcomeUpdated
)

// String returns the lowercase name used in logs, metrics and API responses.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Changed reports whether the collection differs from the input.
func (o Outcome) Changed() bool { return o != OutcomeUnchanged }

// AddOrUpdate merges candidate into c.
//
// The first record for the same chart is replaced in place when the candidate
// has a strictly higher rate. Ties and lower rates leave c as is. Charts with
// no record get the candidate appended. c is never modified; a changed result
// is a new slice, an unchanged result is c itself.
//
// The candidate must already be validated against the catalog.
func AddOrUpdate(c model.Collection, candidate model.Record) (model.Collection, Outcome) {
	for i, existing := range c {
		if !model.IsSameChart(existing, candidate) {
			continue
		}
		if existing.AchievementRate >= candidate.AchievementRate {
			return c, OutcomeUnchanged
		}
		out := c.Clone()
		out[i] = candidate
		return out, OutcomeUpdated
	}

	out := make(model.Collection, len(c), len(c)+1)
	copy(out, c)
	return append(out, candidate), OutcomeInserted
}

// Collapse gives the same result as applying AddOrUpdate to each record in
// order, starting from an empty collection: every chart keeps the position of
// its first occurrence and the highest rate seen for it. It indexes by chart
// key so large imports stay linear.
func Collapse(records []model.Record) model.Collection {
	out := make(model.Collection, 0, len(records))
	idx := make(map[model.ChartKey]int, len(records))
	for _, r := range records {
		i, ok := idx[r.Key()]
		if !ok {
			idx[r.Key()] = len(out)
			out = append(out, r)
			continue
		}
		if out[i].AchievementRate < r.AchievementRate {
			out[i] = r
		}
	}
	return out
}
