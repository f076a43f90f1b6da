// Package importer reconciles raw capture payloads into a record collection.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"

	"github.com/okian/chartrec/internal/domain/merge"
	"github.com/okian/chartrec/internal/domain/model"
	"github.com/okian/chartrec/internal/domain/rate"
)

// Entry field names inside a record array.
const (
	fieldSongID     = "songId"
	fieldDifficulty = "difficulty"
	fieldRate       = "achievementRate"
)

// Resolver validates chart references. *catalog.Catalog satisfies it.
type Resolver interface {
	Resolve(songID, level string) (model.Song, model.Chart, error)
}

// Rejection describes one entry that could not be resolved.
type Rejection struct {
	Index           int
	SongID          string
	DifficultyLevel string
	Reason          error
}

func (r Rejection) String() string {
	return fmt.Sprintf("entry %d (%s/%s): %v", r.Index, r.SongID, r.DifficultyLevel, r.Reason)
}

// Result is the successful outcome of Parse.
type Result struct {
	Shape    Shape
	Records  model.Collection
	Rejected []Rejection
	// Entries is the number of entries read from the payload.
	Entries int
}

// Parse reads a cloud save or social capture payload and resolves every entry
// against cat. Rejected entries are reported in Result.Rejected; the returned
// records hold at most one record per chart.
func Parse(raw []byte, cat Resolver) (Result, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Result{}, newError(KindMalformedPayload, "empty payload", nil)
	}
	if !gjson.ValidBytes(raw) {
		return Result{}, newError(KindMalformedPayload, "invalid JSON", nil)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Result{}, newError(KindMalformedPayload, "invalid JSON", err)
	}

	shape, err := detectShape(doc)
	if err != nil {
		if errors.Is(err, ErrUnrecognizedShape) {
			return Result{}, newError(KindUnrecognizedShape,
				"expected data.records or data.followees[].records", nil)
		}
		return Result{}, newError(KindUnrecognizedShape, "schema unavailable", err)
	}

	var entries gjson.Result
	switch shape {
	case ShapeCloudSave:
		entries = gjson.GetBytes(raw, "data.records")
	case ShapeSocial:
		followees := gjson.GetBytes(raw, "data.followees")
		if len(followees.Array()) == 0 {
			return Result{}, &Error{Kind: KindNoResolvableEntries, Reason: "capture has no followees"}
		}
		entries = followees.Get("0.records")
		if !entries.IsArray() {
			return Result{}, newError(KindUnrecognizedShape, "expected data.followees[0].records", nil)
		}
	}

	res := Result{Shape: shape}
	var resolved []model.Record
	entries.ForEach(func(_, v gjson.Result) bool {
		idx := res.Entries
		res.Entries++
		rec, rej, ok := resolveEntry(idx, v, cat)
		if !ok {
			res.Rejected = append(res.Rejected, rej)
			return true
		}
		resolved = append(resolved, rec)
		return true
	})

	if len(resolved) == 0 {
		reason := "payload has no entries"
		if res.Entries > 0 {
			reason = fmt.Sprintf("all %d entries were rejected", res.Entries)
		}
		return Result{}, &Error{Kind: KindNoResolvableEntries, Reason: reason, Rejected: res.Rejected}
	}

	res.Records = merge.Collapse(resolved)
	return res, nil
}

func resolveEntry(idx int, v gjson.Result, cat Resolver) (model.Record, Rejection, bool) {
	rej := Rejection{Index: idx}
	if !v.IsObject() {
		rej.Reason = fmt.Errorf("%w: not an object", ErrMalformedEntry)
		return model.Record{}, rej, false
	}

	song := v.Get(fieldSongID)
	diff := v.Get(fieldDifficulty)
	rej.SongID = song.String()
	rej.DifficultyLevel = diff.String()

	if song.Type != gjson.String || song.Str == "" {
		rej.Reason = fmt.Errorf("%w: %s must be a non-empty string", ErrMalformedEntry, fieldSongID)
		return model.Record{}, rej, false
	}
	if diff.Type != gjson.String || diff.Str == "" {
		rej.Reason = fmt.Errorf("%w: %s must be a non-empty string", ErrMalformedEntry, fieldDifficulty)
		return model.Record{}, rej, false
	}

	r := v.Get(fieldRate)
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) || math.IsInf(r.Num, 0) {
		rej.Reason = fmt.Errorf("%w: %s must be an integer", ErrMalformedEntry, fieldRate)
		return model.Record{}, rej, false
	}

	if _, _, err := cat.Resolve(song.Str, diff.Str); err != nil {
		rej.Reason = err
		return model.Record{}, rej, false
	}

	// Range check in float space so huge values cannot overflow int.
	if r.Num < rate.Min || r.Num > rate.Max {
		rej.Reason = fmt.Errorf("%w: %s", rate.ErrOutOfRange, r.Raw)
		return model.Record{}, rej, false
	}

	return model.Record{
		SongID:          song.Str,
		DifficultyLevel: diff.Str,
		AchievementRate: int(r.Num),
	}, Rejection{}, true
}

// DropUnplayed removes records with a zero achievement rate. The input is not
// modified.
func DropUnplayed(c model.Collection) model.Collection {
	out := make(model.Collection, 0, len(c))
	for _, r := range c {
		if r.AchievementRate != 0 {
			out = append(out, r)
		}
	}
	return out
}
