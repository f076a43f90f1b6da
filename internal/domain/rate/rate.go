// Package rate handles the fixed-point achievement rate used by chart records.
//
// A rate is an integer with four implied decimal digits of a percentage:
// 1010000 is 101.0000%, 950000 is 95.0000%.
package rate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bounds of a valid achievement rate.
const (
	Min = 0
	Max = 1010000

	// scale converts between the integer form and a percentage.
	scale = 10000
)

// Validate reports whether r is inside [Min, Max].
func Validate(r int) error {
	if r < Min || r > Max {
		return fmt.Errorf("%w: %d", ErrOutOfRange, r)
	}
	return nil
}

// Clamp forces r into [Min, Max].
func Clamp(r int) int {
	switch {
	case r < Min:
		return Min
	case r > Max:
		return Max
	default:
		return r
	}
}

// Coerce turns free-form user input into a rate. Anything that does not parse
// as a number becomes 0; numbers are truncated toward zero and clamped.
func Coerce(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return Min
	}
	if math.IsInf(f, 1) {
		return Max
	}
	if math.IsInf(f, -1) {
		return Min
	}
	return Clamp(int(math.Trunc(math.Max(math.Min(f, Max+1), Min-1))))
}

// Format renders r as a percentage with four decimals, e.g. "101.0000%".
func Format(r int) string {
	sign := ""
	if r < 0 {
		sign = "-"
		r = -r
	}
	return fmt.Sprintf("%s%d.%04d%%", sign, r/scale, r%scale)
}

// Parse accepts either the raw integer form ("1005000") or a percentage
// ("100.5%", "100.5000%"). The result is validated against [Min, Max].
func Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	if pct, ok := strings.CutSuffix(s, "%"); ok {
		r, err := parsePercent(strings.TrimSpace(pct))
		if err != nil {
			return 0, err
		}
		return r, Validate(r)
	}

	r, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return r, Validate(r)
}

// parsePercent parses "100.5" into 1005000 without going through float64 so
// that "99.9999" stays exact.
func parsePercent(s string) (int, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || len(frac) > 4 {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s+"%")
	}
	w, err := strconv.Atoi(whole)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s+"%")
	}
	f := 0
	if frac != "" {
		f, err = strconv.Atoi(frac + strings.Repeat("0", 4-len(frac)))
		if err != nil || f < 0 {
			return 0, fmt.Errorf("%w: %q", ErrSyntax, s+"%")
		}
	}
	return w*scale + f, nil
}
