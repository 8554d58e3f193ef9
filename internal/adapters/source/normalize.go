package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateOutputLayout is how normalized dates are written back out.
const dateOutputLayout = "2006-01-02"

// NormalizeGameID trims the game id.
func NormalizeGameID(s string) string { return strings.TrimSpace(s) }

// NormalizeSite lower-cases and trims the site indicator.
func NormalizeSite(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ParseWin maps the textual win encodings Y, W, 1 and TRUE (any case) to true.
func ParseWin(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "W", "1", "TRUE":
		return true
	default:
		return false
	}
}

// ParseDate parses a calendar date in any accepted layout, dropping the time of day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// FormatDate renders a normalized date.
func FormatDate(t time.Time) string { return t.Format(dateOutputLayout) }

// ParseStat parses a counting stat; empty or unreadable cells are NaN.
func ParseStat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// parseCount parses a pitching count; empty or unreadable cells are zero.
func parseCount(s string) float64 {
	v := ParseStat(s)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// parseInt accepts "1" and "1.0"; anything else is zero.
func parseInt(s string) int {
	return int(parseCount(s))
}
