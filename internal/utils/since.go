package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the accepted absolute date format.
const DateLayout = "2006-01-02"

var relativeRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

var units = map[string]time.Duration{
	"d": 24 * time.Hour,
	"h": time.Hour,
	"m": time.Minute,
	"s": time.Second,
}

// ParseSince turns "7d", "24h", "30m", "45s" (relative to now) or a
// YYYY-MM-DD date into a point in time.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time string cannot be empty")
	}

	if m := relativeRegex.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return now.Add(-time.Duration(n) * units[m[2]]), nil
	}

	if t, err := time.ParseInLocation(DateLayout, s, now.Location()); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %q. Use '7d'/'24h' or 'YYYY-MM-DD'", s)
}
