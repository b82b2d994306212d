// Package duration parses the human-readable windows used in config,
// such as "1w", "30d" or "6mo".
package duration

import (
	"fmt"
	"strings"
	"time"
)

// Never is the window that suppresses a resend forever.
const Never = "never"

// ParseDuration parses strings like "90m", "12h", "1w", "30d", "6mo".
func ParseDuration(s string) (time.Duration, error) {
	var n int
	var unit string
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g., 1w, 30d, 6mo)", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative duration: %s", s)
	}

	day := 24 * time.Hour
	switch unit {
	case "m", "min", "mins":
		return time.Duration(n) * time.Minute, nil
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(n) * time.Hour, nil
	case "d", "day", "days":
		return time.Duration(n) * day, nil
	case "w", "wk", "wks", "week", "weeks":
		return time.Duration(n) * 7 * day, nil
	case "mo", "month", "months":
		return time.Duration(n) * 30 * day, nil
	case "y", "yr", "yrs", "year", "years":
		return time.Duration(n) * 365 * day, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}

// Cutoff returns the instant the window s reaches back to from now.
// The window "never" yields the zero time, so nothing falls outside it.
func Cutoff(s string, now time.Time) (time.Time, error) {
	if strings.EqualFold(strings.TrimSpace(s), Never) {
		return time.Time{}, nil
	}
	d, err := ParseDuration(s)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-d), nil
}
