// Package timeparse parses the CLI's -start-ts flag values, grounded on
// original_source/clipcrab-io/src/time.rs.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse accepts "SS", "MM:SS", or "HH:MM:SS" (trailing tokens beyond these
// three are tolerated and ignored) and returns microseconds.
func Parse(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var secs int64
	switch {
	case len(parts) >= 3:
		hh, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("timeparse: bad hours in %q: %w", s, err)
		}
		mm, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("timeparse: bad minutes in %q: %w", s, err)
		}
		ss, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("timeparse: bad seconds in %q: %w", s, err)
		}
		secs = hh*3600 + mm*60 + ss
	case len(parts) == 2:
		mm, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("timeparse: bad minutes in %q: %w", s, err)
		}
		ss, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("timeparse: bad seconds in %q: %w", s, err)
		}
		secs = mm*60 + ss
	default:
		ss, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("timeparse: bad seconds in %q: %w", s, err)
		}
		secs = ss
	}
	return secs * 1_000_000, nil
}
