package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// ParseClockTime converts a clock-style duration ("H:MM:SS" or "MM:SS") to
// total seconds. Anything malformed (empty input, a non-integer component,
// the wrong number of components) yields NaN, never an error; the legacy
// headers are full of blank and garbled time values.
func ParseClockTime(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}

	parts := strings.Split(s, ":")
	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return math.NaN()
		}
		vals[i] = v
	}

	switch len(vals) {
	case 3:
		return float64(vals[0]*3600 + vals[1]*60 + vals[2])
	case 2:
		return float64(vals[0]*60 + vals[1])
	}
	return math.NaN()
}
