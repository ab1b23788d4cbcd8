package handler

import (
	"math"
	"strconv"
	"strings"
	"time"
)

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// validThreshold reports whether t is a usable similarity threshold.
func validThreshold(t float64) bool {
	return !math.IsNaN(t) && t >= 0 && t <= 1
}

// refDate parses "YYYY-MM-DD" in loc; empty means now.
func refDate(s string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if s == "" {
		return now().In(loc), nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}
