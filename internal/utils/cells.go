package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d.\-]`)

// ParseNumber parses "5", "5 mins", "1,200.5", " 7.5 " and the like.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer("\u00A0", "", "\u202F", "", " ", "", "\t", "", ",", "").Replace(s)
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

var rxClock = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?(?::\d{2})?\s*([ap]\.?m\.?)?$`)
var rxCompactClock = regexp.MustCompile(`^(\d{2})(\d{2})$`)

// ParseClock normalises a spreadsheet time cell ("9:00", "09.30", "0930",
// "9am", "2:15 PM", "14:00:00") to "HH:MM".
func ParseClock(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	var h, m int
	if mm := rxCompactClock.FindStringSubmatch(s); mm != nil {
		h, _ = strconv.Atoi(mm[1])
		m, _ = strconv.Atoi(mm[2])
	} else if mm := rxClock.FindStringSubmatch(s); mm != nil {
		h, _ = strconv.Atoi(mm[1])
		if mm[2] != "" {
			m, _ = strconv.Atoi(mm[2])
		}
		switch strings.Trim(mm[3], ".") {
		case "pm", "p.m":
			if h < 12 {
				h += 12
			}
		case "am", "a.m":
			if h == 12 {
				h = 0
			}
		}
	} else {
		return "", false
	}
	if h > 23 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}
