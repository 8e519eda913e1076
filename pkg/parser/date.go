package parser

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// nativeLayouts are tried after the descriptor's date formats.
var nativeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
}

var clockLayouts = []string{"15:04:05", "15:04", "15時04分05秒", "15時04分"}

// parseDate reads a date cell. A trailing clock ("2024/05/01 09:30") is kept
// and reported through hasClock.
func parseDate(value string, layouts []string) (at time.Time, hasClock bool, err error) {
	value = strings.TrimSpace(norm.NFKC.String(value))
	if value == "" {
		return time.Time{}, false, fmt.Errorf("empty date")
	}

	datePart, clockPart, _ := strings.Cut(value, " ")
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, datePart, time.UTC); err == nil {
			if h, m, s, ok := parseClock(clockPart); ok {
				return withClock(t, h, m, s), true, nil
			}
			return t, false, nil
		}
	}

	for _, layout := range nativeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", value)
}

func parseClock(value string) (h, m, s int, ok bool) {
	value = strings.TrimSpace(norm.NFKC.String(value))
	if value == "" {
		return 0, 0, 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour(), t.Minute(), t.Second(), true
		}
	}
	return 0, 0, 0, false
}

func withClock(at time.Time, h, m, s int) time.Time {
	y, mo, d := at.Date()
	return time.Date(y, mo, d, h, m, s, 0, time.UTC)
}
