package utils

import (
	"fmt"
	"strings"
	"time"
)

var storedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseStoredTime parses the textual timestamp forms drivers hand back
// (SQLite text columns, MySQL without parseTime) into UTC.
func ParseStoredTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range storedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDisplayDate renders t as DD.MM.YYYY.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("02.01.2006")
}
