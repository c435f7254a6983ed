package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/habitlit/internal/constants"
)

// ParseDate parses an ISO date string (YYYY-MM-DD) as midnight UTC.
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(constants.DateFormat, dateStr)
}

// FormatDate formats t as an ISO date string (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Today returns the current local date as midnight UTC, so that date
// arithmetic never crosses a DST boundary.
func Today() time.Time {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar date in t's location, expressed in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange returns every date from start to end, inclusive of both ends.
// It returns an empty slice when end is before start.
func DateRange(start, end time.Time) []string {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return []string{}
	}
	days := int(end.Sub(start).Hours()/24) + 1
	out := make([]string, 0, days)
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		out = append(out, FormatDate(cur))
	}
	return out
}

// ParseRange parses both bounds and returns the inclusive list of dates between them.
func ParseRange(startStr, endStr string) ([]string, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("start date %q: %w", startStr, err)
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return nil, fmt.Errorf("end date %q: %w", endStr, err)
	}
	return DateRange(start, end), nil
}

// WeekOf returns the Monday-start week containing day.
func WeekOf(day time.Time) []string {
	day = DateOf(day)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	monday := day.AddDate(0, 0, -offset)
	return DateRange(monday, monday.AddDate(0, 0, constants.WeekDays-1))
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
