// Package timeexpr parses the time expressions accepted by range flags such
// as --since and --until: timestamps, dates and phrases like "3d ago" or
// "last monday". Days start at midnight UTC, the zone health data is
// recorded in.
package timeexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches "2h ago", "30m ago", "1d ago", "2w ago", "1mo ago".
var agoRegex = regexp.MustCompile(`^(\d+)\s*(mo|w|d|h|m)\s+ago$`)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// Parse resolves expr relative to now. Accepted forms:
//
//	2024-03-01T09:30:00Z   RFC 3339, fractional seconds allowed
//	2024-03-01             midnight UTC
//	now, today, yesterday
//	monday, last monday    the most recent such day; "last" skips today
//	3d ago                 also mo, w, h and m
func Parse(expr string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}

	now = now.UTC()
	input := strings.ToLower(raw)
	switch input {
	case "now":
		return now, nil
	case "today":
		return midnight(now), nil
	case "yesterday":
		return midnight(now).AddDate(0, 0, -1), nil
	}

	if t, ok := lastWeekday(input, now); ok {
		return t, nil
	}

	if m := agoRegex.FindStringSubmatch(input); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return time.Time{}, fmt.Errorf("invalid time expression %q", raw)
		}
		return ago(now, n, m[2]), nil
	}

	return time.Time{}, fmt.Errorf("invalid time expression %q", raw)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func lastWeekday(input string, now time.Time) (time.Time, bool) {
	strict := false
	if rest, ok := strings.CutPrefix(input, "last "); ok {
		strict = true
		input = strings.TrimSpace(rest)
	}
	day, ok := weekdays[input]
	if !ok {
		return time.Time{}, false
	}
	today := midnight(now)
	back := (int(today.Weekday()) - int(day) + 7) % 7
	if strict && back == 0 {
		back = 7
	}
	return today.AddDate(0, 0, -back), true
}

func ago(now time.Time, n int, unit string) time.Time {
	switch unit {
	case "mo":
		return now.AddDate(0, -n, 0)
	case "w":
		return now.AddDate(0, 0, -7*n)
	case "d":
		return now.AddDate(0, 0, -n)
	case "h":
		return now.Add(-time.Duration(n) * time.Hour)
	default:
		return now.Add(-time.Duration(n) * time.Minute)
	}
}
