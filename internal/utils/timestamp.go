package utils

import (
	"fmt"
	"strings"
	"time"
)

// Layouts carrying an explicit zone. "Z07:00" accepts both "Z" and "+hh:mm";
// fractional seconds are accepted after the seconds field without being
// spelled out in the layout.
var offsetLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02 15:04:05Z07",
}

// Layouts without a zone; their fields are read as UTC wall clock.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp and returns it in loc.
// A timestamp with "Z" or a numeric offset is read at that offset. One
// without an offset is read as literal UTC fields. A nil loc means time.Local.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// ParseInputTime parses a date or timestamp typed by staff. Unlike
// ParseTimestamp, a value without an offset is wall-clock time in loc, so
// "2024-05-14" stays the 14th in every zone. A nil loc means time.Local.
func ParseInputTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// ParseTimestampOrNow is ParseTimestamp with the failure replaced by now.
func ParseTimestampOrNow(value string, now time.Time) time.Time {
	t, err := ParseTimestamp(value, now.Location())
	if err != nil {
		return now
	}
	return t
}
