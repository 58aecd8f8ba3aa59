package util

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// localLayouts are the wall-clock formats seen in CWA open-data payloads.
// None of them carries a zone; the caller's location is attached.
var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ErrEmptyTimestamp is returned for blank input.
var ErrEmptyTimestamp = errors.New("empty timestamp")

// NowIn returns the current instant from now() expressed in loc.
func NowIn(now func() time.Time, loc *time.Location) time.Time {
	return now().In(loc)
}

// ParseLocal parses an upstream timestamp. Strings with an explicit offset
// keep it; naive strings are interpreted as wall-clock time in loc.
func ParseLocal(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyTimestamp
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.In(loc), nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
