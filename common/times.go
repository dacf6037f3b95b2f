package common

import (
	"fmt"
	"strconv"
	"time"
)

// displayLayout mirrors the en-IN locale format used in reminder emails, e.g. "1/1/2025, 3:30:00 pm".
const displayLayout = "2/1/2006, 3:04:05 pm"

// FormatTimestamp formats a timestamp as the number of milliseconds since the epoch.
func FormatTimestamp(timestamp time.Time) string {
	return strconv.FormatInt(timestamp.UnixMilli(), 10)
}

// ParseTimestamp parses a timestamp that is either a number of milliseconds since the epoch or an RFC 3339
// date. The returned time is always in UTC.
func ParseTimestamp(timestamp string) (time.Time, error) {
	if millis, err := strconv.ParseInt(timestamp, 10, 64); err == nil {
		return time.UnixMilli(millis).UTC(), nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %s", timestamp)
	}

	return parsed.UTC(), nil
}

// FormatLocal renders a timestamp in the given location for display to a user.
func FormatLocal(timestamp time.Time, loc *time.Location) string {
	return timestamp.In(loc).Format(displayLayout)
}

// FormatISOLocal renders a timestamp in the given location without a zone designator. This is only used
// for log output.
func FormatISOLocal(timestamp time.Time, loc *time.Location) string {
	return timestamp.In(loc).Format("2006-01-02T15:04:05")
}
