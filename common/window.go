package common

import "time"

// Default values for the due window.
const (
	DefaultBuffer   = 5 * time.Minute
	DefaultHorizon  = 60 * time.Minute
	DefaultTimezone = "Asia/Kolkata"
)

// Window is an inclusive range of block start times that are eligible for a reminder.
type Window struct {
	Start time.Time
	End   time.Time
}

// DueWindow returns the window [now - buffer, now + horizon], expressed in loc.
func DueWindow(now time.Time, buffer, horizon time.Duration, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	return Window{
		Start: now.Add(-buffer).In(loc),
		End:   now.Add(horizon).In(loc),
	}
}

// UTC returns the same window expressed in UTC, which is how start times are stored.
func (w Window) UTC() Window {
	return Window{Start: w.Start.UTC(), End: w.End.UTC()}
}

// Contains returns true if t falls within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
