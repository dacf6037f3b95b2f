package model

import "time"

// QuietHourBlock represents a single quiet hour block scheduled by a user. The start and end times are
// normalized to UTC before they're stored.
type QuietHourBlock struct {
	ID        string
	OwnerID   string
	StartTime time.Time
	EndTime   time.Time
	Notified  bool
}

// User represents the contact information that we need in order to remind the owner of a block.
type User struct {
	ID    string
	Email string
}
