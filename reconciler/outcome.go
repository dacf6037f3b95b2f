package reconciler

import (
	"github.com/cyverse-de/quiet-hours/common"
)

// SkipReason explains why a block's reminder pipeline stopped before the reminder was sent.
type SkipReason string

// Reasons for skipping a block. An empty reason means that the reminder was sent.
const (
	SkipNone            SkipReason = ""
	SkipAlreadyNotified SkipReason = "already_notified"
	SkipLedgerRead      SkipReason = "ledger_read_failed"
	SkipDirectory       SkipReason = "directory_lookup_failed"
	SkipNoEmail         SkipReason = "no_email_address"
	SkipInvalidEmail    SkipReason = "invalid_email_address"
	SkipDelivery        SkipReason = "delivery_failed"
)

// Outcome is the result of running the reminder pipeline for a single block. A block either completes,
// meaning that its reminder was sent, or is skipped for a reason. The ledger write and the flag update
// happen after the reminder is sent, so their failures are recorded without changing the outcome.
type Outcome struct {
	BlockID        string
	OwnerID        string
	Skip           SkipReason
	Err            error
	LedgerWriteErr error
	FlagUpdateErr  error
}

// Completed returns true if the reminder for the block was sent.
func (o Outcome) Completed() bool {
	return o.Skip == SkipNone
}

// Report summarizes a single reconciliation pass.
type Report struct {
	Window   common.Window
	Count    int
	Outcomes []Outcome
}

// Sent returns the number of reminders that were sent during the pass.
func (r *Report) Sent() int {
	sent := 0
	for _, o := range r.Outcomes {
		if o.Completed() {
			sent++
		}
	}
	return sent
}

// Skipped returns the number of blocks whose reminder wasn't sent during the pass.
func (r *Report) Skipped() int {
	return len(r.Outcomes) - r.Sent()
}
