// Package reconciler sends reminders for quiet hour blocks that are about to start and haven't been
// reminded about yet.
//
// A pass lists the due blocks and then handles them one at a time: it checks the ledger for an earlier
// reminder, looks up the owner's email address, sends the reminder, records it in the ledger and finally
// flags the block as notified. A failure at any step only affects the block being processed. The ledger
// insert and the flag update are not atomic; if the flag update fails the ledger record still prevents a
// second reminder on the next pass.
package reconciler

import (
	"context"
	"time"

	"github.com/cyverse-de/quiet-hours/common"
	"github.com/cyverse-de/quiet-hours/ledger"
	"github.com/cyverse-de/quiet-hours/logging"
	"github.com/cyverse-de/quiet-hours/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logging.Log.WithFields(logrus.Fields{"package": "reconciler"})

// BlockRepository describes the quiet hour block operations used by the job.
type BlockRepository interface {
	ListDueBlocks(ctx context.Context, start, end time.Time) ([]model.QuietHourBlock, error)
	MarkBlockNotified(ctx context.Context, id string) error
	DeleteEndedBlocks(ctx context.Context, now time.Time) (int64, error)
}

// Ledger describes the notification ledger operations used by the job.
type Ledger interface {
	FindOne(ctx context.Context, blockID, ownerID string) (*model.NotificationRecord, error)
	InsertOne(ctx context.Context, record *model.NotificationRecord) error
}

// UserDirectory resolves block owners to their contact information.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}

// Mailer sends a reminder for a block running from start to end.
type Mailer interface {
	SendReminder(ctx context.Context, to string, start, end time.Time) error
}

// Settings determine the due window.
type Settings struct {
	Buffer   time.Duration
	Horizon  time.Duration
	Location *time.Location
}

// Job is the reconciliation job.
type Job struct {
	blocks    BlockRepository
	ledger    Ledger
	directory UserDirectory
	mailer    Mailer
	settings  Settings
	now       func() time.Time
}

// New creates a new job. The ledger may be nil, in which case ledger operations are skipped and only the
// notified flag prevents duplicate reminders.
func New(blocks BlockRepository, ledger Ledger, directory UserDirectory, mailer Mailer, settings Settings) *Job {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if ledger == nil {
		log.Warn("no notification ledger is configured; ledger operations will be skipped")
	}
	return &Job{
		blocks:    blocks,
		ledger:    ledger,
		directory: directory,
		mailer:    mailer,
		settings:  settings,
		now:       time.Now,
	}
}

// Run performs a single reconciliation pass. An error is returned only if the due blocks can't be listed;
// per-block failures are reported in the outcomes.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	now := j.now()
	window := common.DueWindow(now, j.settings.Buffer, j.settings.Horizon, j.settings.Location)

	log.WithFields(logrus.Fields{
		"now":          now.UTC().Format(time.RFC3339),
		"window_start": common.FormatISOLocal(window.Start, j.settings.Location),
		"window_end":   common.FormatISOLocal(window.End, j.settings.Location),
	}).Debug("computed the due window")

	stored := window.UTC()
	blocks, err := j.blocks.ListDueBlocks(ctx, stored.Start, stored.End)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list the due quiet hour blocks")
	}
	log.Infof("found %d eligible quiet hour blocks", len(blocks))

	report := &Report{
		Window:   window,
		Count:    len(blocks),
		Outcomes: make([]Outcome, 0, len(blocks)),
	}
	for i := range blocks {
		outcome := j.process(ctx, &blocks[i])
		logOutcome(&outcome)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, nil
}

// process runs the reminder pipeline for a single block.
func (j *Job) process(ctx context.Context, block *model.QuietHourBlock) Outcome {
	outcome := Outcome{BlockID: block.ID, OwnerID: block.OwnerID}
	skip := func(reason SkipReason, err error) Outcome {
		outcome.Skip = reason
		outcome.Err = err
		return outcome
	}

	// Check the ledger for an earlier reminder.
	if j.ledger != nil {
		record, err := j.ledger.FindOne(ctx, block.ID, block.OwnerID)
		if err != nil {
			return skip(SkipLedgerRead, err)
		}
		if record != nil {
			return skip(SkipAlreadyNotified, nil)
		}
	}

	// Look up the owner's email address.
	user, err := j.directory.GetUserByID(ctx, block.OwnerID)
	if err != nil {
		return skip(SkipDirectory, err)
	}
	if user == nil || user.Email == "" {
		return skip(SkipNoEmail, nil)
	}
	if err = common.ValidateEmailAddress(user.Email); err != nil {
		return skip(SkipInvalidEmail, err)
	}

	// Send the reminder.
	if err = j.mailer.SendReminder(ctx, user.Email, block.StartTime, block.EndTime); err != nil {
		return skip(SkipDelivery, err)
	}

	// Record the reminder. An overlapping pass may have recorded it first, which is fine.
	if j.ledger != nil {
		err = j.ledger.InsertOne(ctx, model.NewNotificationRecord(block, j.now()))
		if err != nil && !errors.Is(err, ledger.ErrAlreadyRecorded) {
			outcome.LedgerWriteErr = err
		}
	}

	// Flag the block as notified.
	if err = j.blocks.MarkBlockNotified(ctx, block.ID); err != nil {
		outcome.FlagUpdateErr = err
	}

	return outcome
}

// logOutcome logs the result of processing a single block.
func logOutcome(outcome *Outcome) {
	entry := log.WithFields(logrus.Fields{
		"block": outcome.BlockID,
		"owner": outcome.OwnerID,
	})

	switch outcome.Skip {
	case SkipNone:
		entry.Info("reminder sent")
	case SkipAlreadyNotified:
		entry.Info("a reminder was already sent; skipping")
	case SkipNoEmail:
		entry.WithField("reason", outcome.Skip).Warn("no email address found for the owner; skipping")
	default:
		entry.WithField("reason", outcome.Skip).WithError(outcome.Err).Error("unable to send the reminder")
	}

	if outcome.LedgerWriteErr != nil {
		entry.WithError(outcome.LedgerWriteErr).Error("unable to record the reminder in the ledger")
	}
	if outcome.FlagUpdateErr != nil {
		entry.WithError(outcome.FlagUpdateErr).Error("unable to mark the block as notified")
	}
}

// Sweep removes quiet hour blocks that have already ended.
func (j *Job) Sweep(ctx context.Context) (int64, error) {
	count, err := j.blocks.DeleteEndedBlocks(ctx, j.now())
	if err != nil {
		return 0, errors.Wrap(err, "unable to remove ended quiet hour blocks")
	}
	log.Infof("removed %d ended quiet hour blocks", count)
	return count, nil
}
