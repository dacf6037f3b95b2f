package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cyverse-de/quiet-hours/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// ErrBlockNotFound is returned when a quiet hour block to be modified doesn't exist.
var ErrBlockNotFound = errors.New("quiet hour block not found")

var quietHourColumns = []string{
	"id::text",
	"user_id::text",
	"start_time",
	"end_time",
	"notified",
}

// scanQuietHourBlocks scans every row in a quiet hour block result set.
func scanQuietHourBlocks(rows *sql.Rows) ([]model.QuietHourBlock, error) {
	blocks := make([]model.QuietHourBlock, 0)
	for rows.Next() {
		var block model.QuietHourBlock
		err := rows.Scan(&block.ID, &block.OwnerID, &block.StartTime, &block.EndTime, &block.Notified)
		if err != nil {
			return nil, err
		}
		block.StartTime = block.StartTime.UTC()
		block.EndTime = block.EndTime.UTC()
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// ListDueBlocks lists the quiet hour blocks that haven't been marked as notified and start between start
// and end, inclusive.
func ListDueBlocks(ctx context.Context, db DatabaseAccessor, start, end time.Time) ([]model.QuietHourBlock, error) {
	wrapMsg := "unable to list due quiet hour blocks"

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(quietHourColumns...).
		From("quiet_hours").
		Where(sq.Eq{"notified": false}).
		Where(sq.GtOrEq{"start_time": start.UTC()}).
		Where(sq.LtOrEq{"start_time": end.UTC()}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	blocks, err := scanQuietHourBlocks(rows)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return blocks, nil
}

// ListBlocksForOwner lists all quiet hour blocks belonging to a user, earliest first.
func ListBlocksForOwner(ctx context.Context, db DatabaseAccessor, ownerID string) ([]model.QuietHourBlock, error) {
	wrapMsg := fmt.Sprintf("unable to list quiet hour blocks for `%s`", ownerID)

	// Build the query.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(quietHourColumns...).
		From("quiet_hours").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	blocks, err := scanQuietHourBlocks(rows)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return blocks, nil
}

// CreateBlock adds a new quiet hour block for a user. The start and end times are normalized to UTC and
// the block starts out as not notified.
func CreateBlock(ctx context.Context, db DatabaseAccessor, ownerID string, start, end time.Time) (*model.QuietHourBlock, error) {
	wrapMsg := fmt.Sprintf("unable to add a quiet hour block for `%s`", ownerID)

	block := &model.QuietHourBlock{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Notified:  false,
	}

	// Build the statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("quiet_hours").
		Columns("id", "user_id", "start_time", "end_time", "notified").
		Values(block.ID, block.OwnerID, block.StartTime, block.EndTime, block.Notified).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Execute the statement.
	_, err = db.ExecContext(ctx, statement, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return block, nil
}

// MarkBlockNotified flags a quiet hour block as having had its reminder sent.
func MarkBlockNotified(ctx context.Context, db DatabaseAccessor, id string) error {
	wrapMsg := fmt.Sprintf("unable to mark quiet hour block `%s` as notified", id)

	// Build the statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("quiet_hours").
		Set("notified", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement and verify that the correct number of rows was affected.
	result, err := db.ExecContext(ctx, statement, args...)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if rowsAffected != 1 {
		return fmt.Errorf("%s: unexpected number of rows affected: %d", wrapMsg, rowsAffected)
	}

	return nil
}

// DeleteBlock removes a quiet hour block belonging to a user. ErrBlockNotFound is returned if the user
// has no such block.
func DeleteBlock(ctx context.Context, db DatabaseAccessor, id, ownerID string) error {
	wrapMsg := fmt.Sprintf("unable to delete quiet hour block `%s`", id)

	// Build the statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Delete("quiet_hours").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": ownerID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the statement.
	result, err := db.ExecContext(ctx, statement, args...)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

// DeleteEndedBlocks removes every quiet hour block that ended before now, returning the number of blocks
// that were removed.
func DeleteEndedBlocks(ctx context.Context, db DatabaseAccessor, now time.Time) (int64, error) {
	wrapMsg := "unable to delete ended quiet hour blocks"

	// Build the statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Delete("quiet_hours").
		Where(sq.Lt{"end_time": now.UTC()}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	// Execute the statement.
	result, err := db.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return rowsAffected, nil
}
