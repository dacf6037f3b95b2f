package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// timeArg matches a timestamp argument regardless of its location.
type timeArg struct {
	expected time.Time
}

// Match returns true if the value is a time.Time representing the same instant as the expected value.
func (a timeArg) Match(v driver.Value) bool {
	actual, ok := v.(time.Time)
	return ok && actual.Equal(a.expected)
}

var errTest = errors.New("test error")

var blockColumns = []string{"id", "user_id", "start_time", "end_time", "notified"}

func TestListDueBlocks(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	ctx := context.Background()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	// Set up the expectations.
	ist := time.FixedZone("IST", 5*60*60+30*60)
	start := time.Date(2025, time.January, 1, 15, 25, 0, 0, ist)
	end := time.Date(2025, time.January, 1, 16, 30, 0, 0, ist)
	blockStart := time.Date(2025, time.January, 1, 10, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(blockColumns).
		AddRow("b1", "u1", blockStart, blockStart.Add(time.Hour), false)
	query := "SELECT id::text, user_id::text, start_time, end_time, notified FROM quiet_hours " +
		"WHERE notified = $1 AND start_time >= $2 AND start_time <= $3"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(false, timeArg{start}, timeArg{end}).
		WillReturnRows(rows)

	// List the due blocks.
	blocks, err := ListDueBlocks(ctx, db, start, end)
	assert.NoError(err, "unexpected error occurred while listing due blocks")
	if assert.Len(blocks, 1) {
		assert.Equal("b1", blocks[0].ID)
		assert.Equal("u1", blocks[0].OwnerID)
		assert.True(blocks[0].StartTime.Equal(blockStart))
		assert.False(blocks[0].Notified)
	}

	// Verify that all mock expectations were met.
	err = mock.ExpectationsWereMet()
	assert.NoError(err, "not all mock expectations were met")
}

func TestListDueBlocksEmpty(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM quiet_hours WHERE notified =").
		WillReturnRows(sqlmock.NewRows(blockColumns))

	now := time.Now()
	blocks, err := ListDueBlocks(context.Background(), db, now, now.Add(time.Hour))
	assert.NoError(err)
	assert.NotNil(blocks)
	assert.Empty(blocks)
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestListDueBlocksQueryError(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM quiet_hours").
		WillReturnError(errTest)

	now := time.Now()
	_, err = ListDueBlocks(context.Background(), db, now, now.Add(time.Hour))
	assert.ErrorIs(err, errTest)
	assert.Contains(err.Error(), "unable to list due quiet hour blocks")
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestListBlocksForOwner(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	start := time.Date(2025, time.January, 1, 10, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(blockColumns).
		AddRow("b1", "u1", start, start.Add(time.Hour), false).
		AddRow("b2", "u1", start.Add(24*time.Hour), start.Add(25*time.Hour), true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM quiet_hours WHERE user_id = $1 ORDER BY start_time ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	blocks, err := ListBlocksForOwner(context.Background(), db, "u1")
	assert.NoError(err)
	assert.Len(blocks, 2)
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestCreateBlock(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	ist := time.FixedZone("IST", 5*60*60+30*60)
	start := time.Date(2025, time.January, 1, 16, 0, 0, 0, ist)
	end := start.Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO quiet_hours (id,user_id,start_time,end_time,notified) VALUES ($1,$2,$3,$4,$5)",
	)).
		WithArgs(sqlmock.AnyArg(), "u1", timeArg{start}, timeArg{end}, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	block, err := CreateBlock(context.Background(), db, "u1", start, end)
	assert.NoError(err)
	assert.NotEmpty(block.ID)
	assert.Equal(time.UTC, block.StartTime.Location(), "start time was not normalized to UTC")
	assert.Equal(10, block.StartTime.Hour())
	assert.False(block.Notified)
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestMarkBlockNotified(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE quiet_hours SET notified = $1 WHERE id = $2")).
		WithArgs(true, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = MarkBlockNotified(context.Background(), db, "b1")
	assert.NoError(err)
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestMarkBlockNotifiedMissingBlock(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	mock.ExpectExec("UPDATE quiet_hours SET notified").
		WithArgs(true, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = MarkBlockNotified(context.Background(), db, "missing")
	assert.Error(err)
	assert.Contains(err.Error(), "unexpected number of rows affected: 0")
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestDeleteBlock(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM quiet_hours WHERE id = $1 AND user_id = $2")).
		WithArgs("b1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM quiet_hours WHERE id = $1 AND user_id = $2")).
		WithArgs("b1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(DeleteBlock(context.Background(), db, "b1", "u1"))
	assert.ErrorIs(DeleteBlock(context.Background(), db, "b1", "u2"), ErrBlockNotFound)
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}

func TestDeleteEndedBlocks(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	now := time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM quiet_hours WHERE end_time < $1")).
		WithArgs(timeArg{now}).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := DeleteEndedBlocks(context.Background(), db, now)
	assert.NoError(err)
	assert.Equal(int64(3), count)
	assert.NoError(mock.ExpectationsWereMet(), "not all mock expectations were met")
}
