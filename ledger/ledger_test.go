package ledger

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cyverse-de/quiet-hours/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestLedger opens a ledger backed by a private in-memory SQLite database.
func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	l, err := Open(DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err, "unable to open the test ledger")
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func testBlock() *model.QuietHourBlock {
	start := time.Date(2025, time.January, 1, 10, 30, 0, 0, time.UTC)
	return &model.QuietHourBlock{
		ID:        "b1",
		OwnerID:   "u1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestFindOneMissing(t *testing.T) {
	l := openTestLedger(t)

	record, err := l.FindOne(context.Background(), "b1", "u1")
	assert.NoError(t, err)
	assert.Nil(t, record)
}

func TestInsertAndFind(t *testing.T) {
	assert := assert.New(t)
	l := openTestLedger(t)
	ctx := context.Background()

	sentAt := time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)
	err := l.InsertOne(ctx, model.NewNotificationRecord(testBlock(), sentAt))
	assert.NoError(err, "unable to insert the notification record")

	record, err := l.FindOne(ctx, "b1", "u1")
	assert.NoError(err)
	if assert.NotNil(record) {
		assert.Equal("b1", record.BlockID)
		assert.Equal("u1", record.OwnerID)
		assert.True(record.SentAt.Equal(sentAt), "incorrect sent_at: %s", record.SentAt)
		assert.True(record.StartTime.Equal(testBlock().StartTime), "incorrect start_time: %s", record.StartTime)
	}

	// A record for the same block with a different owner is a different key.
	record, err = l.FindOne(ctx, "b1", "u2")
	assert.NoError(err)
	assert.Nil(record)
}

func TestInsertDuplicate(t *testing.T) {
	assert := assert.New(t)
	l := openTestLedger(t)
	ctx := context.Background()

	sentAt := time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)
	assert.NoError(l.InsertOne(ctx, model.NewNotificationRecord(testBlock(), sentAt)))

	err := l.InsertOne(ctx, model.NewNotificationRecord(testBlock(), sentAt.Add(time.Minute)))
	assert.ErrorIs(err, ErrAlreadyRecorded)

	// The original record must be left untouched.
	record, err := l.FindOne(ctx, "b1", "u1")
	assert.NoError(err)
	if assert.NotNil(record) {
		assert.True(record.SentAt.Equal(sentAt))
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("mongodb", "mongodb://localhost")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}
