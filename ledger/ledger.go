// Package ledger records the reminders that have already been sent so that a quiet hour block is never
// reminded about twice. The ledger lives in its own datastore, which may be either PostgreSQL or SQLite.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/cyverse-de/quiet-hours/model"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported ledger drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrAlreadyRecorded is returned by InsertOne when a record for the same block and owner already exists.
var ErrAlreadyRecorded = errors.New("notification already recorded")

// Ledger provides access to the notification records.
type Ledger struct {
	db *gorm.DB
}

// Open connects to the ledger datastore and makes sure that its schema is up to date.
func Open(driver, uri string) (*Ledger, error) {
	wrapMsg := "unable to open the notification ledger"

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(uri)
	case DriverSQLite:
		dialector = sqlite.Open(uri)
	default:
		return nil, fmt.Errorf("%s: unsupported driver: %s", wrapMsg, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Set up database connection pooling. SQLite only supports a single writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	return New(db)
}

// New wraps an existing GORM connection, migrating the ledger schema.
func New(db *gorm.DB) (*Ledger, error) {
	if err := db.AutoMigrate(&model.NotificationRecord{}); err != nil {
		return nil, errors.Wrap(err, "unable to migrate the notification ledger schema")
	}
	return &Ledger{db: db}, nil
}

// FindOne returns the notification record for a block and owner, or nil if no reminder has been recorded.
func (l *Ledger) FindOne(ctx context.Context, blockID, ownerID string) (*model.NotificationRecord, error) {
	var record model.NotificationRecord
	err := l.db.WithContext(ctx).
		Where("block_id = ? AND owner_id = ?", blockID, ownerID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to look up the notification record for block `%s`", blockID)
	}
	return &record, nil
}

// InsertOne adds a notification record. The unique index on (block_id, owner_id) turns a concurrent
// duplicate into ErrAlreadyRecorded.
func (l *Ledger) InsertOne(ctx context.Context, record *model.NotificationRecord) error {
	err := l.db.WithContext(ctx).Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyRecorded
	}
	if err != nil {
		return errors.Wrapf(err, "unable to record the notification for block `%s`", record.BlockID)
	}
	return nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
