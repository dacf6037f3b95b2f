package db

import (
	"context"
	"database/sql"

	"github.com/cyverse-de/dbutil"
	"github.com/pkg/errors"

	// Registers the postgres driver.
	_ "github.com/lib/pq"
)

// DatabaseAccessor is the subset of the database/sql API shared by *sql.DB and *sql.Tx.
type DatabaseAccessor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// InitDatabase establishes a database connection and verifies tha the database can be reached.
func InitDatabase(driverName, databaseURI string) (*sql.DB, error) {
	wrapMsg := "unable to initialize the database"

	// Create a database connector to establish the connection.
	connector, err := dbutil.NewDefaultConnector("1m")
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Establish the database connection.
	db, err := connector.Connect(driverName, databaseURI)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return db, nil
}
