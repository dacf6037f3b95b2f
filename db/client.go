package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/cyverse-de/quiet-hours/model"
)

// Client binds the package-level query functions to a single database connection so that it can be
// handed to the components that consume the block repository and the user directory.
type Client struct {
	db *sql.DB
}

// NewClient returns a new client for the given database connection.
func NewClient(db *sql.DB) *Client {
	return &Client{db: db}
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) ListDueBlocks(ctx context.Context, start, end time.Time) ([]model.QuietHourBlock, error) {
	return ListDueBlocks(ctx, c.db, start, end)
}

func (c *Client) ListBlocksForOwner(ctx context.Context, ownerID string) ([]model.QuietHourBlock, error) {
	return ListBlocksForOwner(ctx, c.db, ownerID)
}

func (c *Client) CreateBlock(ctx context.Context, ownerID string, start, end time.Time) (*model.QuietHourBlock, error) {
	return CreateBlock(ctx, c.db, ownerID, start, end)
}

func (c *Client) MarkBlockNotified(ctx context.Context, id string) error {
	return MarkBlockNotified(ctx, c.db, id)
}

func (c *Client) DeleteBlock(ctx context.Context, id, ownerID string) error {
	return DeleteBlock(ctx, c.db, id, ownerID)
}

func (c *Client) DeleteEndedBlocks(ctx context.Context, now time.Time) (int64, error) {
	return DeleteEndedBlocks(ctx, c.db, now)
}

func (c *Client) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return GetUserByID(ctx, c.db, userID)
}
