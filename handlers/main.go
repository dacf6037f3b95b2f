package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cyverse-de/quiet-hours/logging"
	"github.com/cyverse-de/quiet-hours/model"
	"github.com/cyverse-de/quiet-hours/reconciler"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logging.Log.WithFields(logrus.Fields{"package": "handlers"})

// Reconciler describes the reconciliation job operations exposed over HTTP.
type Reconciler interface {
	Run(ctx context.Context) (*reconciler.Report, error)
	Sweep(ctx context.Context) (int64, error)
}

// BlockStore describes the quiet hour block operations used by the front end.
type BlockStore interface {
	CreateBlock(ctx context.Context, ownerID string, start, end time.Time) (*model.QuietHourBlock, error)
	ListBlocksForOwner(ctx context.Context, ownerID string) ([]model.QuietHourBlock, error)
	DeleteBlock(ctx context.Context, id, ownerID string) error
}

// HandleHealthCheck responds to health checks.
func HandleHealthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}
