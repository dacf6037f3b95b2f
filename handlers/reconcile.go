package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Reconcile exposes the reconciliation job over HTTP.
type Reconcile struct {
	job Reconciler
}

// NewReconcile returns a new reconciliation handler.
func NewReconcile(job Reconciler) *Reconcile {
	return &Reconcile{job: job}
}

// HandleReconcile runs a single reconciliation pass.
func (h *Reconcile) HandleReconcile(c *gin.Context) {
	report, err := h.job.Run(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("reconciliation pass aborted")
		respondError(c, NewListError("%s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Processing complete",
		"count":   report.Count,
		"sent":    report.Sent(),
		"skipped": report.Skipped(),
	})
}

// HandleSweep removes quiet hour blocks that have already ended.
func (h *Reconcile) HandleSweep(c *gin.Context) {
	count, err := h.job.Sweep(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("sweep failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sweep complete",
		"count":   count,
	})
}
