package handlers

import (
	"net/http"
	"time"

	"github.com/cyverse-de/quiet-hours/common"
	"github.com/cyverse-de/quiet-hours/db"
	"github.com/cyverse-de/quiet-hours/model"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// BlockRequest is the body of a request to create a quiet hour block. Timestamps may be RFC 3339 dates or
// milliseconds since the epoch.
type BlockRequest struct {
	OwnerID   string `json:"owner_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// BlockResponse is the JSON representation of a quiet hour block.
type BlockResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notified  bool   `json:"notified"`
}

func newBlockResponse(block *model.QuietHourBlock) BlockResponse {
	return BlockResponse{
		ID:        block.ID,
		OwnerID:   block.OwnerID,
		StartTime: block.StartTime.UTC().Format(time.RFC3339),
		EndTime:   block.EndTime.UTC().Format(time.RFC3339),
		Notified:  block.Notified,
	}
}

// Blocks exposes quiet hour block management to the front end.
type Blocks struct {
	store BlockStore
}

// NewBlocks returns a new block management handler.
func NewBlocks(store BlockStore) *Blocks {
	return &Blocks{store: store}
}

// requiredOwner extracts the owner query parameter.
func requiredOwner(c *gin.Context) (string, error) {
	owner := c.Query("owner")
	if owner == "" {
		return "", NewBadRequestError("the owner query parameter is required")
	}
	return owner, nil
}

// HandleCreate adds a quiet hour block.
func (h *Blocks) HandleCreate(c *gin.Context) {
	var request BlockRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, NewBadRequestError("invalid request body: %s", err.Error()))
		return
	}

	start, err := common.ParseTimestamp(request.StartTime)
	if err != nil {
		respondError(c, NewBadRequestError("invalid start_time: %s", err.Error()))
		return
	}
	end, err := common.ParseTimestamp(request.EndTime)
	if err != nil {
		respondError(c, NewBadRequestError("invalid end_time: %s", err.Error()))
		return
	}
	if !start.Before(end) {
		respondError(c, NewBadRequestError("start_time must be before end_time"))
		return
	}

	block, err := h.store.CreateBlock(c.Request.Context(), request.OwnerID, start, end)
	if err != nil {
		log.WithError(err).Error("unable to create a quiet hour block")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBlockResponse(block))
}

// HandleList lists the quiet hour blocks belonging to a user.
func (h *Blocks) HandleList(c *gin.Context) {
	owner, err := requiredOwner(c)
	if err != nil {
		respondError(c, err)
		return
	}

	blocks, err := h.store.ListBlocksForOwner(c.Request.Context(), owner)
	if err != nil {
		log.WithError(err).Error("unable to list quiet hour blocks")
		respondError(c, err)
		return
	}

	response := make([]BlockResponse, len(blocks))
	for i := range blocks {
		response[i] = newBlockResponse(&blocks[i])
	}
	c.JSON(http.StatusOK, gin.H{"blocks": response})
}

// HandleDelete removes a quiet hour block belonging to a user.
func (h *Blocks) HandleDelete(c *gin.Context) {
	owner, err := requiredOwner(c)
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.store.DeleteBlock(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		if !errors.Is(err, db.ErrBlockNotFound) {
			log.WithError(err).Error("unable to delete a quiet hour block")
		}
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
