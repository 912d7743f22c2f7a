package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kirkidoo/Qualipieces/internal/clients/orchestra"
	"github.com/Kirkidoo/Qualipieces/internal/services"
)

// SyncHandler handles sync run HTTP requests
type SyncHandler struct {
	syncService *services.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncService *services.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// StartSyncRequest is the operator's selection to push to Shopify. The
// optional listing parameters must match the listing the selection was made
// from so ids resolve in the same order.
type StartSyncRequest struct {
	ItemIDs    []int64 `json:"itemIds" binding:"required,min=1"`
	Filter     string  `json:"filter,omitempty"`
	Search     string  `json:"search,omitempty"`
	PageNumber int     `json:"pageNumber,omitempty"`
	PageSize   int     `json:"pageSize,omitempty"`
}

// StartSync runs one sequential sync batch for the selected items. The call
// blocks until every item has resolved; per-item failures are reported on
// the records, not as a request failure.
func (h *SyncHandler) StartSync(c *gin.Context) {
	var req StartSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := req.Filter
	if filter == "" && req.Search != "" {
		filter = "description=*" + req.Search
	}
	query := orchestra.ItemQuery{
		Filter:     filter,
		PageNumber: req.PageNumber,
		PageSize:   req.PageSize,
	}

	summary, err := h.syncService.SyncSelection(c.Request.Context(), req.ItemIDs, query)
	if err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"records": h.syncService.Records(),
	})
}

// ListRecords returns the newest-first sync log.
func (h *SyncHandler) ListRecords(c *gin.Context) {
	records := h.syncService.Records()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// Status reports whether a run is in flight.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"busy": h.syncService.Busy(),
	})
}
