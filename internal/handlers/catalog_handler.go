package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kirkidoo/Qualipieces/internal/clients"
	"github.com/Kirkidoo/Qualipieces/internal/services"
)

// CatalogHandler handles ERP catalog HTTP requests
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListItems lists catalog items from the ERP. Supports a free-text search
// (translated to the ERP description filter), a raw filter, and pagination.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	search := c.Query("search")
	filter := c.Query("filter")
	pageNumber, _ := strconv.Atoi(c.DefaultQuery("pageNumber", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))

	items, err := h.catalogService.ListItems(c.Request.Context(), search, filter, pageNumber, pageSize)
	if err != nil {
		c.JSON(catalogErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// catalogErrorStatus maps listing failures to HTTP statuses: credential
// problems read as 502 upstream auth failures, everything else as 502/500.
func catalogErrorStatus(err error) int {
	var authErr *clients.AuthenticationError
	var fetchErr *clients.FetchError
	if errors.As(err, &authErr) || errors.As(err, &fetchErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
