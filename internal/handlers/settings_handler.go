package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kirkidoo/Qualipieces/internal/services"
)

// SettingsHandler handles connection settings HTTP requests
type SettingsHandler struct {
	connectionService *services.ConnectionService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(connectionService *services.ConnectionService) *SettingsHandler {
	return &SettingsHandler{
		connectionService: connectionService,
	}
}

// Get returns the effective connection settings with secrets redacted.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.connectionService.Settings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Update saves new connection settings. Empty secret fields keep the stored
// secrets.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.connectionService.Update(c.Request.Context(), &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.connectionService.Settings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}
