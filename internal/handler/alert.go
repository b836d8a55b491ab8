package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/repository"
)

type AlertHandler interface {
	GetAlerts(c *gin.Context)
	MarkRead(c *gin.Context)
}

type alertHandler struct {
	alertRepo repository.AlertRepository
	logger    *zap.Logger
}

func NewAlertHandler(alertRepo repository.AlertRepository, logger *zap.Logger) AlertHandler {
	return &alertHandler{alertRepo: alertRepo, logger: logger}
}

// GetAlerts handles GET /api/alerts, optionally filtered to unread ones with
// ?unread=true.
func (h *alertHandler) GetAlerts(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"

	alerts, err := h.alertRepo.GetAlerts(unreadOnly)
	if err != nil {
		h.logger.Error("Failed to get alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// MarkRead handles PUT /api/alerts/:id/read
func (h *alertHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	if err := h.alertRepo.MarkRead(id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("Failed to mark alert read", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert marked as read"})
}
