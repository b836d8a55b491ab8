package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
	"github.com/leakguard/leakguard/internal/repository"
)

type LeakHandler interface {
	GetLeaks(c *gin.Context)
	GetLeakByID(c *gin.Context)
	UpdateStatus(c *gin.Context)
}

type leakHandler struct {
	leakRepo repository.LeakRepository
	logger   *zap.Logger
}

func NewLeakHandler(leakRepo repository.LeakRepository, logger *zap.Logger) LeakHandler {
	return &leakHandler{leakRepo: leakRepo, logger: logger}
}

// GetLeaks handles GET /api/leaks with optional status, severity and category
// filters.
func (h *leakHandler) GetLeaks(c *gin.Context) {
	filter := repository.LeakFilter{
		Status:   c.Query("status"),
		Severity: c.Query("severity"),
		Category: c.Query("category"),
	}
	if filter.Severity != "" && !models.ValidSeverity(filter.Severity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
		return
	}

	leaks, err := h.leakRepo.GetLeaks(filter)
	if err != nil {
		h.logger.Error("Failed to get leaks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaks": leaks})
}

// GetLeakByID handles GET /api/leaks/:id
func (h *leakHandler) GetLeakByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leak ID"})
		return
	}

	leak, err := h.leakRepo.GetLeakByID(id)
	if err != nil {
		h.logger.Error("Failed to get leak", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leak"})
		return
	}
	if leak == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Leak not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leak": leak})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/leaks/:id/status. Only transitions allowed by
// the investigation workflow are accepted.
func (h *leakHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leak ID"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	leak, err := h.leakRepo.GetLeakByID(id)
	if err != nil {
		h.logger.Error("Failed to get leak", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leak"})
		return
	}
	if leak == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Leak not found"})
		return
	}

	if !models.CanTransitionStatus(leak.Status, req.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Invalid status transition from " + leak.Status + " to " + req.Status,
		})
		return
	}

	if err := h.leakRepo.UpdateLeakStatus(id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Leak not found"})
			return
		}
		h.logger.Error("Failed to update leak status", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update leak"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}
