package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/repository"
)

type DashboardHandler interface {
	GetStats(c *gin.Context)
}

type dashboardHandler struct {
	channelRepo repository.ChannelRepository
	messageRepo repository.MessageRepository
	leakRepo    repository.LeakRepository
	logger      *zap.Logger
}

func NewDashboardHandler(
	channelRepo repository.ChannelRepository,
	messageRepo repository.MessageRepository,
	leakRepo repository.LeakRepository,
	logger *zap.Logger,
) DashboardHandler {
	return &dashboardHandler{
		channelRepo: channelRepo,
		messageRepo: messageRepo,
		leakRepo:    leakRepo,
		logger:      logger,
	}
}

// GetStats handles GET /api/dashboard/stats
func (h *dashboardHandler) GetStats(c *gin.Context) {
	channels, err := h.channelRepo.GetAllChannels()
	if err != nil {
		h.logger.Error("Failed to get channels", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	activeChannels := 0
	for _, ch := range channels {
		if ch.Active {
			activeChannels++
		}
	}

	messageCount, err := h.messageRepo.CountMessages()
	if err != nil {
		h.logger.Error("Failed to count messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	bySeverity, err := h.leakRepo.CountLeaksBySeverity()
	if err != nil {
		h.logger.Error("Failed to count leaks by severity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	byStatus, err := h.leakRepo.CountLeaksByStatus()
	if err != nil {
		h.logger.Error("Failed to count leaks by status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	totalLeaks := 0
	for _, n := range bySeverity {
		totalLeaks += n
	}

	recent, err := h.leakRepo.GetRecentLeaks(10)
	if err != nil {
		h.logger.Error("Failed to get recent leaks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channels":          len(channels),
		"active_channels":   activeChannels,
		"messages":          messageCount,
		"leaks":             totalLeaks,
		"leaks_by_severity": bySeverity,
		"leaks_by_status":   byStatus,
		"recent_leaks":      recent,
	})
}
