package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
	"github.com/leakguard/leakguard/internal/repository"
)

type ChannelHandler interface {
	GetAllChannels(c *gin.Context)
	GetChannelByID(c *gin.Context)
	CreateChannel(c *gin.Context)
	UpdateActive(c *gin.Context)
}

type channelHandler struct {
	channelRepo repository.ChannelRepository
	logger      *zap.Logger
}

func NewChannelHandler(channelRepo repository.ChannelRepository, logger *zap.Logger) ChannelHandler {
	return &channelHandler{channelRepo: channelRepo, logger: logger}
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{3,31}$`)

// GetAllChannels handles GET /api/channels
func (h *channelHandler) GetAllChannels(c *gin.Context) {
	channels, err := h.channelRepo.GetAllChannels()
	if err != nil {
		h.logger.Error("Failed to get channels", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// GetChannelByID handles GET /api/channels/:id
func (h *channelHandler) GetChannelByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel ID"})
		return
	}

	channel, err := h.channelRepo.GetChannelByID(id)
	if err != nil {
		h.logger.Error("Failed to get channel", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve channel"})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": channel})
}

type createChannelRequest struct {
	Username string `json:"username" binding:"required"`
	Title    string `json:"title"`
}

// CreateChannel handles POST /api/channels. Telegram id and access hash are
// resolved lazily by the collector on first scan.
func (h *channelHandler) CreateChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.TrimPrefix(strings.TrimPrefix(req.Username, "https://t.me/"), "@")
	if !usernamePattern.MatchString(username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel username"})
		return
	}

	// Re-registering returns the stored channel as-is; an upsert here would
	// wipe the resolved telegram id and access hash.
	existing, err := h.channelRepo.GetChannelByUsername(username)
	if err != nil {
		h.logger.Error("Failed to look up channel", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, gin.H{"channel": existing})
		return
	}

	channel := &models.Channel{
		Username: username,
		Title:    req.Title,
		Active:   true,
	}
	if err := h.channelRepo.CreateChannel(channel); err != nil {
		h.logger.Error("Failed to create channel", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"channel": channel})
}

type updateActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// UpdateActive handles PUT /api/channels/:id/active
func (h *channelHandler) UpdateActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel ID"})
		return
	}

	var req updateActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.channelRepo.UpdateActive(id, *req.Active); err != nil {
		h.logger.Error("Failed to update channel", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update channel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel updated"})
}
