package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/pipeline"
	"github.com/leakguard/leakguard/internal/repository"
)

type MessageHandler interface {
	ListMessages(c *gin.Context)
	GetMessageByID(c *gin.Context)
	Extract(c *gin.Context)
}

type messageHandler struct {
	messageRepo repository.MessageRepository
	entityRepo  repository.EntityRepository
	channelRepo repository.ChannelRepository
	pipeline    *pipeline.Pipeline
	logger      *zap.Logger
}

func NewMessageHandler(
	messageRepo repository.MessageRepository,
	entityRepo repository.EntityRepository,
	channelRepo repository.ChannelRepository,
	p *pipeline.Pipeline,
	logger *zap.Logger,
) MessageHandler {
	return &messageHandler{
		messageRepo: messageRepo,
		entityRepo:  entityRepo,
		channelRepo: channelRepo,
		pipeline:    p,
		logger:      logger,
	}
}

// ListMessages handles GET /api/messages?channel_id=&limit=
func (h *messageHandler) ListMessages(c *gin.Context) {
	channelID, err := strconv.ParseInt(c.Query("channel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel_id"})
		return
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
	}

	messages, err := h.messageRepo.GetMessagesByChannel(channelID, limit)
	if err != nil {
		h.logger.Error("Failed to get messages", zap.Int64("channel_id", channelID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetMessageByID handles GET /api/messages/:id and includes the extracted
// entities for the message.
func (h *messageHandler) GetMessageByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	message, err := h.messageRepo.GetMessageByID(id)
	if err != nil {
		h.logger.Error("Failed to get message", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve message"})
		return
	}
	if message == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	entities, err := h.entityRepo.GetEntitiesByMessage(id)
	if err != nil {
		h.logger.Error("Failed to get entities", zap.Int64("message_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "entities": entities})
}

type extractRequest struct {
	Force bool `json:"force"`
}

// Extract handles POST /api/messages/:id/extract. With force set, previously
// stored entities and leaks are discarded and the message is reprocessed.
func (h *messageHandler) Extract(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.messageRepo.GetMessageByID(id)
	if err != nil {
		h.logger.Error("Failed to get message", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve message"})
		return
	}
	if message == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	channel, err := h.channelRepo.GetChannelByID(message.ChannelID)
	if err != nil || channel == nil {
		h.logger.Error("Failed to get channel for message", zap.Int64("message_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve channel"})
		return
	}

	result, err := h.pipeline.ProcessMessage(c.Request.Context(), channel, message, req.Force)
	if err != nil {
		h.logger.Error("Failed to process message", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
