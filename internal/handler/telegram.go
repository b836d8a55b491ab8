package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CodeSubmitter accepts a Telegram login code received out of band.
type CodeSubmitter interface {
	SubmitCode(code string)
}

type TelegramHandler interface {
	SubmitCode(c *gin.Context)
}

type telegramHandler struct {
	client CodeSubmitter
	logger *zap.Logger
}

func NewTelegramHandler(client CodeSubmitter, logger *zap.Logger) TelegramHandler {
	return &telegramHandler{client: client, logger: logger}
}

type submitCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// SubmitCode handles POST /api/telegram/code. The collector blocks on the
// login flow until a code arrives here.
func (h *telegramHandler) SubmitCode(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Telegram client is not configured"})
		return
	}

	var req submitCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.client.SubmitCode(req.Code)
	h.logger.Info("Telegram login code submitted")
	c.JSON(http.StatusOK, gin.H{"message": "Code submitted"})
}
