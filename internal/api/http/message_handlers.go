package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chat-api/internal/models"
	"chat-api/internal/pkg/apperr"
	"chat-api/internal/pkg/response"
	"chat-api/internal/repository"
)

type MessageHandler struct {
	Messages *repository.MessageRepository
	Log      *logrus.Logger
}

// POST /api/message/send
func (h *MessageHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("content and a chat id are required"))
		return
	}

	msg, err := h.Messages.Append(CurrentUser(c).UserID, req.ChatID, req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "message sent", msg))
}

// GET /api/message/getMessages/:chatId
func (h *MessageHandler) GetMessages(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chatId"), 10, 32)
	if err != nil {
		c.Error(apperr.BadRequest("a valid chat id is required"))
		return
	}

	messages, err := h.Messages.ListByChat(uint(chatID), CurrentUser(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "messages retrieved", messages))
}
