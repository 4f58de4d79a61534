package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"chat-api/internal/api/ws"
	"chat-api/internal/pkg/response"
	"chat-api/internal/pkg/token"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WSHandler struct {
	Hub    *ws.Hub
	Tokens *token.Service
	Log    *logrus.Logger
}

// GET /ws?token= upgrades the connection. The access token travels as a
// query parameter, since browsers cannot set headers on websocket requests.
func (h *WSHandler) Serve(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized,
			response.Error(http.StatusUnauthorized, "an authentication token is required", nil))
		return
	}
	claims, err := h.Tokens.VerifyAccess(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized,
			response.Error(http.StatusUnauthorized, "invalid or expired token", nil))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.Hub, conn, claims.UserID, h.Log)
	go client.WritePump()
	go client.ReadPump()
}
