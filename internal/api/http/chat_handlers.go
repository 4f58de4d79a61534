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

type ChatHandler struct {
	Chats *repository.ChatRepository
	Log   *logrus.Logger
}

// POST /api/chat/access opens (or lazily creates) the one-to-one chat with
// another user.
func (h *ChatHandler) Access(c *gin.Context) {
	var req models.AccessChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("a user id is required"))
		return
	}

	chat, err := h.Chats.AccessOrCreateDirect(CurrentUser(c).UserID, req.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "chat ready", chat))
}

// POST /api/chat/createGroup
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("a name and a list of users are required"))
		return
	}

	caller := CurrentUser(c)
	chat, err := h.Chats.CreateGroup(req.Name, req.Users, caller.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	h.Log.WithFields(logrus.Fields{"chat": chat.ID, "admin": caller.UserID}).
		Info("group chat created")
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "group chat created", chat))
}

// PUT /api/chat/renameGroup
func (h *ChatHandler) RenameGroup(c *gin.Context) {
	var req models.RenameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("a chat id and a new chat name are required"))
		return
	}

	chat, err := h.Chats.Rename(req.ChatID, req.ChatName, CurrentUser(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "group chat renamed", chat))
}

// PUT /api/chat/addUser
func (h *ChatHandler) AddUser(c *gin.Context) {
	var req models.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("a chat id and a user id are required"))
		return
	}

	chat, err := h.Chats.AddMember(req.ChatID, req.UserID, CurrentUser(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "user added to group", chat))
}

// PUT /api/chat/removeUser
func (h *ChatHandler) RemoveUser(c *gin.Context) {
	var req models.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("a chat id and a user id are required"))
		return
	}

	chat, err := h.Chats.RemoveMember(req.ChatID, req.UserID, CurrentUser(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "user removed from group", chat))
}

// GET /api/chat/leaveGroup/:groupId
func (h *ChatHandler) LeaveGroup(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("groupId"), 10, 32)
	if err != nil {
		c.Error(apperr.BadRequest("a valid group id is required"))
		return
	}

	caller := CurrentUser(c).UserID
	chat, err := h.Chats.RemoveMember(uint(groupID), caller, caller)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "left the group", chat))
}

// GET /api/chat/getChats
func (h *ChatHandler) GetChats(c *gin.Context) {
	chats, err := h.Chats.ListForUser(CurrentUser(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "chats retrieved", chats))
}
