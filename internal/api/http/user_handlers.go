package http

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chat-api/internal/models"
	"chat-api/internal/pkg/apperr"
	"chat-api/internal/pkg/response"
	"chat-api/internal/pkg/token"
	"chat-api/internal/repository"
)

type UserHandler struct {
	Users  *repository.UserRepository
	Tokens *token.Service
	Log    *logrus.Logger
}

// POST /api/user/register
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("invalid registration data"))
		return
	}

	user, err := h.Users.Register(req.Name, req.Email, req.Password, req.Pic)
	if err != nil {
		c.Error(err)
		return
	}

	auth, err := h.issueTokens(*user)
	if err != nil {
		c.Error(err)
		return
	}

	h.Log.WithField("email", user.Email).Info("new user registered")
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, "user registered", auth))
}

// POST /api/user/login
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("invalid login data"))
		return
	}

	user, err := h.Users.Authenticate(req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	auth, err := h.issueTokens(*user)
	if err != nil {
		c.Error(err)
		return
	}

	h.Log.WithField("email", user.Email).Info("user authenticated")
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "login successful", auth))
}

// GET /api/user/listUsers?search=
func (h *UserHandler) ListUsers(c *gin.Context) {
	caller := CurrentUser(c)
	paging := GetPaging(c)
	search := c.Query("search")

	users, total, err := h.Users.Search(search, caller.UserID, paging.Limit, paging.Skip)
	if err != nil {
		c.Error(err)
		return
	}

	if len(users) == 0 {
		c.JSON(http.StatusOK, response.Success(http.StatusOK, "no users matched the search", users))
		return
	}

	c.JSON(http.StatusOK, response.Paginated("users found", users, &response.Pagination{
		Page:  paging.Page,
		Limit: paging.Limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(paging.Limit))),
	}))
}

// POST /api/user/refreshToken exchanges a valid refresh token for a new
// access token without re-prompting credentials.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.BadRequest("a refresh token is required"))
		return
	}

	userID, err := h.Tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		c.Error(err)
		return
	}
	user, err := h.Users.GetByID(userID)
	if err != nil {
		c.Error(err)
		return
	}
	accessToken, err := h.Tokens.AccessToken(*user)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "access token renewed",
		gin.H{"accessToken": accessToken}))
}

func (h *UserHandler) issueTokens(user models.User) (*models.AuthResponse, error) {
	accessToken, err := h.Tokens.AccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.Tokens.RefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
