package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chat-api/internal/api/ws"
	"chat-api/internal/config"
	"chat-api/internal/models"
	"chat-api/internal/pkg/database"
	"chat-api/internal/pkg/token"
	"chat-api/internal/repository"
)

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	chats := &repository.ChatRepository{DB: db}
	r := gin.New()
	RegisterRoutes(r, Deps{
		Cfg: config.Config{
			Env:             "test",
			AllowedOrigins:  "*",
			Version:         "test",
			RateLimitMax:    1000,
			RateLimitWindow: time.Minute,
		},
		Log:      log,
		Users:    &repository.UserRepository{DB: db},
		Chats:    chats,
		Messages: &repository.MessageRepository{DB: db, Chats: chats},
		Tokens:   token.NewService("test-secret", "test-secret-refresh"),
		Hub:      ws.NewHub(),
		Started:  time.Now(),
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func registerUser(t *testing.T, r *gin.Engine, name, email string) (models.User, string, string) {
	t.Helper()
	w, env := doJSON(t, r, "POST", "/api/user/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var auth struct {
		User         models.User `json:"user"`
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotZero(t, auth.User.ID)
	require.NotEmpty(t, auth.AccessToken)
	return auth.User, auth.AccessToken, auth.RefreshToken
}

func TestRegisterNeverReturnsPassword(t *testing.T) {
	r := setupRouter(t)
	w, env := doJSON(t, r, "POST", "/api/user/register", "", gin.H{
		"name":     "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.NotContains(t, w.Body.String(), `"password"`)
	assert.NotContains(t, w.Body.String(), "secret123")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "alice", "alice@example.com")

	w, env := doJSON(t, r, "POST", "/api/user/register", "", gin.H{
		"name":     "impostor",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusConflict, env.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	r := setupRouter(t)
	w, _ := doJSON(t, r, "POST", "/api/user/register", "", gin.H{
		"name":     "al",
		"email":    "not-an-email",
		"password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "alice", "alice@example.com")

	w1, env1 := doJSON(t, r, "POST", "/api/user/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	w2, env2 := doJSON(t, r, "POST", "/api/user/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w1.Code)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
	assert.Equal(t, env1.Message, env2.Message)
}

func TestLoginSuccess(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "alice", "alice@example.com")

	w, env := doJSON(t, r, "POST", "/api/user/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotContains(t, w.Body.String(), `"password"`)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	r := setupRouter(t)

	w, _ := doJSON(t, r, "GET", "/api/user/listUsers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, "GET", "/api/user/listUsers", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsersExcludesCaller(t *testing.T) {
	r := setupRouter(t)
	_, tokenA, _ := registerUser(t, r, "alice", "alice@example.com")
	b, _, _ := registerUser(t, r, "bob", "bob@example.com")

	w, env := doJSON(t, r, "GET", "/api/user/listUsers?search=", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, b.ID, users[0].ID)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Equal(t, int64(1), env.Pagination.Total)
}

func TestRefreshTokenExchange(t *testing.T) {
	r := setupRouter(t)
	_, _, refresh := registerUser(t, r, "alice", "alice@example.com")

	w, env := doJSON(t, r, "POST", "/api/user/refreshToken", "", gin.H{
		"refreshToken": refresh,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)

	// The renewed token works against a protected route.
	w, _ = doJSON(t, r, "GET", "/api/user/listUsers", data.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	r := setupRouter(t)
	_, access, _ := registerUser(t, r, "alice", "alice@example.com")

	w, _ := doJSON(t, r, "POST", "/api/user/refreshToken", "", gin.H{
		"refreshToken": access,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessChatIsIdempotent(t *testing.T) {
	r := setupRouter(t)
	_, tokenA, _ := registerUser(t, r, "alice", "alice@example.com")
	b, _, _ := registerUser(t, r, "bob", "bob@example.com")

	w, env := doJSON(t, r, "POST", "/api/chat/access", tokenA, gin.H{"userId": b.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var first models.Chat
	require.NoError(t, json.Unmarshal(env.Data, &first))

	w, env = doJSON(t, r, "POST", "/api/chat/access", tokenA, gin.H{"userId": b.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var second models.Chat
	require.NoError(t, json.Unmarshal(env.Data, &second))

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Users, 2)
}

func TestCreateGroupTooSmall(t *testing.T) {
	r := setupRouter(t)
	_, tokenA, _ := registerUser(t, r, "alice", "alice@example.com")
	b, _, _ := registerUser(t, r, "bob", "bob@example.com")

	w, _ := doJSON(t, r, "POST", "/api/chat/createGroup", tokenA, gin.H{
		"name":  "duo",
		"users": []uint{b.ID},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageToUnknownChat(t *testing.T) {
	r := setupRouter(t)
	_, tokenA, _ := registerUser(t, r, "alice", "alice@example.com")

	w, _ := doJSON(t, r, "POST", "/api/message/send", tokenA, gin.H{
		"content": "hello?",
		"chatId":  9999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMessagesByNonMember(t *testing.T) {
	r := setupRouter(t)
	_, tokenA, _ := registerUser(t, r, "alice", "alice@example.com")
	b, _, _ := registerUser(t, r, "bob", "bob@example.com")
	_, tokenM, _ := registerUser(t, r, "mallory", "mallory@example.com")

	_, env := doJSON(t, r, "POST", "/api/chat/access", tokenA, gin.H{"userId": b.ID})
	var chat models.Chat
	require.NoError(t, json.Unmarshal(env.Data, &chat))

	w, _ := doJSON(t, r, "GET", fmt.Sprintf("/api/message/getMessages/%d", chat.ID), tokenM, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEndToEndDirectMessage(t *testing.T) {
	r := setupRouter(t)
	a, tokenA, _ := registerUser(t, r, "alice", "alice@example.com")
	b, tokenB, _ := registerUser(t, r, "bob", "bob@example.com")

	// A opens the chat with B.
	w, env := doJSON(t, r, "POST", "/api/chat/access", tokenA, gin.H{"userId": b.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var chat models.Chat
	require.NoError(t, json.Unmarshal(env.Data, &chat))
	require.Len(t, chat.Users, 2)

	// A says hi.
	w, env = doJSON(t, r, "POST", "/api/message/send", tokenA, gin.H{
		"content": "hi",
		"chatId":  chat.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var sent models.Message
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	require.NotNil(t, sent.Sender)
	assert.Equal(t, a.ID, sent.Sender.ID)

	// B reads it.
	w, env = doJSON(t, r, "GET", fmt.Sprintf("/api/message/getMessages/%d", chat.ID), tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Message
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "hi", list[0].Content)
	require.NotNil(t, list[0].Sender)
	assert.Equal(t, a.Name, list[0].Sender.Name)

	// B's chat list carries the latest message.
	w, env = doJSON(t, r, "GET", "/api/chat/getChats", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chatList []models.Chat
	require.NoError(t, json.Unmarshal(env.Data, &chatList))
	require.Len(t, chatList, 1)
	require.NotNil(t, chatList[0].LatestMessage)
	assert.Equal(t, sent.ID, chatList[0].LatestMessage.ID)
}

func TestGroupLifecycle(t *testing.T) {
	r := setupRouter(t)
	_, tokenA, _ := registerUser(t, r, "alice", "alice@example.com")
	b, tokenB, _ := registerUser(t, r, "bob", "bob@example.com")
	c, _, _ := registerUser(t, r, "carol", "carol@example.com")
	d, _, _ := registerUser(t, r, "dave", "dave@example.com")

	w, env := doJSON(t, r, "POST", "/api/chat/createGroup", tokenA, gin.H{
		"name":  "friends",
		"users": []uint{b.ID, c.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var group models.Chat
	require.NoError(t, json.Unmarshal(env.Data, &group))
	require.True(t, group.IsGroup)

	// Non-admin rename is rejected.
	w, _ = doJSON(t, r, "PUT", "/api/chat/renameGroup", tokenB, gin.H{
		"chatId":   group.ID,
		"chatName": "bob's place",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin renames and adds a member.
	w, _ = doJSON(t, r, "PUT", "/api/chat/renameGroup", tokenA, gin.H{
		"chatId":   group.ID,
		"chatName": "close friends",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, "PUT", "/api/chat/addUser", tokenA, gin.H{
		"chatId": group.ID,
		"userId": d.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &group))
	assert.Len(t, group.Users, 4)

	// A member leaves on their own.
	w, env = doJSON(t, r, "GET", fmt.Sprintf("/api/chat/leaveGroup/%d", group.ID), tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &group))
	assert.Len(t, group.Users, 3)
}

func TestHealthEndpoint(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "version")
}
