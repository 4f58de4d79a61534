package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"chat-api/internal/api/ws"
	"chat-api/internal/config"
	"chat-api/internal/pkg/token"
	"chat-api/internal/repository"
)

// Deps holds everything the HTTP layer needs, constructed once in main and
// passed down by reference.
type Deps struct {
	Cfg      config.Config
	Log      *logrus.Logger
	Users    *repository.UserRepository
	Chats    *repository.ChatRepository
	Messages *repository.MessageRepository
	Tokens   *token.Service
	Hub      *ws.Hub
	Redis    *redis.Client
	Started  time.Time
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(RequestLogger(d.Log))
	r.Use(CORS(d.Cfg.AllowedOrigins))
	r.Use(ErrorHandler(d.Log, d.Cfg.IsProduction()))

	userHandler := &UserHandler{Users: d.Users, Tokens: d.Tokens, Log: d.Log}
	chatHandler := &ChatHandler{Chats: d.Chats, Log: d.Log}
	messageHandler := &MessageHandler{Messages: d.Messages, Log: d.Log}
	healthHandler := &HealthHandler{Version: d.Cfg.Version, Started: d.Started}
	wsHandler := &WSHandler{Hub: d.Hub, Tokens: d.Tokens, Log: d.Log}

	auth := Auth(d.Tokens)

	api := r.Group("/api")
	api.Use(RateLimit(d.Redis, d.Cfg.RateLimitMax, d.Cfg.RateLimitWindow))
	if d.Cfg.IsProduction() {
		api.Use(Cache(d.Redis, d.Cfg.CacheTTL))
	}

	api.GET("/health", healthHandler.Status)

	user := api.Group("/user")
	{
		user.POST("/register", userHandler.Register)
		user.POST("/login", userHandler.Login)
		user.POST("/refreshToken", userHandler.RefreshToken)
		user.GET("/listUsers", auth, Paginate(), userHandler.ListUsers)
	}

	chat := api.Group("/chat", auth)
	{
		chat.POST("/access", chatHandler.Access)
		chat.POST("/createGroup", chatHandler.CreateGroup)
		chat.PUT("/renameGroup", chatHandler.RenameGroup)
		chat.PUT("/addUser", chatHandler.AddUser)
		chat.PUT("/removeUser", chatHandler.RemoveUser)
		chat.GET("/leaveGroup/:groupId", chatHandler.LeaveGroup)
		chat.GET("/getChats", chatHandler.GetChats)
	}

	message := api.Group("/message", auth)
	{
		message.POST("/send", messageHandler.Send)
		message.GET("/getMessages/:chatId", messageHandler.GetMessages)
	}

	r.GET("/ws", wsHandler.Serve)
}
