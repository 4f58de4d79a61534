package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	api "chat-api/internal/api/http"
	"chat-api/internal/api/ws"
	"chat-api/internal/config"
	"chat-api/internal/pkg/database"
	"chat-api/internal/pkg/logger"
	"chat-api/internal/pkg/token"
	"chat-api/internal/repository"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.IsProduction())

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN is required")
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	} else {
		log.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	userRepo := &repository.UserRepository{DB: db}
	chatRepo := &repository.ChatRepository{DB: db}
	messageRepo := &repository.MessageRepository{DB: db, Chats: chatRepo}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	api.RegisterRoutes(r, api.Deps{
		Cfg:      cfg,
		Log:      log,
		Users:    userRepo,
		Chats:    chatRepo,
		Messages: messageRepo,
		Tokens:   token.NewService(cfg.JWTSecretKey, cfg.JWTRefreshKey),
		Hub:      ws.NewHub(),
		Redis:    rdb,
		Started:  time.Now(),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("server listening")
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
