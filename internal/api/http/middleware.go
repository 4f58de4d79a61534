package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"chat-api/internal/pkg/apperr"
	"chat-api/internal/pkg/response"
	"chat-api/internal/pkg/token"
)

const ctxUserKey = "currentUser"

// CurrentUser returns the identity the auth middleware stored on the context.
func CurrentUser(c *gin.Context) *token.AccessClaims {
	claims, _ := c.Get(ctxUserKey)
	user, _ := claims.(*token.AccessClaims)
	return user
}

// Auth rejects requests without a valid bearer access token.
func Auth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Error(http.StatusUnauthorized, "an authentication token is required", nil))
			return
		}
		claims, err := tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Error(http.StatusUnauthorized, "invalid or expired token", nil))
			return
		}
		c.Set(ctxUserKey, claims)
		c.Next()
	}
}

// ErrorHandler converts errors raised by handlers into the response envelope
// exactly once. Error details carry the request path and method; unexpected
// errors keep their text out of the response in production.
func ErrorHandler(log *logrus.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		apiErr := apperr.From(err)

		details := gin.H{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}
		if apiErr.Code >= http.StatusInternalServerError {
			log.WithError(err).
				WithField("path", c.Request.URL.Path).
				Error("request failed")
			if !production {
				details["cause"] = err.Error()
			}
		}

		c.JSON(apiErr.Code, response.Error(apiErr.Code, apiErr.Message, details))
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}).Info("http request")
	}
}

// CORS echoes the request origin when it is on the configured CSV list and
// short-circuits preflight. A "*" entry allows every origin.
func CORS(allowedOrigins string) gin.HandlerFunc {
	allowAll := false
	allowed := map[string]bool{}
	for _, origin := range strings.Split(allowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
		} else if origin != "" {
			allowed[origin] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RateLimit caps requests per client IP within a rolling window, counted in
// redis. A nil client disables limiting.
func RateLimit(rdb *redis.Client, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		ctx := context.Background()
		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())

		// Incr and Expire travel in one pipeline so the key can never be
		// left behind without a TTL.
		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			// Redis being down should not take the API with it.
			c.Next()
			return
		}
		if incr.Val() > int64(max) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				response.Error(http.StatusTooManyRequests,
					"too many requests from this IP, please try again later", nil))
			return
		}
		c.Next()
	}
}
