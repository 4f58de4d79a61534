package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Cache serves repeated GET responses from redis for a short TTL. Only
// successful responses are stored. The key includes the caller's bearer
// token, so authenticated responses are never shared across users. A nil
// client disables caching.
func Cache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := cacheKey(c)

		if body, err := rdb.Get(ctx, key).Result(); err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(body))
			c.Abort()
			return
		}

		w := &cacheWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Header("X-Cache", "MISS")
		c.Next()

		if w.Status() >= http.StatusOK && w.Status() < http.StatusMultipleChoices {
			rdb.Set(ctx, key, w.body.String(), ttl)
		}
	}
}

func cacheKey(c *gin.Context) string {
	sum := sha256.Sum256([]byte(c.GetHeader("Authorization")))
	return "cache:" + hex.EncodeToString(sum[:8]) + ":" + c.Request.URL.RequestURI()
}

// cacheWriter copies the response body while it streams to the client.
type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
