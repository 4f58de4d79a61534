package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            int
	Env             string
	LogLevel        string
	DatabaseDSN     string
	RedisAddr       string
	JWTSecretKey    string
	JWTRefreshKey   string
	AllowedOrigins  string
	RateLimitWindow time.Duration
	RateLimitMax    int
	CacheTTL        time.Duration
	Version         string
}

// Load reads configuration from the environment. Every key has a default
// except the database DSN and the JWT secret, which the caller must check.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_REFRESH_KEY", "")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_MAX", 200)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("VERSION", "1.0.0")

	cfg := Config{
		Port:            v.GetInt("PORT"),
		Env:             v.GetString("ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		JWTSecretKey:    v.GetString("JWT_SECRET_KEY"),
		JWTRefreshKey:   v.GetString("JWT_REFRESH_KEY"),
		AllowedOrigins:  v.GetString("ALLOWED_ORIGINS"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		Version:         v.GetString("VERSION"),
	}

	// A leaked access token must not be enough to forge refresh tokens, so
	// the refresh key is always distinct from the access key.
	if cfg.JWTRefreshKey == "" {
		cfg.JWTRefreshKey = cfg.JWTSecretKey + "-refresh"
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
