package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/kenobul/portfolio/internal/config"
	httpmiddleware "github.com/kenobul/portfolio/internal/http/middleware"
	"github.com/kenobul/portfolio/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildContactLimiter returns the Redis-backed limiter when a client is
// available and an in-process one otherwise.
func BuildContactLimiter(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) httpmiddleware.Limiter {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient != nil {
		logger.Info("contact rate limiter: redis", "limit", cfg.ContactRateLimit, "window", cfg.ContactRateWindow.String())
		return httpmiddleware.NewRedisLimiter(redisClient, cfg.ContactRateLimit, cfg.ContactRateWindow)
	}
	logger.Info("contact rate limiter: memory", "limit", cfg.ContactRateLimit, "window", cfg.ContactRateWindow.String())
	return httpmiddleware.NewMemoryLimiter(cfg.ContactRateLimit, cfg.ContactRateWindow)
}
