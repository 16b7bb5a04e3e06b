package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
	"github.com/betosaco/soulpath-sub003/pkg/response"
)

// RateLimitConfig bounds requests per client and route in fixed windows.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	Prefix string
}

// RateLimit throttles each client IP per route using a Redis counter. Without
// a client, or when Redis fails, requests pass through.
func RateLimit(client *redis.Client, cfg RateLimitConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Window < time.Second {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}
	return func(c *gin.Context) {
		if client == nil || cfg.Limit <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		window := time.Now().Unix() / int64(cfg.Window/time.Second)
		key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, route, c.ClientIP(), window)

		count, err := incrementWindow(c.Request.Context(), client, key, cfg.Window)
		if err != nil {
			logger.Warn("rate limit check skipped", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		remaining := cfg.Limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > cfg.Limit {
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

func incrementWindow(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, error) {
	pipe := client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
