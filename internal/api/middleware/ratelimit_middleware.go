package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware is a fixed-window limiter backed by Redis. When Redis
// is unreachable the request is allowed through; a broken limiter must not
// take the API down with it.
type RateLimitMiddleware struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimitMiddleware(rdb *redis.Client, limit int64, window time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{rdb: rdb, limit: limit, window: window}
}

func (m *RateLimitMiddleware) RateLimit(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, c.IP(), time.Now().Unix()/int64(m.window.Seconds()))

		count, err := m.rdb.Incr(c.Context(), key).Result()
		if err != nil {
			slog.Info(err.Error())
			return c.Next()
		}
		if count == 1 {
			if err := m.rdb.Expire(c.Context(), key, m.window).Err(); err != nil {
				slog.Info(err.Error())
			}
		}

		if count > m.limit {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded",
			})
		}

		return c.Next()
	}
}
