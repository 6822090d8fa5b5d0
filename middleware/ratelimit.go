package middleware

import (
	"context"
	"strconv"
	"time"

	"freight-app/cache"

	"github.com/gofiber/fiber/v2"
)

// LoginRateLimiter throttles a single IP on the login route. Counters live in
// the cache so all API instances share the same window.
func LoginRateLimiter(client cache.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "rate-limit:login:" + c.IP()

		n, err := client.Incr(context.Background(), key, window)
		if err != nil {
			// Fail open when the cache is unreachable
			return c.Next()
		}

		if n > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many login attempts, try again later",
			})
		}

		remaining := int64(limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		return c.Next()
	}
}
