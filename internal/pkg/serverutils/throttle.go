package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// ThrottleMiddleware enforces a fixed-window request rate per authenticated
// user, falling back to the client IP before authentication. Counters live
// in an in-process cache keyed by principal and window bucket.
func ThrottleMiddleware(counters *cache.Cache, limit int, window time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if limit <= 0 {
			return ctx.Next()
		}

		who := ctx.IP()
		if p, ok := ctx.Locals(PrincipalLocal).(Principal); ok {
			who = p.Username
		}
		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("%s:%d", who, bucket)

		// Add is a no-op when the key exists, so the counter keeps its
		// original window expiry.
		_ = counters.Add(key, int64(0), window)
		n, err := counters.IncrementInt64(key, 1)
		if err != nil {
			return ctx.Next()
		}

		if n > int64(limit) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "throttled",
				"message": "request was throttled",
			})
		}
		return ctx.Next()
	}
}
