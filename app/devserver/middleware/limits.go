package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jellydator/ttlcache/v3"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

// RateLimit allows perMinute requests per client IP with the given burst.
// Idle buckets expire after five minutes.
func RateLimit(perMinute, burst int) fiber.Handler {
	buckets := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](5 * time.Minute),
	)

	var mu sync.Mutex

	return func(c *fiber.Ctx) error {
		ip := c.IP()

		mu.Lock()
		var limiter *rate.Limiter
		if item := buckets.Get(ip); item != nil {
			limiter = item.Value()
		} else {
			limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
			buckets.Set(ip, limiter, ttlcache.DefaultTTL)
		}
		mu.Unlock()

		if !limiter.Allow() {
			return oops.
				With("status_code", http.StatusTooManyRequests).
				Public("Too many requests").
				New("Too many requests")
		}

		return c.Next()
	}
}
