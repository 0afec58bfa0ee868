package middleware

import (
	"fmt"
	"time"

	"github.com/ejtx16/shrink-iq-web-app/internal/logger"
	"github.com/ejtx16/shrink-iq-web-app/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter implements fixed-window counters in Redis so limits hold
// across replicas. Counters are keyed by user id when authenticated,
// else by client IP.
type RateLimiter struct {
	client  *redis.Client
	enabled bool
}

func NewRateLimiter(client *redis.Client, enabled bool) *RateLimiter {
	return &RateLimiter{client: client, enabled: enabled}
}

// Limit allows max requests per window for the named endpoint group.
// Redis failures fail open: throttling is protection, not a contract.
func (rl *RateLimiter) Limit(name string, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.enabled {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if userID, ok := UserID(c); ok {
			subject = userID.String()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", name, subject)
		ctx := c.Request.Context()

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			logger.FromContext(ctx).Warn("Rate limiter unavailable, allowing request",
				"limiter", name,
				"error", err,
			)
			c.Next()
			return
		}

		if count == 1 {
			rl.client.Expire(ctx, key, window)
		}

		if count > max {
			logger.FromContext(ctx).Warn("Rate limit exceeded",
				"limiter", name,
				"subject", subject,
				"count", count,
			)
			response.TooManyRequests(c, "Too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
