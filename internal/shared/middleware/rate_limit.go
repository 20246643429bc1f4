package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/response"
	"tours-backend/pkg/cache"
)

const rateLimitKeyPrefix = "rate-limit:"

// RateLimit allows max requests per client IP in each fixed window, counted
// in the shared cache. When the cache is unreachable requests are let through.
func RateLimit(store cache.Cache, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := rateLimitKeyPrefix + clientIP(c)

		count, err := store.Increment(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			if err := store.Expire(ctx, key, window); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to set rate limit window")
			}
		}

		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(max) {
			if ttl, err := store.TTL(ctx, key); err == nil && ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			}
			response.Fail(c, apperror.TooManyRequests("Too many requests from this IP, please try again in an hour!"))
			return
		}

		c.Next()
	}
}
