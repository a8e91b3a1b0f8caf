package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maillots/storefront/internal/infrastructure/logger"
	"github.com/maillots/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RateLimiter counts requests per key
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit answers 429 once limiter refuses the key of a request. A
// limiter error lets the request through.
func RateLimit(limiter RateLimiter, keyFunc func(*gin.Context) string, retryAfter string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.GetGinLogger(c).Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			if retryAfter != "" {
				c.Header("Retry-After", retryAfter)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many attempts, try again later",
				c.GetString("request_id"),
			))
			return
		}
		c.Next()
	}
}

// ThrottleByIP limits requests per client IP; retryAfterSeconds goes into
// the Retry-After header of refusals
func ThrottleByIP(limiter RateLimiter, retryAfterSeconds int) gin.HandlerFunc {
	return RateLimit(limiter, func(c *gin.Context) string { return c.ClientIP() }, strconv.Itoa(retryAfterSeconds))
}
