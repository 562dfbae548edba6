package middleware

import (
	"net/http"
	"time"

	"jasahub/internal/infrastructure/ratelimit"
	"jasahub/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RateLimit returns Echo middleware limiting a named action per caller.
// Authenticated callers are keyed by uid, everything else by IP. Disputes
// and messages are cheap to spam, so both write paths sit behind this.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if uid, ok := c.Get("uid").(string); ok && uid != "" {
				key = uid
			}

			allowed, waitTime := limiter.Allow(key, action)
			if !allowed {
				logger.Warn("Rate limit exceeded: key=%s action=%s retry in %v", key, action, waitTime)
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"retry_after": int(waitTime.Seconds()),
				})
			}

			return next(c)
		}
	}
}

// Shared limiters for the dispute surface
var (
	// Filing disputes: 5 per 10 minutes per user
	FileDisputeLimiter = ratelimit.NewRateLimiter()

	// Posting messages: refilled per minute
	MessageLimiter = ratelimit.NewRateLimiter()
)

func FileDisputeRateLimit() echo.MiddlewareFunc {
	FileDisputeLimiter.Configure("file_dispute", 5, 5, 10*time.Minute)
	return RateLimit(FileDisputeLimiter, "file_dispute")
}

func MessageRateLimit() echo.MiddlewareFunc {
	MessageLimiter.Configure("post_message", 30, 30, time.Minute)
	return RateLimit(MessageLimiter, "post_message")
}
