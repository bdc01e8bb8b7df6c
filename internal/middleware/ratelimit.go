package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
)

// RateLimitPerIP applies a token bucket per client IP. It is mounted on the
// credential endpoints (login, reset) to slow down guessing; the rest of the
// API is not limited.
func RateLimitPerIP(rps rate.Limit, burst int) echo.MiddlewareFunc {
	var mu sync.Mutex
	buckets := make(map[string]*rate.Limiter)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			mu.Lock()
			lim, ok := buckets[ip]
			if !ok {
				lim = rate.NewLimiter(rps, burst)
				buckets[ip] = lim
			}
			mu.Unlock()

			if !lim.Allow() {
				return c.JSON(http.StatusTooManyRequests, apperrors.ErrorResponse{
					Error: "too many requests",
					Code:  "RATE_LIMITED",
				})
			}
			return next(c)
		}
	}
}
