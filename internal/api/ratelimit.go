package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/zoneinapp/zonein-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// rate: number of requests allowed per interval
// interval: time period for rate (e.g., time.Minute)
// burst: maximum burst size
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// checkAuthRateLimit applies the per-IP limit on the OAuth endpoints. These
// are the only unauthenticated endpoints that do real work, so they get a
// tighter budget than the rest of the API.
func (s *Server) checkAuthRateLimit(xForwardedFor, xRealIP string) error {
	key := extractIP(xForwardedFor, xRealIP)
	if key == "" {
		key = "unknown"
	}

	if !s.authRateLimiter.Allow(key) {
		s.logger.Warn("Rate limit exceeded", "ip", key)
		return huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}
	return nil
}
