package middlewares

import (
	"net/http"

	"github.com/kbukum/reqmw/middleware"
	"github.com/kbukum/reqmw/resilience"
)

// RateLimitConfig configures the client-side rate limiting stage.
type RateLimitConfig struct {
	resilience.RateLimiterConfig `yaml:",inline" mapstructure:",squash"`
	// Reject fails requests with resilience.ErrRateLimited instead of waiting
	// for a token.
	Reject bool `yaml:"reject" mapstructure:"reject"`
}

// RateLimiter is a stage that paces requests through a shared token bucket.
type RateLimiter struct {
	limiter *resilience.RateLimiter
	reject  bool
}

// RateLimit returns a rate limiting stage. Waiting honours the request
// context, so a cancelled or expired request stops waiting.
func RateLimit(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: resilience.NewRateLimiter(cfg.RateLimiterConfig),
		reject:  cfg.Reject,
	}
}

// Limiter exposes the underlying token bucket.
func (m *RateLimiter) Limiter() *resilience.RateLimiter { return m.limiter }

// Handle takes a token before forwarding the request, waiting for one or
// failing with ErrRateLimited depending on the Reject setting.
func (m *RateLimiter) Handle(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
	if m.reject {
		if !m.limiter.Allow() {
			return nil, middleware.NewMiddlewareError(StageRateLimit, resilience.ErrRateLimited)
		}
	} else if err := m.limiter.Wait(req.Context()); err != nil {
		return nil, middleware.NewMiddlewareError(StageRateLimit, err)
	}
	return next.Run(req, ext)
}
