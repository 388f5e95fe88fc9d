package middlewares

import (
	"fmt"
	"net/http"

	"github.com/kbukum/reqmw/middleware"
	"github.com/kbukum/reqmw/resilience"
)

// CircuitBreaker is a stage that stops calling an upstream after repeated
// failures. A failure is a 5xx response or any error the breaker's IsFailure
// accepts; by default the caller cancelling its own request does not count.
type CircuitBreaker struct {
	breaker *resilience.CircuitBreaker
}

// NewCircuitBreaker returns a circuit breaker stage.
func NewCircuitBreaker(cfg resilience.CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{breaker: resilience.NewCircuitBreaker(cfg)}
}

// Breaker exposes the underlying circuit breaker.
func (m *CircuitBreaker) Breaker() *resilience.CircuitBreaker { return m.breaker }

// Handle rejects the request with ErrCircuitOpen while the circuit is open
// and otherwise records the outcome of the rest of the chain. A panic further
// down is recorded as a failure before it keeps unwinding, so a half-open
// probe slot is never leaked.
func (m *CircuitBreaker) Handle(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
	if err := m.breaker.Allow(); err != nil {
		return nil, middleware.NewMiddlewareError(StageCircuitBreaker, err)
	}

	returned := false
	defer func() {
		if !returned {
			m.breaker.Record(ErrPanic)
		}
	}()

	resp, err := next.Run(req, ext)
	returned = true
	switch {
	case err != nil:
		m.breaker.Record(err)
	case resp != nil && resp.StatusCode >= http.StatusInternalServerError:
		m.breaker.Record(fmt.Errorf("upstream status %d", resp.StatusCode))
	default:
		m.breaker.Record(nil)
	}
	return resp, err
}
