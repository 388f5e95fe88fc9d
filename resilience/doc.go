// Package resilience provides the fault-tolerance primitives behind the
// pipeline's protective stages.
//
// This package includes:
//   - CircuitBreaker: fails fast while an upstream is unhealthy
//   - RateLimiter: token bucket that paces outgoing requests
//   - Bulkhead: caps the number of concurrent in-flight requests
//
// Each primitive is usable on its own and is what the middlewares package
// wraps as a pipeline stage:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("billing-api"))
//	if err := cb.Allow(); err != nil {
//	    return nil, err
//	}
//	resp, err := next.Run(req, ext)
//	cb.Record(err)
package resilience
