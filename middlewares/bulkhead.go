package middlewares

import (
	"net/http"

	"github.com/kbukum/reqmw/middleware"
	"github.com/kbukum/reqmw/resilience"
)

// Bulkhead is a stage that caps the number of requests in flight. A slot is
// held until the rest of the chain returns; response bodies are not counted.
type Bulkhead struct {
	bulkhead *resilience.Bulkhead
}

// NewBulkhead returns a bulkhead stage.
func NewBulkhead(cfg resilience.BulkheadConfig) *Bulkhead {
	return &Bulkhead{bulkhead: resilience.NewBulkhead(cfg)}
}

// Limiter exposes the underlying bulkhead.
func (m *Bulkhead) Limiter() *resilience.Bulkhead { return m.bulkhead }

// Handle holds a bulkhead slot for the rest of the chain.
func (m *Bulkhead) Handle(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
	if err := m.bulkhead.Acquire(req.Context()); err != nil {
		return nil, middleware.NewMiddlewareError(StageBulkhead, err)
	}
	defer m.bulkhead.Release()
	return next.Run(req, ext)
}
