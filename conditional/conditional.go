package conditional

import (
	"net/http"

	"github.com/kbukum/reqmw/middleware"
)

// Middleware runs inner for requests where its condition holds and passes all
// other requests directly to the next stage.
//
// A Middleware is immutable after construction. It is safe for concurrent use
// as long as inner and the condition are.
type Middleware[T middleware.Middleware] struct {
	inner     T
	condition Condition
}

// compile-time assertion
var _ middleware.Middleware = (*Middleware[middleware.Func])(nil)

// New wraps inner so that it only runs when condition reports true.
// The condition is called once per request. New panics if condition is nil.
func New[T middleware.Middleware](inner T, condition Condition) *Middleware[T] {
	if condition == nil {
		panic("conditional: nil condition")
	}
	return &Middleware[T]{inner: inner, condition: condition}
}

// Handle evaluates the condition and dispatches to either the wrapped stage or
// the rest of the chain. Results from either path are returned unchanged.
func (m *Middleware[T]) Handle(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
	if m.condition(req) {
		return m.inner.Handle(req, ext, next)
	}
	return next.Run(req, ext)
}

// Inner returns the wrapped stage.
func (m *Middleware[T]) Inner() T {
	return m.inner
}
