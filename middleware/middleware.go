package middleware

import "net/http"

// Middleware is a single stage of the client pipeline.
//
// Handle may inspect or replace the request, produce a response itself, or
// forward to the remaining stages through next. Cancellation and deadlines
// travel on req.Context().
type Middleware interface {
	Handle(req *http.Request, ext *Extensions, next Next) (*http.Response, error)
}

// Func adapts an ordinary function to the Middleware interface.
type Func func(req *http.Request, ext *Extensions, next Next) (*http.Response, error)

// Handle calls f(req, ext, next).
func (f Func) Handle(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
	return f(req, ext, next)
}

// Next is the continuation handed to a stage: the stages registered after it
// followed by the underlying http.Client.
//
// Next is a small value and may be run more than once; every run starts from
// the same position in the chain.
type Next struct {
	client      *http.Client
	middlewares []Middleware
}

// Run executes the remaining stages, ending with the http.Client.
func (n Next) Run(req *http.Request, ext *Extensions) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if len(n.middlewares) == 0 {
		return n.send(req)
	}
	return n.middlewares[0].Handle(req, ext, Next{
		client:      n.client,
		middlewares: n.middlewares[1:],
	})
}

// Remaining returns the number of stages left before the http.Client.
func (n Next) Remaining() int {
	return len(n.middlewares)
}

// send performs the terminal round trip.
func (n Next) send(req *http.Request) (*http.Response, error) {
	client := n.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, NewTransportError(req.Context(), err)
	}
	return resp, nil
}

// NewNext returns a continuation over the given stages ending in client.
// It is mostly useful for exercising a single stage in isolation.
func NewNext(client *http.Client, middlewares ...Middleware) Next {
	return Next{client: client, middlewares: middlewares}
}
