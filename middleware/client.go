package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// ErrNoResponse is returned when the chain completes with neither a response
// nor an error.
var ErrNoResponse = errors.New("middleware: chain returned no response")

// Initialiser prepares the Extensions of every request before the first stage
// runs.
type Initialiser interface {
	Init(req *http.Request, ext *Extensions)
}

// InitialiserFunc adapts a function to the Initialiser interface.
type InitialiserFunc func(req *http.Request, ext *Extensions)

// Init calls f(req, ext).
func (f InitialiserFunc) Init(req *http.Request, ext *Extensions) { f(req, ext) }

// Extension returns an Initialiser that inserts v into every request's
// Extensions.
func Extension[T any](v T) Initialiser {
	return InitialiserFunc(func(_ *http.Request, ext *Extensions) {
		Insert(ext, v)
	})
}

// ClientBuilder assembles a Client from an http.Client and an ordered list of
// stages.
type ClientBuilder struct {
	client       *http.Client
	middlewares  []Middleware
	initialisers []Initialiser
}

// NewClientBuilder starts a builder over client. A nil client uses
// http.DefaultClient.
func NewClientBuilder(client *http.Client) *ClientBuilder {
	if client == nil {
		client = http.DefaultClient
	}
	return &ClientBuilder{client: client}
}

// With appends a stage. Stages run in the order they are added; the first one
// added is the outermost.
func (b *ClientBuilder) With(m Middleware) *ClientBuilder {
	if m != nil {
		b.middlewares = append(b.middlewares, m)
	}
	return b
}

// WithAll appends several stages in order.
func (b *ClientBuilder) WithAll(ms ...Middleware) *ClientBuilder {
	for _, m := range ms {
		b.With(m)
	}
	return b
}

// WithInit appends an initialiser.
func (b *ClientBuilder) WithInit(i Initialiser) *ClientBuilder {
	if i != nil {
		b.initialisers = append(b.initialisers, i)
	}
	return b
}

// Build returns the assembled Client. The builder may be reused afterwards;
// later additions do not affect clients already built.
func (b *ClientBuilder) Build() *Client {
	return &Client{
		client:       b.client,
		middlewares:  append([]Middleware(nil), b.middlewares...),
		initialisers: append([]Initialiser(nil), b.initialisers...),
	}
}

// Client sends requests through a fixed chain of stages. It is immutable and
// safe for concurrent use.
type Client struct {
	client       *http.Client
	middlewares  []Middleware
	initialisers []Initialiser
}

// Do sends req through the chain with fresh Extensions.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithExtensions(req, NewExtensions())
}

// DoWithExtensions sends req through the chain using the caller's Extensions.
func (c *Client) DoWithExtensions(req *http.Request, ext *Extensions) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if ext == nil {
		ext = NewExtensions()
	}
	for _, i := range c.initialisers {
		i.Init(req, ext)
	}

	resp, err := Next{client: c.client, middlewares: c.middlewares}.Run(req, ext)
	if resp == nil && err == nil {
		return nil, ErrNoResponse
	}
	return resp, err
}

// Get issues a GET to url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post issues a POST to url with the given content type and body.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(req)
}

// Middlewares returns the number of stages in the chain.
func (c *Client) Middlewares() int {
	return len(c.middlewares)
}

// Unwrap returns the underlying *http.Client used for the terminal round trip.
func (c *Client) Unwrap() *http.Client {
	return c.client
}

// Transport returns an http.RoundTripper that sends requests through the chain.
func (c *Client) Transport() http.RoundTripper {
	return roundTripper{c: c}
}

// HTTPClient returns an *http.Client whose transport is the chain, for code
// that only accepts the standard client.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Transport: c.Transport()}
}

type roundTripper struct {
	c *Client
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.c.Do(req)
}
