package middlewares

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/kbukum/reqmw/logger"
	"github.com/kbukum/reqmw/middleware"
)

// upstream is a terminal stage standing in for the network. It never calls
// next.
type upstream struct {
	mu     sync.Mutex
	calls  int
	last   *http.Request
	status int
	header http.Header
	body   string
	err    error
}

func newUpstream(status int) *upstream {
	return &upstream{status: status, header: http.Header{}}
}

func (u *upstream) Handle(req *http.Request, _ *middleware.Extensions, _ middleware.Next) (*http.Response, error) {
	u.mu.Lock()
	u.calls++
	u.last = req
	u.mu.Unlock()
	if u.err != nil {
		return nil, u.err
	}
	return &http.Response{
		StatusCode: u.status,
		Header:     u.header.Clone(),
		Body:       io.NopCloser(strings.NewReader(u.body)),
		Request:    req,
	}, nil
}

func (u *upstream) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

func (u *upstream) Last() *http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last
}

func run(req *http.Request, stages ...middleware.Middleware) (*http.Response, error) {
	return middleware.NewNext(nil, stages...).Run(req, middleware.NewExtensions())
}

func newRequest(t *testing.T, method, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func bufferLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.New(&logger.Config{Level: "debug", Format: "json", Writer: &buf}, ""), &buf
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}
