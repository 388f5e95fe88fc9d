package middlewares

import (
	"errors"
	"net/http"
	"time"

	"github.com/kbukum/reqmw/middleware"
	"github.com/kbukum/reqmw/observability"
)

// Metrics returns a stage that records request count, duration and in-flight
// requests. A nil Metrics makes the stage a pass-through.
func Metrics(m *observability.Metrics) middleware.Middleware {
	return middleware.Func(func(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
		if m == nil {
			return next.Run(req, ext)
		}

		ctx := req.Context()
		host, method := req.URL.Hostname(), methodOf(req)
		m.RecordRequestStart(ctx, host, method)
		start := time.Now()

		resp, err := next.Run(req, ext)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		m.RecordRequestEnd(ctx, host, method, status, time.Since(start))
		if err != nil {
			m.RecordError(ctx, host, errorType(err))
		}
		return resp, err
	})
}

// errorType names the failure class for the error.type attribute.
func errorType(err error) string {
	var e *middleware.Error
	if !errors.As(err, &e) {
		return "_OTHER"
	}
	if e.Code == middleware.ErrCodeMiddleware && e.Stage != "" {
		return e.Stage
	}
	return e.Code.String()
}
