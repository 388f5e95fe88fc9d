package middlewares

import (
	"fmt"
	"net/http"

	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/reqmw/middleware"
)

// Headers returns a stage that adds default headers to every request. Headers
// already present on the request win. Names and values are checked against
// the HTTP grammar up front.
func Headers(defaults map[string]string) (middleware.Middleware, error) {
	canonical := make(http.Header, len(defaults))
	for name, value := range defaults {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("middlewares: invalid header name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("middlewares: invalid value for header %q", name)
		}
		canonical.Set(name, value)
	}

	return middleware.Func(func(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
		var out *http.Request
		for name, values := range canonical {
			if _, ok := req.Header[name]; ok {
				continue
			}
			if out == nil {
				out = req.Clone(req.Context())
			}
			out.Header[name] = append([]string(nil), values...)
		}
		if out == nil {
			out = req
		}
		return next.Run(out, ext)
	}), nil
}
