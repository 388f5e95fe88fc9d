package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/reqmw/logger"
	"github.com/kbukum/reqmw/middleware"
)

// HeaderRequestID carries the request id.
const HeaderRequestID = "X-Request-Id"

// RequestIDValue is the Extensions entry holding the id sent upstream.
type RequestIDValue string

// RequestID sets X-Request-Id to a fresh UUID unless the caller already set
// one. The id is stored in Extensions and on the request context, where the
// logging stage picks it up.
func RequestID() middleware.Middleware {
	return middleware.Func(func(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
		id := req.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		middleware.Insert(ext, RequestIDValue(id))

		tagged := req.Clone(logger.ContextWithRequestID(req.Context(), id))
		tagged.Header.Set(HeaderRequestID, id)
		return next.Run(tagged, ext)
	})
}
