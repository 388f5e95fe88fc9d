package middlewares

import (
	"net/http"
	"time"

	"github.com/kbukum/reqmw/logger"
	"github.com/kbukum/reqmw/middleware"
)

// Logging returns a stage that logs every request with method, url, status,
// and duration. A nil logger is looked up with logger.Get(StageLogging).
func Logging(log *logger.Logger) middleware.Middleware {
	return middleware.Func(func(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
		start := time.Now()
		resp, err := next.Run(req, ext)
		duration := time.Since(start)

		l := log
		if l == nil {
			l = logger.Get(StageLogging)
		}
		l = l.WithContext(req.Context())

		fields := logger.WithOutcome(logger.RequestFields(req), resp, err, duration)
		switch {
		case err != nil:
			l.Error("Request failed", fields)
		case resp != nil:
			logByStatus(l, fields, resp.StatusCode)
		}
		return resp, err
	})
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
