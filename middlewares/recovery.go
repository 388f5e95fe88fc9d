package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/reqmw/logger"
	"github.com/kbukum/reqmw/middleware"
)

// ErrPanic is wrapped by the error Recovery returns after a panic.
var ErrPanic = errors.New("middlewares: panic in pipeline")

// Recovery returns a stage that turns a panic in any later stage into a
// middleware error and logs the stack. A nil logger is looked up with
// logger.Get(StageRecovery).
func Recovery(log *logger.Logger) middleware.Middleware {
	return middleware.Func(func(req *http.Request, ext *middleware.Extensions, next middleware.Next) (resp *http.Response, err error) {
		defer func() {
			if r := recover(); r != nil {
				l := log
				if l == nil {
					l = logger.Get(StageRecovery)
				}
				fields := logger.RequestFields(req)
				fields[logger.FieldError] = fmt.Sprintf("%v", r)
				fields["stack"] = string(debug.Stack())
				l.WithContext(req.Context()).Error("Panic recovered", fields)
				resp = nil
				err = middleware.NewMiddlewareError(StageRecovery, fmt.Errorf("%w: %v", ErrPanic, r))
			}
		}()
		return next.Run(req, ext)
	})
}
