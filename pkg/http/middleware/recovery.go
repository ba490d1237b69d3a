package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "SalesCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover converts a handler panic into a 500 handled by the echo error
// handler, so it is rendered like any other error.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				l.Error("panic recovered",
					applogger.String("route", c.Path()),
					applogger.Error(perr),
					applogger.String("stack", string(debug.Stack())),
				)
				err = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(perr)
			}()
			return next(c)
		}
	}
}
