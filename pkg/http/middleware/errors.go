package middleware

import "github.com/labstack/echo/v4"

// HandleErrors renders a returned error through the echo error handler so
// outer middleware observe the final status.
func HandleErrors() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		}
	}
}
