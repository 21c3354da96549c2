package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "ZoneWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a handler panic into a 500 in the API envelope shape
// ({"status":500,"message":...}) and logs the stack with the route.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				l.Error("api handler panic",
					applogger.String("route", c.Path()),
					applogger.String("query", c.QueryString()),
					applogger.String("panic", fmt.Sprint(r)),
					applogger.String("stack", string(debug.Stack())))
				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"status":  http.StatusInternalServerError,
					"message": "internal error",
				})
			}()
			return next(c)
		}
	}
}
