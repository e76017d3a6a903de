package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/locvowork/sheetexport/internal/logger"
)

// RequestLogger attaches a logger tagged with the request id, method and path
// to the request context, so code below the handlers logs through zerolog.Ctx.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			fields := map[string]interface{}{
				"method": req.Method,
				"path":   c.Path(),
			}
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				fields["request_id"] = id
			}
			ctx := logger.WithLogger(req.Context(), fields)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
