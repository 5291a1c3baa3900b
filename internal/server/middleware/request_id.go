package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
)

// XRequestID is read from and echoed back on every response.
const XRequestID = "x-request-id"

const requestIDKey = "request_id"

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

// RequestID keeps a caller supplied x-request-id or assigns a UUID, and
// attaches it to the echo context, the response and the request's log fields.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(XRequestID)
			if id == "" {
				id = uuid.NewString()
			}

			c.Set(requestIDKey, id)
			c.SetRequest(req.WithContext(logctx.With(req.Context(), requestIDKey, id)))
			c.Response().Header().Set(XRequestID, id)
			return next(c)
		}
	}
}
