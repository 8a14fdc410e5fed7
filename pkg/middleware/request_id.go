package middleware

import (
	"context"

	"repair-system/pkg/contextkeys"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestID присваивает каждому запросу uuid и отдаёт его в заголовке ответа.
// Логгеры подсистем берут его из контекста для сквозной трассировки.
func RequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(c.Request().Context(), contextkeys.RequestIDKey, requestID)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set("X-Request-ID", requestID)

		return next(c)
	}
}
