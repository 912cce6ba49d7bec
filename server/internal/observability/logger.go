// Package observability provides the request logging and HTTP metrics
// middleware shared by every route.
package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderRequestID is the response header carrying the generated request id.
const HeaderRequestID = "X-Request-Id"

type ctxKey struct{}

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// LoggerFromContext returns the request-scoped logger, or the default logger
// when the context carries none.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// RequestLogger tags every request with a generated id, exposes a
// request-scoped logger on the request context and writes one completion
// line per request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := uuid.New().String()
			c.Response().Header().Set(HeaderRequestID, requestID)

			req := c.Request()
			logger := slog.Default().With(slog.String("request_id", requestID))
			c.SetRequest(req.WithContext(WithLogger(req.Context(), logger)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("request completed",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", c.Response().Status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			return err
		}
	}
}
