// Package context carries per-request values (request id, logger and the
// logged-in user id) between echo middleware, handlers and the layers below.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	keyRequestID ContextKey = "request_id"
	keyLogger    ContextKey = "logger"
	keyUserID    ContextKey = "user_id"

	// HeaderXRequestID is the HTTP header name for request ID.
	HeaderXRequestID = "X-Request-Id"
)

// BindRequest stores the request id on the echo context and puts the id and
// a logger tagged with it into the request context.
func BindRequest(c echo.Context, requestID string, logger *slog.Logger) {
	c.Set(string(keyRequestID), requestID)

	ctx := context.WithValue(c.Request().Context(), keyRequestID, requestID)
	ctx = context.WithValue(ctx, keyLogger, logger.With(slog.String("request_id", requestID)))
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetRequestID returns the id bound by BindRequest, or "" outside a request.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(string(keyRequestID)).(string)

	return id
}

// GetRequestIDFromContext is GetRequestID for layers that only see context.Context.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)

	return id
}

// SetUserID records the logged-in user on the echo context and on the request
// context, so loggers obtained further down carry the user id.
func SetUserID(c echo.Context, userID int64) {
	c.Set(string(keyUserID), userID)
	c.SetRequest(c.Request().WithContext(context.WithValue(c.Request().Context(), keyUserID, userID)))
}

// GetUserID returns the logged-in user id set by the session middleware.
func GetUserID(c echo.Context) (int64, bool) {
	userID, ok := c.Get(string(keyUserID)).(int64)

	return userID, ok
}

// GetLoggerOrDefault returns the request-scoped logger, or fallback when the
// context has none. A session user id in the context is added as user_id.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	logger, ok := ctx.Value(keyLogger).(*slog.Logger)
	if !ok {
		logger = fallback
	}

	if userID, ok := ctx.Value(keyUserID).(int64); ok {
		logger = logger.With(slog.Int64("user_id", userID))
	}

	return logger
}
