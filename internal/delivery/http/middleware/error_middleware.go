package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	deliverycontext "userhub/internal/delivery/context"
	"userhub/internal/delivery/http/render"
	"userhub/internal/delivery/http/response"
	domainerrors "userhub/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// failure is the status, code and message resolved from any handler error.
type failure struct {
	status  int
	code    string
	message string
	details string
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler.
// API requests get the JSON envelope, browser requests get error.html.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	f := m.resolve(err, c)

	if wantsJSON(c) {
		_ = response.Error(c, f.status, f.code, f.message, f.details)

		return
	}

	page := render.Page{Detail: f.message}
	if userID, ok := deliverycontext.GetUserID(c); ok {
		page.SessionUserID = userID
	}
	if renderErr := c.Render(f.status, "error.html", page); renderErr != nil {
		m.log(c).Error("Failed to render error page", slog.Any("error", renderErr))
		_ = c.String(f.status, f.message)
	}
}

func (m *ErrorMiddleware) resolve(err error, c echo.Context) failure {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.log(c).Error("Request failed",
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
				slog.String("method", c.Request().Method),
			)
		}

		return failure{
			status:  appErr.HTTPCode(),
			code:    appErr.ErrorCode(),
			message: appErr.Message(),
			details: appErr.Details(),
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		return failure{status: httpErr.Code, code: "HTTP_ERROR", message: message}
	}

	// Unknown errors are logged but never echoed to the client.
	m.log(c).Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	return failure{
		status:  http.StatusInternalServerError,
		code:    domainerrors.ErrInternalError.ErrorCode(),
		message: domainerrors.ErrInternalError.Message(),
	}
}

func (m *ErrorMiddleware) log(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
}

func wantsJSON(c echo.Context) bool {
	path := c.Request().URL.Path
	if path == "/users" || strings.HasPrefix(path, "/users/") || path == "/health" {
		return true
	}

	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
