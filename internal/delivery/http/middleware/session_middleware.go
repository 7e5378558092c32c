package middleware

import (
	"net/http"
	"strconv"

	"userhub/config"
	deliverycontext "userhub/internal/delivery/context"
	domainerrors "userhub/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// SessionMiddleware manages the login cookie. The cookie value is the raw user id.
type SessionMiddleware struct {
	cookieName string
	secure     bool
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(cfg *config.Config) *SessionMiddleware {
	m := &SessionMiddleware{cookieName: config.DefaultCookieName}
	if cfg.Session != nil {
		if cfg.Session.CookieName != "" {
			m.cookieName = cfg.Session.CookieName
		}
		m.secure = cfg.Session.Secure
	}

	return m
}

// RequireUser rejects requests without a valid session cookie with ErrUnauthorized.
// On success the user id is available through deliverycontext.GetUserID.
func (m *SessionMiddleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			return domainerrors.ErrUnauthorized
		}

		userID, err := strconv.ParseInt(cookie.Value, 10, 64)
		if err != nil || userID <= 0 {
			return domainerrors.ErrUnauthorized.WithDetails("malformed session cookie")
		}

		deliverycontext.SetUserID(c, userID)

		return next(c)
	}
}

// Start sets the session cookie for a freshly authenticated user.
func (m *SessionMiddleware) Start(c echo.Context, userID int64) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    strconv.FormatInt(userID, 10),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// End expires the session cookie.
func (m *SessionMiddleware) End(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
