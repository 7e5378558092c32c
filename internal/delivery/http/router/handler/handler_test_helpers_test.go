package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"userhub/config"
	"userhub/internal/delivery/http/middleware"
	"userhub/internal/delivery/http/render"
	"userhub/internal/delivery/http/validator"
	mockUsecase "userhub/internal/mocks/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type handlerFixtures struct {
	echo    *echo.Echo
	uc      *mockUsecase.MockUserUsecase
	users   *UserHandler
	pages   *PageHandler
	session *middleware.SessionMiddleware
}

func newTestConfig() *config.Config {
	return &config.Config{
		Session:    &config.SessionConfig{CookieName: "user_id"},
		Pagination: &config.PaginationConfig{DefaultLimit: 10, MaxLimit: 50},
	}
}

func createTestHandlers(t *testing.T) handlerFixtures {
	t.Helper()

	renderer, err := render.New()
	require.NoError(t, err)

	e := echo.New()
	e.Validator = validator.New()
	e.Renderer = renderer

	cfg := newTestConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := mockUsecase.NewMockUserUsecase(t)
	session := middleware.NewSessionMiddleware(cfg)

	return handlerFixtures{
		echo:    e,
		uc:      uc,
		users:   NewUserHandler(uc, logger, cfg),
		pages:   NewPageHandler(uc, session, logger, cfg),
		session: session,
	}
}

func (fx handlerFixtures) jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return fx.echo.NewContext(req, rec), rec
}

func (fx handlerFixtures) formContext(method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	return fx.echo.NewContext(req, rec), rec
}

func (fx handlerFixtures) getContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	return fx.echo.NewContext(req, rec), rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}

	return nil
}
