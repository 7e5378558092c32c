package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"userhub/config"
	deliverycontext "userhub/internal/delivery/context"
	httpmiddleware "userhub/internal/delivery/http/middleware"
	"userhub/internal/delivery/http/router"
	"userhub/internal/delivery/http/router/handler"
	"userhub/internal/domain/entity"
	domainerrors "userhub/internal/domain/errors"
	mockUsecase "userhub/internal/mocks/usecase"
	"userhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*echo.Echo, *mockUsecase.MockUserUsecase) {
	t.Helper()

	cfg := &config.Config{
		Session:    &config.SessionConfig{CookieName: "user_id"},
		Pagination: &config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := mockUsecase.NewMockUserUsecase(t)
	session := httpmiddleware.NewSessionMiddleware(cfg)

	e, err := newEcho(HTTPParams{
		Config:          cfg,
		Logger:          logger,
		ErrorMiddleware: httpmiddleware.NewErrorMiddleware(logger),
		RouterParams: router.RouterParams{
			UserHandler:       handler.NewUserHandler(uc, logger, cfg),
			PageHandler:       handler.NewPageHandler(uc, session, logger, cfg),
			SessionMiddleware: session,
		},
	})
	require.NoError(t, err)

	return e, uc
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestServer_LoginThenDashboard(t *testing.T) {
	e, uc := newTestServer(t)

	uc.EXPECT().
		Authenticate(mock.Anything, &usecase.LoginInput{Email: "alice@example.com", Password: "s3cret"}).
		Return(&entity.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)

	form := url.Values{"email": {"alice@example.com"}, "password": {"s3cret"}}
	loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	loginReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	loginRec := serve(e, loginReq)

	require.Equal(t, http.StatusSeeOther, loginRec.Code)
	cookies := loginRec.Result().Cookies()
	require.Len(t, cookies, 1)

	uc.EXPECT().
		ListUsers(mock.Anything, &usecase.ListUsersInput{Offset: 0, Limit: 100}).
		Return([]*entity.User{{ID: 1, Name: "Alice", Email: "alice@example.com"}}, nil)
	uc.EXPECT().CountUsers(mock.Anything).Return(int64(1), nil)

	dashReq := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	dashReq.AddCookie(cookies[0])
	dashRec := serve(e, dashReq)

	assert.Equal(t, http.StatusOK, dashRec.Code)
	assert.Contains(t, dashRec.Body.String(), "alice@example.com")
	assert.NotEmpty(t, dashRec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestServer_DashboardWithoutSession(t *testing.T) {
	e, _ := newTestServer(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized access")
}

func TestServer_RootRedirectsToRegister(t *testing.T) {
	e, _ := newTestServer(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get("Location"))
}

func TestServer_APIErrorsUseEnvelope(t *testing.T) {
	e, uc := newTestServer(t)

	uc.EXPECT().GetUser(mock.Anything, int64(5)).Return(nil, errors.Wrap(domainerrors.ErrUserNotFound, "failed to get user"))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/users/5", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"USER_NOT_FOUND"`)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/users/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"VALIDATION_FAILED"`)
}

func TestServer_CreateUserJSON(t *testing.T) {
	e, uc := newTestServer(t)

	uc.EXPECT().
		RegisterUser(mock.Anything, &usecase.RegisterUserInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret"}).
		Return(&entity.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"s3cret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)
}

func TestServer_UnknownPageRendersErrorPage(t *testing.T) {
	e, _ := newTestServer(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")
}
