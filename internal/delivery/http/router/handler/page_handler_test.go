package handler

import (
	"net/http"
	"net/url"
	"testing"

	deliverycontext "userhub/internal/delivery/context"
	"userhub/internal/domain/entity"
	domainerrors "userhub/internal/domain/errors"
	"userhub/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPageHandler_Root(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.getContext("/")

	require.NoError(t, fx.pages.Root(c))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get("Location"))
}

func TestPageHandler_ShowRegisterForm(t *testing.T) {
	for _, name := range []string{"register.html", "signup.html"} {
		t.Run(name, func(t *testing.T) {
			fx := createTestHandlers(t)
			c, rec := fx.getContext("/")

			require.NoError(t, fx.pages.ShowRegisterForm(name)(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `name="password"`)
		})
	}
}

func TestPageHandler_SubmitRegisterForm_Success(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.formContext(http.MethodPost, "/register", url.Values{
		"name":     {"Alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret"},
	})

	fx.uc.EXPECT().
		RegisterUser(mock.Anything, &usecase.RegisterUserInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret"}).
		Return(&entity.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)

	require.NoError(t, fx.pages.SubmitRegisterForm("register.html")(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestPageHandler_SubmitRegisterForm_DuplicateEmail(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.formContext(http.MethodPost, "/signup", url.Values{
		"name":     {"Bob"},
		"email":    {"alice@example.com"},
		"password": {"other"},
	})

	fx.uc.EXPECT().
		RegisterUser(mock.Anything, mock.AnythingOfType("*usecase.RegisterUserInput")).
		Return(nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "failed to register user"))

	require.NoError(t, fx.pages.SubmitRegisterForm("signup.html")(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
	assert.Contains(t, rec.Body.String(), `value="Bob"`)
	assert.NotContains(t, rec.Body.String(), "other")
}

func TestPageHandler_SubmitRegisterForm_InvalidEmail(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.formContext(http.MethodPost, "/register", url.Values{
		"name":     {"Alice"},
		"email":    {"nope"},
		"password": {"s3cret"},
	})

	require.NoError(t, fx.pages.SubmitRegisterForm("register.html")(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "valid email")
	fx.uc.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
}

func TestPageHandler_SubmitLoginForm_Success(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.formContext(http.MethodPost, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"s3cret"},
	})

	fx.uc.EXPECT().
		Authenticate(mock.Anything, &usecase.LoginInput{Email: "alice@example.com", Password: "s3cret"}).
		Return(&entity.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)

	require.NoError(t, fx.pages.SubmitLoginForm(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookie := findCookie(rec, "user_id")
	require.NotNil(t, cookie)
	assert.Equal(t, "1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestPageHandler_SubmitLoginForm_InvalidCredentials(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.formContext(http.MethodPost, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong"},
	})

	fx.uc.EXPECT().
		Authenticate(mock.Anything, mock.AnythingOfType("*usecase.LoginInput")).
		Return(nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "authentication failed"))

	require.NoError(t, fx.pages.SubmitLoginForm(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Nil(t, findCookie(rec, "user_id"))
}

func TestPageHandler_Logout(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.getContext("/logout")

	require.NoError(t, fx.pages.Logout(c))
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookie := findCookie(rec, "user_id")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestPageHandler_Dashboard(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.getContext("/dashboard")
	deliverycontext.SetUserID(c, 1)

	fx.uc.EXPECT().
		ListUsers(mock.Anything, &usecase.ListUsersInput{Offset: 0, Limit: 50}).
		Return([]*entity.User{
			{ID: 1, Name: "Alice", Email: "alice@example.com"},
			{ID: 2, Name: "Bob", Email: "bob@example.com"},
		}, nil)
	fx.uc.EXPECT().CountUsers(mock.Anything).Return(int64(2), nil)

	require.NoError(t, fx.pages.Dashboard(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
	assert.Contains(t, rec.Body.String(), "bob@example.com")
	assert.Contains(t, rec.Body.String(), "/logout")
}

func TestPageHandler_Profile_UserGone(t *testing.T) {
	fx := createTestHandlers(t)
	c, _ := fx.getContext("/profile")
	deliverycontext.SetUserID(c, 42)

	fx.uc.EXPECT().GetUser(mock.Anything, int64(42)).Return(nil, errors.Wrap(domainerrors.ErrUserNotFound, "failed to get user"))

	err := fx.pages.Profile(c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestPageHandler_SubmitUpdateForm_BlankPasswordKept(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.formContext(http.MethodPost, "/user/update/1", url.Values{
		"name":     {"Alicia"},
		"email":    {"alice@example.com"},
		"password": {""},
	})
	c.SetParamNames("id")
	c.SetParamValues("1")

	fx.uc.EXPECT().
		UpdateUser(mock.Anything, int64(1), mock.MatchedBy(func(input *usecase.UpdateUserInput) bool {
			return *input.Name == "Alicia" && *input.Email == "alice@example.com" && input.Password == nil
		})).
		Return(&entity.User{ID: 1, Name: "Alicia", Email: "alice@example.com"}, nil)

	require.NoError(t, fx.pages.SubmitUpdateForm(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestPageHandler_SubmitUpdateForm_DuplicateEmail(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.formContext(http.MethodPost, "/user/update/2", url.Values{
		"name":  {"Bob"},
		"email": {"alice@example.com"},
	})
	c.SetParamNames("id")
	c.SetParamValues("2")

	fx.uc.EXPECT().
		UpdateUser(mock.Anything, int64(2), mock.AnythingOfType("*usecase.UpdateUserInput")).
		Return(nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "failed to update user"))
	fx.uc.EXPECT().GetUser(mock.Anything, int64(2)).Return(&entity.User{ID: 2, Name: "Bob", Email: "bob@example.com"}, nil)

	require.NoError(t, fx.pages.SubmitUpdateForm(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
	assert.Contains(t, rec.Body.String(), "bob@example.com")
}

func TestPageHandler_SubmitDelete(t *testing.T) {
	tests := []struct {
		name          string
		sessionUserID int64
		wantLocation  string
		wantCleared   bool
	}{
		{name: "other user", sessionUserID: 1, wantLocation: "/dashboard"},
		{name: "own account", sessionUserID: 3, wantLocation: "/login", wantCleared: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestHandlers(t)
			c, rec := fx.formContext(http.MethodPost, "/user/delete/3", url.Values{})
			c.SetParamNames("id")
			c.SetParamValues("3")
			deliverycontext.SetUserID(c, tt.sessionUserID)

			fx.uc.EXPECT().DeleteUser(mock.Anything, int64(3)).Return(&entity.User{ID: 3}, nil)

			require.NoError(t, fx.pages.SubmitDelete(c))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			assert.Equal(t, tt.wantCleared, findCookie(rec, "user_id") != nil)
		})
	}
}

func TestPageHandler_ShowDeleteConfirm_NotFound(t *testing.T) {
	fx := createTestHandlers(t)
	c, _ := fx.getContext("/user/delete/9")
	c.SetParamNames("id")
	c.SetParamValues("9")

	fx.uc.EXPECT().GetUser(mock.Anything, int64(9)).Return(nil, errors.Wrap(domainerrors.ErrUserNotFound, "failed to get user"))

	err := fx.pages.ShowDeleteConfirm(c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
