package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"userhub/internal/delivery/http/response"
	"userhub/internal/domain/entity"
	domainerrors "userhub/internal/domain/errors"
	"userhub/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_CreateUser_Success(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.jsonContext(http.MethodPost, "/users", `{"name":"Alice","email":"alice@example.com","password":"s3cret"}`)

	fx.uc.EXPECT().
		RegisterUser(mock.Anything, &usecase.RegisterUserInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret"}).
		Return(&entity.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)

	require.NoError(t, fx.users.CreateUser(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success bool         `json:"success"`
		Data    UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, UserResponse{ID: 1, Name: "Alice", Email: "alice@example.com"}, body.Data)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserHandler_CreateUser_ValidationFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"email":"alice@example.com","password":"pw"}`},
		{name: "bad email", body: `{"name":"Alice","email":"not-an-email","password":"pw"}`},
		{name: "missing password", body: `{"name":"Alice","email":"alice@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestHandlers(t)
			c, _ := fx.jsonContext(http.MethodPost, "/users", tt.body)

			err := fx.users.CreateUser(c)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
			fx.uc.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
		})
	}
}

func TestUserHandler_CreateUser_DuplicateEmail(t *testing.T) {
	fx := createTestHandlers(t)
	c, _ := fx.jsonContext(http.MethodPost, "/users", `{"name":"Bob","email":"alice@example.com","password":"pw"}`)

	fx.uc.EXPECT().
		RegisterUser(mock.Anything, mock.AnythingOfType("*usecase.RegisterUserInput")).
		Return(nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "failed to register user"))

	err := fx.users.CreateUser(c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestUserHandler_ListUsers_Window(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantOffset int
		wantLimit  int
	}{
		{name: "defaults", target: "/users", wantOffset: 0, wantLimit: 10},
		{name: "explicit window", target: "/users?skip=5&limit=20", wantOffset: 5, wantLimit: 20},
		{name: "limit capped", target: "/users?limit=1000", wantOffset: 0, wantLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestHandlers(t)
			c, rec := fx.getContext(tt.target)

			fx.uc.EXPECT().
				ListUsers(mock.Anything, &usecase.ListUsersInput{Offset: tt.wantOffset, Limit: tt.wantLimit}).
				Return([]*entity.User{{ID: 1, Name: "Alice", Email: "alice@example.com"}}, nil)

			require.NoError(t, fx.users.ListUsers(c))
			assert.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Data []UserResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Data, 1)
		})
	}
}

func TestUserHandler_ListUsers_BadQuery(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.getContext("/users?skip=abc")

	require.NoError(t, fx.users.ListUsers(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_GetUser(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.getContext("/users/3")
	c.SetParamNames("id")
	c.SetParamValues("3")

	fx.uc.EXPECT().GetUser(mock.Anything, int64(3)).Return(&entity.User{ID: 3, Name: "Cat", Email: "cat@example.com"}, nil)

	require.NoError(t, fx.users.GetUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"cat@example.com"`)
}

func TestUserHandler_GetUser_InvalidID(t *testing.T) {
	fx := createTestHandlers(t)
	c, _ := fx.getContext("/users/abc")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := fx.users.GetUser(c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestUserHandler_GetUser_NotFound(t *testing.T) {
	fx := createTestHandlers(t)
	c, _ := fx.getContext("/users/99")
	c.SetParamNames("id")
	c.SetParamValues("99")

	fx.uc.EXPECT().GetUser(mock.Anything, int64(99)).Return(nil, errors.Wrap(domainerrors.ErrUserNotFound, "failed to get user"))

	err := fx.users.GetUser(c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserHandler_UpdateUser_PartialBody(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.jsonContext(http.MethodPut, "/users/1", `{"name":"Alicia"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")

	fx.uc.EXPECT().
		UpdateUser(mock.Anything, int64(1), mock.MatchedBy(func(input *usecase.UpdateUserInput) bool {
			return input.Name != nil && *input.Name == "Alicia" && input.Email == nil && input.Password == nil
		})).
		Return(&entity.User{ID: 1, Name: "Alicia", Email: "alice@example.com"}, nil)

	require.NoError(t, fx.users.UpdateUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserHandler_UpdateUser_EmptyNameRejected(t *testing.T) {
	fx := createTestHandlers(t)
	c, _ := fx.jsonContext(http.MethodPut, "/users/1", `{"name":""}`)
	c.SetParamNames("id")
	c.SetParamValues("1")

	// The service rejects empty values too, should the validator ever let one through.
	fx.uc.EXPECT().
		UpdateUser(mock.Anything, int64(1), mock.AnythingOfType("*usecase.UpdateUserInput")).
		Return(nil, domainerrors.ErrValidationFailed.WithDetails("name must not be empty")).
		Maybe()

	err := fx.users.UpdateUser(c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestUserHandler_DeleteUser(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.jsonContext(http.MethodDelete, "/users/4", "")
	c.SetParamNames("id")
	c.SetParamValues("4")

	fx.uc.EXPECT().DeleteUser(mock.Anything, int64(4)).Return(&entity.User{ID: 4, Name: "Dan", Email: "dan@example.com"}, nil)

	require.NoError(t, fx.users.DeleteUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
}

func TestHealthCheck(t *testing.T) {
	fx := createTestHandlers(t)
	c, rec := fx.getContext("/health")

	require.NoError(t, HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
