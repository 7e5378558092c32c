// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"userhub/config"
	"userhub/internal/delivery/http/response"
	"userhub/internal/domain/entity"
	domainerrors "userhub/internal/domain/errors"
	"userhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserResponse is the public view of a user. It never includes password material.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// UserHandler serves the JSON user API under /users.
type UserHandler struct {
	uc           usecase.UserUsecase
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.UserUsecase, logger *slog.Logger, cfg *config.Config) *UserHandler {
	h := &UserHandler{
		uc:           uc,
		logger:       logger,
		defaultLimit: 10,
		maxLimit:     100,
	}
	if cfg.Pagination != nil {
		h.defaultLimit = cfg.Pagination.DefaultLimit
		h.maxLimit = cfg.Pagination.MaxLimit
	}

	return h
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(c echo.Context) error {
	input := new(usecase.RegisterUserInput)
	if err := c.Bind(input); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.RegisterUser(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserResponse(user), "User created successfully")
}

// ListUsers handles GET /users?skip=&limit=.
// limit defaults to pagination.defaultLimit and is capped at pagination.maxLimit.
func (h *UserHandler) ListUsers(c echo.Context) error {
	input := &usecase.ListUsersInput{Limit: h.defaultLimit}
	if err := c.Bind(input); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "skip and limit must be integers")
	}
	input.Limit = min(input.Limit, h.maxLimit)

	users, err := h.uc.ListUsers(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	data := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, toUserResponse(user))
	}

	return response.Success(c, http.StatusOK, data, "")
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.uc.GetUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "")
}

// UpdateUser handles PUT /users/:id. Fields left out of the body are unchanged.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	input := new(usecase.UpdateUserInput)
	if err := c.Bind(input); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.UpdateUser(c.Request().Context(), id, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "User updated successfully")
}

// DeleteUser handles DELETE /users/:id and returns the removed user.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.uc.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "User deleted successfully")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

func parseUserID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.ErrValidationFailed.WithDetails("id must be a positive integer")
	}

	return id, nil
}
