package usecase

import (
	"context"

	"userhub/internal/domain/entity"
)

// RegisterUserInput defines the input for registering a new account.
type RegisterUserInput struct {
	Name     string `json:"name" form:"name" validate:"required,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

// LoginInput defines the input for authenticating with email and password.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UpdateUserInput carries a partial update. A nil field is left unchanged.
type UpdateUserInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=1,max=72"`
}

// ListUsersInput defines an offset/limit window over users in id order.
type ListUsersInput struct {
	Offset int `query:"skip"`
	Limit  int `query:"limit"`
}

// UserUsecase defines the interface for account management use cases.
type UserUsecase interface {
	RegisterUser(ctx context.Context, input *RegisterUserInput) (*entity.User, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	ListUsers(ctx context.Context, input *ListUsersInput) ([]*entity.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUser(ctx context.Context, id int64, input *UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id int64) (*entity.User, error)
	// Authenticate returns ErrInvalidCredentials for an unknown email and a wrong password alike.
	Authenticate(ctx context.Context, input *LoginInput) (*entity.User, error)
}
