// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"userhub/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindCredentialByEmail retrieves a user together with its password hash.
	FindCredentialByEmail(ctx context.Context, email string) (*entity.Credential, error)

	// List returns users in primary-key order. Negative arguments are treated as zero.
	List(ctx context.Context, offset, limit int) ([]*entity.User, error)

	// Count returns the number of stored users.
	Count(ctx context.Context) (int64, error)

	// Create persists a new user and fills in its ID and timestamps.
	// A taken email is reported by the storage constraint as ErrUserAlreadyExists.
	Create(ctx context.Context, user *entity.User, passwordHash string) error

	// Update applies the non-nil fields of patch to the user with the given ID
	// and returns the stored result.
	Update(ctx context.Context, id int64, patch *entity.UserPatch) (*entity.User, error)

	// Delete removes the user and returns it as it was just before removal.
	Delete(ctx context.Context, id int64) (*entity.User, error)
}
