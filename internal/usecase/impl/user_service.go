// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "userhub/internal/delivery/context"
	"userhub/internal/domain/entity"
	domainerrors "userhub/internal/domain/errors"
	"userhub/internal/domain/repository"
	"userhub/internal/domain/service"
	"userhub/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// dummyPassword seeds the hash checked when a login names an unknown email.
const dummyPassword = "userhub-timing-equaliser"

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	logger    *slog.Logger

	dummyMu   sync.Mutex
	dummyHash string
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager: params.TxManager,
		hasher:    params.Hasher,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterUser hashes the password and stores a new account.
// A taken email surfaces as ErrUserAlreadyExists from the store's unique constraint.
func (srv *userService) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*entity.User, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("name, email and password are required")
	}

	hashedPassword, err := srv.hashPassword(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	newUser := &entity.User{
		Name:  input.Name,
		Email: input.Email,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.UserRepo().Create(ctx, newUser, hashedPassword)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Warn("Registration rejected, email already taken", slog.String("email", input.Email))

			return nil, errors.Wrap(err, "failed to register user")
		}

		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Int64("userID", newUser.ID))

	return newUser, nil
}

// GetUser loads a single account by id.
func (srv *userService) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	var found *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		found = user

		return nil
	})
	if err != nil {
		return nil, srv.mapStoreError(ctx, err, id, "failed to get user")
	}

	return found, nil
}

// ListUsers returns a window of accounts in id order. Negative bounds are treated as zero.
func (srv *userService) ListUsers(ctx context.Context, input *usecase.ListUsersInput) ([]*entity.User, error) {
	offset, limit := 0, 0
	if input != nil {
		offset, limit = max(input.Offset, 0), max(input.Limit, 0)
	}

	var users []*entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		list, err := repoFactory.UserRepo().List(ctx, offset, limit)
		if err != nil {
			return err
		}
		users = list

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list users", slog.Int("offset", offset), slog.Int("limit", limit), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list users")
	}

	if users == nil {
		users = []*entity.User{}
	}

	return users, nil
}

// CountUsers returns the number of stored accounts.
func (srv *userService) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		count, err := repoFactory.UserRepo().Count(ctx)
		if err != nil {
			return err
		}
		total = count

		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}

	return total, nil
}

// UpdateUser applies the supplied fields to an account. A new password is hashed
// before the transaction opens; an empty input returns the stored user unchanged.
func (srv *userService) UpdateUser(ctx context.Context, id int64, input *usecase.UpdateUserInput) (*entity.User, error) {
	patch, err := srv.buildPatch(ctx, input)
	if err != nil {
		return nil, err
	}

	var updated *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().Update(ctx, id, patch)
		if err != nil {
			return err
		}
		updated = user

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Warn("Update rejected, email already taken", slog.Int64("userID", id))

			return nil, errors.Wrap(err, "failed to update user")
		}

		return nil, srv.mapStoreError(ctx, err, id, "failed to update user")
	}

	srv.log(ctx).Info("User updated", slog.Int64("userID", id))

	return updated, nil
}

func (srv *userService) buildPatch(ctx context.Context, input *usecase.UpdateUserInput) (*entity.UserPatch, error) {
	patch := &entity.UserPatch{}
	if input == nil {
		return patch, nil
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("name must not be empty")
		}
		patch.Name = input.Name
	}

	if input.Email != nil {
		if *input.Email == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("email must not be empty")
		}
		patch.Email = input.Email
	}

	if input.Password != nil {
		if *input.Password == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("password must not be empty")
		}

		hashedPassword, err := srv.hashPassword(ctx, *input.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hashedPassword
	}

	return patch, nil
}

func (srv *userService) hashPassword(ctx context.Context, password string) (string, error) {
	hashedPassword, err := srv.hasher.Hash(password)
	if errors.Is(err, service.ErrPasswordTooLong) {
		return "", domainerrors.ErrValidationFailed.WithDetails("password must be at most 72 bytes")
	}
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	return hashedPassword, nil
}

// DeleteUser removes an account and returns its last stored value.
func (srv *userService) DeleteUser(ctx context.Context, id int64) (*entity.User, error) {
	var deleted *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().Delete(ctx, id)
		if err != nil {
			return err
		}
		deleted = user

		return nil
	})
	if err != nil {
		return nil, srv.mapStoreError(ctx, err, id, "failed to delete user")
	}

	srv.log(ctx).Info("User deleted", slog.Int64("userID", id))

	return deleted, nil
}

// Authenticate verifies an email/password pair.
func (srv *userService) Authenticate(ctx context.Context, input *usecase.LoginInput) (*entity.User, error) {
	srv.log(ctx).Debug("Starting authentication", slog.String("email", input.Email))

	var credential *entity.Credential
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindCredentialByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		credential = found

		return nil
	})
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Error("Failed to load credential", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load credential")
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	// Unknown emails still pay for one comparison.
	if credential == nil {
		srv.hasher.Check(input.Password, srv.unknownEmailHash())
		srv.log(ctx).Warn("Authentication failed", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "authentication failed")
	}

	if !srv.hasher.Check(input.Password, credential.PasswordHash) {
		srv.log(ctx).Warn("Authentication failed", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "authentication failed")
	}

	srv.log(ctx).Debug("Authentication succeeded", slog.Int64("userID", credential.User.ID))

	return credential.User, nil
}

// unknownEmailHash is produced with the configured hasher so its cost matches real hashes.
// Only a successful hash is cached; a failed attempt is retried on the next call.
func (srv *userService) unknownEmailHash() string {
	srv.dummyMu.Lock()
	defer srv.dummyMu.Unlock()

	if srv.dummyHash == "" {
		hash, err := srv.hasher.Hash(dummyPassword)
		if err != nil {
			srv.logger.Error("Failed to prepare unknown-email hash", slog.Any("error", err))

			return ""
		}
		srv.dummyHash = hash
	}

	return srv.dummyHash
}

func (srv *userService) mapStoreError(ctx context.Context, err error, id int64, message string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Warn("User not found", slog.Int64("userID", id))

		return errors.Wrap(domainerrors.ErrUserNotFound, message)
	}

	srv.log(ctx).Error("Store call failed", slog.Int64("userID", id), slog.Any("error", err))

	return errors.Wrap(err, message)
}
