package postgres

import (
	"context"

	"userhub/internal/domain/entity"
	domainerrors "userhub/internal/domain/errors"
	"userhub/internal/domain/repository"
	"userhub/internal/infra/persistence/model"
	"userhub/internal/infra/persistence/postgres/query"

	"github.com/pkg/errors"
	"gorm.io/gen/field"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	q *query.Query
}

// NewUserRepository is the constructor for userRepository.
// It initializes the repository with the GORM Gen query builder bound to db,
// which is the transaction handle when called from the repository factory.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{
		q: query.Use(db),
	}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	u := repo.q.UserModel
	userM, err := u.WithContext(ctx).Where(u.ID.Eq(id)).Take()
	if err != nil {
		return nil, mapFindError(err, "failed to find user by id")
	}

	return toUserDomain(userM), nil
}

// FindCredentialByEmail retrieves a user and its password hash by email.
// The read is pinned to the primary so a login right after registration
// never sees a lagging replica.
func (repo *userRepository) FindCredentialByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	u := repo.q.UserModel
	userM, err := u.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where(u.Email.Eq(email)).
		Take()
	if err != nil {
		return nil, mapFindError(err, "failed to find user by email")
	}

	return &entity.Credential{
		User:         toUserDomain(userM),
		PasswordHash: userM.PasswordHash,
	}, nil
}

// List returns users in primary-key order.
func (repo *userRepository) List(ctx context.Context, offset, limit int) ([]*entity.User, error) {
	offset = max(offset, 0)
	if limit <= 0 {
		return []*entity.User{}, nil
	}

	u := repo.q.UserModel
	userMs, err := u.WithContext(ctx).
		Order(u.ID).
		Offset(offset).
		Limit(limit).
		Find()
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(userMs))
	for _, userM := range userMs {
		users = append(users, toUserDomain(userM))
	}

	return users, nil
}

// Count returns the number of stored users.
func (repo *userRepository) Count(ctx context.Context) (int64, error) {
	count, err := repo.q.UserModel.WithContext(ctx).Count()
	if err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count users")
	}

	return count, nil
}

// Create inserts the user row. Email uniqueness is left to the database
// constraint so two concurrent registrations cannot both succeed.
func (repo *userRepository) Create(ctx context.Context, user *entity.User, passwordHash string) error {
	userM := &model.UserModel{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: passwordHash,
	}

	if err := repo.q.UserModel.WithContext(ctx).Create(userM); err != nil {
		return mapWriteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update locks the row, applies the non-nil patch fields and returns the stored user.
func (repo *userRepository) Update(ctx context.Context, id int64, patch *entity.UserPatch) (*entity.User, error) {
	userM, err := repo.lockByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return toUserDomain(userM), nil
	}

	u := repo.q.UserModel
	columns := make([]field.Expr, 0, 3)
	if patch.Name != nil {
		userM.Name = *patch.Name
		columns = append(columns, u.Name)
	}
	if patch.Email != nil {
		userM.Email = *patch.Email
		columns = append(columns, u.Email)
	}
	if patch.PasswordHash != nil {
		userM.PasswordHash = *patch.PasswordHash
		columns = append(columns, u.PasswordHash)
	}

	// updated_at is refreshed by GORM's auto update time even though it is not selected.
	if _, err := u.WithContext(ctx).Select(columns...).Updates(userM); err != nil {
		return nil, mapWriteError(err, "failed to update user")
	}

	return toUserDomain(userM), nil
}

// Delete locks the row, hard-deletes it and returns the removed user.
func (repo *userRepository) Delete(ctx context.Context, id int64) (*entity.User, error) {
	userM, err := repo.lockByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u := repo.q.UserModel
	result, err := u.WithContext(ctx).Where(u.ID.Eq(id)).Delete()
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrUserNotFound
	}

	return toUserDomain(userM), nil
}

// lockByID loads the row with SELECT ... FOR UPDATE. Dialects without row
// locks (SQLite) drop the clause and rely on the database-level write lock.
func (repo *userRepository) lockByID(ctx context.Context, id int64) (*model.UserModel, error) {
	u := repo.q.UserModel
	userM, err := u.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where(u.ID.Eq(id)).
		Take()
	if err != nil {
		return nil, mapFindError(err, "failed to lock user")
	}

	return userM, nil
}

func mapFindError(err error, details string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrUserNotFound
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

// mapWriteError converts constraint violations on the users table into domain errors.
func mapWriteError(err error, details string) error {
	switch {
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
	case isNotNullConstraintViolation(err):
		return domainerrors.ErrValidationFailed.WrapMessage("missing required user information")
	default:
		return domainerrors.NewDatabaseExecuteError(err, details)
	}
}

// --- Mapper Functions ---

// toUserDomain converts a GORM UserModel to a domain User entity.
// The password hash stays behind in the model.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:        data.ID,
		Name:      data.Name,
		Email:     data.Email,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
