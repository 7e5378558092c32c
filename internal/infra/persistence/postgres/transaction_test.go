package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"userhub/internal/domain/entity"
	domainerrors "userhub/internal/domain/errors"
	"userhub/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManager_CommitOnSuccess(t *testing.T) {
	db := newTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		return f.UserRepo().Create(ctx, &entity.User{Name: "Alice", Email: "alice@example.com"}, "h")
	})
	require.NoError(t, err)

	count, err := NewUserRepository(db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	db := newTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.UserRepo().Create(ctx, &entity.User{Name: "Alice", Email: "alice@example.com"}, "h"); err != nil {
			return err
		}

		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	count, err := NewUserRepository(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransactionManager_RollbackOnPanic(t *testing.T) {
	db := newTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
			_ = f.UserRepo().Create(ctx, &entity.User{Name: "Alice", Email: "alice@example.com"}, "h")
			panic("handler bug")
		})
	})

	count, err := NewUserRepository(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransactionManager_ConcurrentRegistrationSameEmail(t *testing.T) {
	db := newTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	const workers = 8
	var (
		wg         sync.WaitGroup
		succeeded  atomic.Int32
		duplicates atomic.Int32
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
				return f.UserRepo().Create(ctx, &entity.User{Name: "Alice", Email: "alice@example.com"}, "h")
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domainerrors.ErrUserAlreadyExists):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), duplicates.Load())
}
