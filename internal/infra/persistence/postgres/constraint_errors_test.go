package postgres

import (
	"testing"

	domainerrors "userhub/internal/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueConstraintViolation(t *testing.T) {
	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintViolation(errors.Wrap(gorm.ErrDuplicatedKey, "insert")))
	assert.True(t, isUniqueConstraintViolation(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.True(t, isUniqueConstraintViolation(errors.Wrap(&pgconn.PgError{Code: pgUniqueViolation}, "insert")))

	assert.False(t, isUniqueConstraintViolation(&pgconn.PgError{Code: pgNotNullViolation}))
	assert.False(t, isUniqueConstraintViolation(errors.New("connection refused")))
}

func TestIsNotNullConstraintViolation(t *testing.T) {
	assert.True(t, isNotNullConstraintViolation(&pgconn.PgError{Code: pgNotNullViolation}))
	assert.True(t, isNotNullConstraintViolation(errors.New("NOT NULL constraint failed: users.name")))
	assert.False(t, isNotNullConstraintViolation(errors.New("timeout")))
}

func TestMapWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "duplicate email", err: &pgconn.PgError{Code: pgUniqueViolation}, want: domainerrors.ErrUserAlreadyExists},
		{name: "missing column", err: &pgconn.PgError{Code: pgNotNullViolation}, want: domainerrors.ErrValidationFailed},
		{name: "foreign key is a storage failure", err: &pgconn.PgError{Code: "23503"}, want: domainerrors.ErrStorageFailure},
		{name: "driver failure", err: errors.New("connection reset by peer"), want: domainerrors.ErrStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapWriteError(tt.err, "failed to write user"), tt.want)
		})
	}
}
