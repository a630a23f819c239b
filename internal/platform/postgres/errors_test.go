package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/lingua-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected []error
	}{
		{
			name:     "no_rows",
			err:      sql.ErrNoRows,
			expected: []error{store.ErrNotFound},
		},
		{
			name:     "email_unique_violation",
			err:      &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersEmailConstraint},
			expected: []error{store.ErrEmailExists, store.ErrDuplicate},
		},
		{
			name:     "word_unique_violation",
			err:      &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: savedWordUniqueConstraint},
			expected: []error{store.ErrWordExists, store.ErrDuplicate},
		},
		{
			name:     "other_unique_violation",
			err:      &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "saved_words_pkey"},
			expected: []error{store.ErrDuplicate},
		},
		{
			name:     "foreign_key_violation",
			err:      &pgconn.PgError{Code: foreignKeyViolationCode},
			expected: []error{store.ErrInvalidEntity},
		},
		{
			name:     "check_violation",
			err:      &pgconn.PgError{Code: checkViolationCode},
			expected: []error{store.ErrInvalidEntity},
		},
		{
			name:     "not_null_violation",
			err:      &pgconn.PgError{Code: notNullViolationCode},
			expected: []error{store.ErrInvalidEntity},
		},
		{
			name:     "unknown_pg_code",
			err:      &pgconn.PgError{Code: "57014"},
			expected: []error{store.ErrStorage},
		},
		{
			name:     "connection_error",
			err:      errors.New("connection refused"),
			expected: []error{store.ErrStorage},
		},
		{
			name:     "already_mapped",
			err:      store.ErrWordNotFound,
			expected: []error{store.ErrWordNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			for _, want := range tt.expected {
				assert.ErrorIs(t, got, want)
			}
		})
	}

	assert.NoError(t, MapError(nil))
}

func TestMapErrorKeepsStorageDistinct(t *testing.T) {
	got := MapError(errors.New("boom"))
	assert.False(t, errors.Is(got, store.ErrNotFound))
	assert.False(t, errors.Is(got, store.ErrDuplicate))
}

func TestIsViolationHelpers(t *testing.T) {
	unique := fmt.Errorf("context: %w", &pgconn.PgError{Code: uniqueViolationCode})
	fk := &pgconn.PgError{Code: foreignKeyViolationCode}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(errors.New("other")))
}

func TestCheckRowsAffected(t *testing.T) {
	tests := []struct {
		name     string
		result   sql.Result
		notFound error
		expected error
	}{
		{name: "nil_result", result: nil, expected: store.ErrStorage},
		{name: "zero_rows", result: sqlmock.NewResult(0, 0), notFound: store.ErrWordNotFound, expected: store.ErrWordNotFound},
		{name: "zero_rows_default", result: sqlmock.NewResult(0, 0), expected: store.ErrNotFound},
		{name: "one_row", result: sqlmock.NewResult(0, 1)},
		{name: "rows_affected_error", result: sqlmock.NewErrorResult(errors.New("driver")), expected: store.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRowsAffected(tt.result, tt.notFound)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
