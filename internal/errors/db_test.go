package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError_Nil(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError_NonDBErrorsPassThrough(t *testing.T) {
	plain := errors.New("plain")
	assert.Same(t, plain, MapDBError(plain))
}

func TestMapDBError_ContextAndNoRows(t *testing.T) {
	tests := []struct {
		err  error
		code ErrorCode
	}{
		{context.DeadlineExceeded, ErrCodeTimeout},
		{fmt.Errorf("query: %w", context.Canceled), ErrCodeCanceled},
		{pgx.ErrNoRows, ErrCodeNotFound},
	}
	for _, tt := range tests {
		got := MapDBError(tt.err)
		assert.Equal(t, tt.code, GetCode(got), tt.err.Error())
		require.ErrorIs(t, got, tt.err)
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name    string
		pgErr   *pgconn.PgError
		field   string
		message string
	}{
		{
			name:    "column metadata",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, TableName: "accounts", ColumnName: "identity"},
			field:   "identity",
			message: "Email already registered",
		},
		{
			name: "detail text",
			pgErr: &pgconn.PgError{
				Code:      pgerrcode.UniqueViolation,
				TableName: "content_items",
				Detail:    "Key (url)=(https://x) already exists.",
			},
			field:   "url",
			message: "This value already exists. Please choose a different one.",
		},
		{
			name:    "constraint name",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, TableName: "accounts", ConstraintName: "accounts_identity_key"},
			field:   "identity",
			message: "Email already registered",
		},
		{
			name:  "ambiguous constraint",
			pgErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation, TableName: "accounts", ConstraintName: "accounts_a_b_key"},
		},
		{
			name:  "foreign constraint prefix",
			pgErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation, TableName: "accounts", ConstraintName: "other_identity_key"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDBError(tt.pgErr)
			assert.True(t, IsConflict(got))
			assert.Equal(t, tt.field, GetField(got))
			if tt.message != "" {
				var appErr *AppError
				require.ErrorAs(t, got, &appErr)
				assert.Equal(t, tt.message, appErr.Message)
			}
		})
	}
}

func TestMapDBError_ForeignKey(t *testing.T) {
	got := MapDBError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, TableName: "accounts"})
	var appErr *AppError
	require.ErrorAs(t, got, &appErr)
	assert.Equal(t, ErrCodeForeignKey, appErr.Code)
	assert.Equal(t, "The referenced account does not exist.", appErr.Message)

	got = MapDBError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	require.ErrorAs(t, got, &appErr)
	assert.Equal(t, "The referenced record does not exist.", appErr.Message)
}

func TestMapDBError_ValidationViolations(t *testing.T) {
	for _, code := range []string{pgerrcode.CheckViolation, pgerrcode.NotNullViolation} {
		got := MapDBError(&pgconn.PgError{Code: code, ColumnName: "role"})
		assert.True(t, IsValidation(got), code)
		assert.Equal(t, "role", GetField(got), code)
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	got := MapDBError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	assert.Equal(t, ErrCodeInternal, GetCode(got))
}
