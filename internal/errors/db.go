package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column from "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// tableNames maps tables to the names users see in messages.
//
//nolint:gochecknoglobals // static read-only lookup
var tableNames = map[string]string{
	"accounts":      "Account",
	"content_items": "Content item",
}

// MapDBError maps database errors to AppError instances:
//   - context deadline/cancel → Timeout/Canceled
//   - pgx.ErrNoRows → NotFound
//   - unique violation → Conflict (with Field when it can be determined)
//   - foreign key violation → ForeignKey
//   - check and NOT NULL violations → Validation
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		e := Wrap(pgErr, ErrCodeConflict, uniqueMessage(pgErr.TableName))
		e.Field = conflictField(pgErr)
		return e
	case pgerrcode.ForeignKeyViolation:
		return Wrap(pgErr, ErrCodeForeignKey, "The referenced "+tableName(pgErr.TableName)+" does not exist.")
	case pgerrcode.CheckViolation:
		e := Wrap(pgErr, ErrCodeValidation, "Invalid data. Please check your input.")
		e.Field = pgErr.ColumnName
		return e
	case pgerrcode.NotNullViolation:
		e := Wrap(pgErr, ErrCodeValidation, "Required field is missing. Please check your input.")
		e.Field = pgErr.ColumnName
		return e
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}

func uniqueMessage(table string) string {
	if strings.EqualFold(strings.TrimSpace(table), "accounts") {
		return "Email already registered"
	}
	return "This value already exists. Please choose a different one."
}

// conflictField prefers column metadata, then the Detail text, then the
// "<table>_<field>_key" constraint convention.
func conflictField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	table := strings.TrimSpace(pgErr.TableName)
	name := strings.TrimPrefix(pgErr.ConstraintName, table+"_")
	if table == "" || name == pgErr.ConstraintName {
		return ""
	}
	for _, suffix := range []string{"_key", "_pkey", "_unique"} {
		if field, ok := strings.CutSuffix(name, suffix); ok && field != "" && !strings.Contains(field, "_") {
			return field
		}
	}
	return ""
}

func tableName(table string) string {
	t := strings.ToLower(strings.TrimSpace(table))
	if name, ok := tableNames[t]; ok {
		return strings.ToLower(name)
	}
	if t == "" {
		return "record"
	}
	return strings.ReplaceAll(t, "_", " ")
}
