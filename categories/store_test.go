package categories

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/user/audiostream-go/apperror"
)

func TestTranslateWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			"name unique violation",
			&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "categories_name_key"},
			apperror.IsConflictError,
		},
		{
			"slug unique violation",
			&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "categories_slug_key"},
			apperror.IsConflictError,
		},
		{
			"self-parent check violation",
			&pgconn.PgError{Code: pgCheckViolation, ConstraintName: "categories_no_self_parent"},
			apperror.IsValidationError,
		},
		{
			"unrelated check violation",
			&pgconn.PgError{Code: pgCheckViolation, ConstraintName: "something_else"},
			apperror.IsDatabaseError,
		},
		{
			"plain error",
			errors.New("connection reset"),
			apperror.IsDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateWriteError(tt.err, "write failed")
			assert.True(t, tt.check(got), "unexpected mapping: %v", got)
		})
	}
}
