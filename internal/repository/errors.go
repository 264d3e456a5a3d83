package repository

import (
	"errors"
	"fmt"
	"strings"

	"hostelcore/internal/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrRetryable marks serialization failures and deadlocks that a caller may retry.
var ErrRetryable = errors.New("retryable transaction failure")

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translate maps driver errors onto the apperror taxonomy.
// The message describes the row that was being read or written.
func translate(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format, args...)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return apperror.Wrap(apperror.ErrConflict, err, format, args...)
		case pgForeignKeyViolation:
			return apperror.Wrap(apperror.ErrNotFound, err, format, args...)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), ErrRetryable, err)
		}
	}

	if isUniqueConstraintError(err) {
		return apperror.Wrap(apperror.ErrConflict, err, format, args...)
	}
	if isForeignKeyError(err) {
		return apperror.Wrap(apperror.ErrNotFound, err, format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func isUniqueConstraintError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func isForeignKeyError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
