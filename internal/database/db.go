package database

import (
	"context"
	"errors"

	"github.com/frckbrice/auth-service/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapPostgresError translates driver errors to the sentinel taxonomy once,
// so services never inspect pg error codes themselves.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	// Store timeouts are retryable upstream failures, not auth failures
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrUpstreamUnavailable
	}

	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23505": // unique_violation
			return models.ErrConflict
		case "23503": // foreign_key_violation
			return models.ErrBadRequest
		case "23502": // not_null_violation
			return models.ErrBadRequest
		}
	}

	return err
}
