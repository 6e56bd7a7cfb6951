package postgres

import (
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// SQLSTATE class 23 covers every integrity constraint violation.
	integrityViolationClass = "23"
	uniqueViolation         = "23505"
)

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == integrityViolationClass {
			contextLogger.Warn("Database integrity constraint violation", "code", pgErr.Code, "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			if pgErr.Code == uniqueViolation {
				return fmt.Errorf("%w: %s: %w", apperrors.ErrAlreadyExists, pgErr.ConstraintName, err)
			}
			return fmt.Errorf("%w: %s: %w", apperrors.ErrConflict, pgErr.ConstraintName, err)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s: %w", apperrors.ErrDatabase, pgErr.Code, err)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf("%w: %w", apperrors.ErrDatabase, err)
}
