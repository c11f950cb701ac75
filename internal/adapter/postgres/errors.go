package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/userdir-backend/internal/domain"
)

// MapError converts pgx/pgconn errors of a single-entity lookup to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped, they pass through.
func MapError(err error, entity string, id uuid.UUID) error {
	return mapError(err, fmt.Sprintf("%s %s", entity, id))
}

// MapQueryError is MapError for statements that are not keyed by one entity
// (page fetches, counts).
func MapQueryError(err error, op string) error {
	return mapError(err, op)
}

func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	// pgx.ErrNoRows → domain.ErrNotFound
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02": // invalid_text_representation
			return fmt.Errorf("%s: %w", op, domain.ErrValidation)
		}
	}

	// Everything else is a store failure the caller may retry.
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}
