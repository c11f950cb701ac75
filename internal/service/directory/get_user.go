package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/heartmarshall/userdir-backend/internal/domain"
)

// GetUser returns one enriched user without activity aggregates.
// A missing profile yields domain.ErrNotFound.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapTimeout(err)
	}

	s.logAnomalies(ctx, []domain.UserRow{*row})

	rec := project(*row, s.clock.Now())
	return &rec, nil
}
