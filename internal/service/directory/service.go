// Package directory serves the paginated user directory: it plans and fetches
// one page, enriches each row and folds a page-scoped summary.
package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	pgdirectory "github.com/heartmarshall/userdir-backend/internal/adapter/postgres/directory"
	"github.com/heartmarshall/userdir-backend/internal/config"
	"github.com/heartmarshall/userdir-backend/internal/domain"
)

// directoryRepo defines the store operations needed by the directory service.
type directoryRepo interface {
	FetchPage(ctx context.Context, plan pgdirectory.Plan) ([]domain.UserRow, error)
	CountMatching(ctx context.Context, plan pgdirectory.Plan) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserRow, error)
}

// txManager defines the snapshot transaction runner used in snapshot mode.
type txManager interface {
	RunInSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

// clock supplies the response time used by derived fields.
type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service implements the directory read operations. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	log   *slog.Logger
	repo  directoryRepo
	tx    txManager
	clock clock
	cfg   config.DirectoryConfig
}

// NewService creates a new directory service instance.
func NewService(
	logger *slog.Logger,
	repo directoryRepo,
	tx txManager,
	cfg config.DirectoryConfig,
) *Service {
	return &Service{
		log:   logger.With("service", "directory"),
		repo:  repo,
		tx:    tx,
		clock: systemClock{},
		cfg:   cfg,
	}
}

// DefaultLimit is the page size transports use when the caller gives none.
func (s *Service) DefaultLimit() int {
	return s.cfg.DefaultLimit
}

// logAnomalies reports rows built from more than one role or division
// assignment. They are served, never raised.
func (s *Service) logAnomalies(ctx context.Context, rows []domain.UserRow) {
	for _, r := range rows {
		if !r.HasDuplicateSatellites() {
			continue
		}
		s.log.WarnContext(ctx, "duplicate satellite assignments",
			slog.String("profile_id", r.ID.String()),
			slog.Int("role_assignments", r.RoleAssignments),
			slog.Int("division_assignments", r.DivisionAssignments),
		)
	}
}
