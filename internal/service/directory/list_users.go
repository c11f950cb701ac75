package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	pgdirectory "github.com/heartmarshall/userdir-backend/internal/adapter/postgres/directory"
	"github.com/heartmarshall/userdir-backend/internal/domain"
)

// ListUsers returns one page of enriched users with pagination metadata and
// a summary folded over that page only.
//
// Page and limit are clamped, never rejected. A division that matches nobody
// yields an empty page. A store failure or timeout fails the whole request
// with domain.ErrUnavailable; nothing is retried.
func (s *Service) ListUsers(ctx context.Context, req domain.ListRequest) (*domain.UserListing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	now := s.clock.Now()

	plan, err := pgdirectory.NewPlan(req, pgdirectory.PlanOptions{
		MaxLimit:     s.cfg.MaxLimit,
		RecentWindow: s.cfg.RecentActivityWindow(),
		Now:          now,
	})
	if err != nil {
		return nil, err
	}

	var (
		rows  []domain.UserRow
		total int
	)
	if s.cfg.SnapshotReads {
		rows, total, err = s.fetchSnapshot(ctx, plan)
	} else {
		rows, total, err = s.fetchConcurrent(ctx, plan)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "list users failed",
			slog.String("filtered_by", plan.FilteredBy()),
			slog.Int("page", plan.Page),
			slog.Int("limit", plan.Limit),
			slog.String("error", err.Error()),
		)
		return nil, wrapTimeout(err)
	}

	hasMore := false
	if plan.Keyset() && len(rows) > plan.Limit {
		hasMore = true
		rows = rows[:plan.Limit]
	}

	s.logAnomalies(ctx, rows)

	users := make([]domain.UserRecord, len(rows))
	for i := range rows {
		users[i] = project(rows[i], now)
	}

	pagination := domain.NewPagination(plan.Page, plan.Limit, total)
	if plan.Keyset() {
		// A cursor is only issued by an earlier page.
		pagination.HasNextPage = hasMore
		pagination.HasPreviousPage = true
	}
	if pagination.HasNextPage && len(rows) > 0 {
		last := rows[len(rows)-1]
		next := domain.PageCursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		pagination.NextCursor = &next
	}

	return &domain.UserListing{
		Users:      users,
		Pagination: pagination,
		Summary:    summarize(users),
		FilteredBy: plan.FilteredBy(),
	}, nil
}

// fetchConcurrent runs the page and count queries in parallel. The first
// failure cancels the sibling query.
func (s *Service) fetchConcurrent(ctx context.Context, plan pgdirectory.Plan) ([]domain.UserRow, int, error) {
	var (
		rows  []domain.UserRow
		total int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		rows, err = s.repo.FetchPage(gctx, plan)
		if err != nil {
			return fmt.Errorf("fetch page: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		total, err = s.repo.CountMatching(gctx, plan)
		if err != nil {
			return fmt.Errorf("count matching: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// fetchSnapshot runs both queries in one read-only snapshot, so the count
// and the rows agree under concurrent writes.
func (s *Service) fetchSnapshot(ctx context.Context, plan pgdirectory.Plan) ([]domain.UserRow, int, error) {
	var (
		rows  []domain.UserRow
		total int
	)

	err := s.tx.RunInSnapshot(ctx, func(ctx context.Context) error {
		var err error
		if rows, err = s.repo.FetchPage(ctx, plan); err != nil {
			return fmt.Errorf("fetch page: %w", err)
		}
		if total, err = s.repo.CountMatching(ctx, plan); err != nil {
			return fmt.Errorf("count matching: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// wrapTimeout marks an elapsed deadline as a retryable store failure.
// Caller cancellation passes through unchanged.
func wrapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}
