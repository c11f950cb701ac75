package directory

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/userdir-backend/internal/domain"
)

var pageColumns = []string{
	"id", "full_name", "username", "bio", "address", "phone", "profile_data",
	"created_at", "updated_at", "email", "role", "division",
	"role_assignments", "division_assignments", "creation_rank", "total_profiles",
	"total_logs", "login_count", "update_profile_count", "recent_logs",
}

var profileColumnsOnly = pageColumns[:14]

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func unfilteredPlan(t *testing.T) Plan {
	t.Helper()
	p, err := NewPlan(domain.ListRequest{Page: 1, Limit: 2}, testOpts())
	require.NoError(t, err)
	return p
}

func TestRepo_FetchPage(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	id1, id2 := uuid.New(), uuid.New()
	bio := "gopher"
	email := "a@example.com"
	role := "admin"
	division := "engineering"

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
		check   func(t *testing.T, rows []domain.UserRow)
	}{
		{
			name: "rows with and without satellites",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(pageColumns).
					AddRow(id1, "Ann", "ann", &bio, (*string)(nil), (*string)(nil), []byte(`{"skills":["go"]}`),
						now, now, &email, &role, &division, int64(1), int64(2), int64(0), int64(7),
						int64(9), int64(4), int64(2), int64(3)).
					AddRow(id2, "Bob", "bob", (*string)(nil), (*string)(nil), (*string)(nil), []byte(nil),
						now.Add(-time.Hour), now, (*string)(nil), (*string)(nil), (*string)(nil), int64(0), int64(0), int64(1), int64(7),
						int64(0), int64(0), int64(0), int64(0))
				mock.ExpectQuery(regexp.QuoteMeta("WITH profile_rank AS")).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnRows(rows)
			},
			check: func(t *testing.T, rows []domain.UserRow) {
				require.Len(t, rows, 2)

				ann := rows[0]
				assert.Equal(t, id1, ann.ID)
				assert.Equal(t, "gopher", *ann.Bio)
				require.NotNil(t, ann.Role)
				assert.Equal(t, domain.RoleAdmin, *ann.Role)
				assert.Equal(t, "engineering", *ann.Division)
				assert.True(t, ann.HasDuplicateSatellites())
				assert.Equal(t, domain.ActivityStats{TotalLogs: 9, LoginCount: 4, UpdateProfileCount: 2, RecentLogs: 3}, *ann.Activity)
				assert.Equal(t, 0, *ann.CreationRank)
				assert.Equal(t, 7, *ann.TotalProfiles)

				bob := rows[1]
				assert.Nil(t, bob.Role)
				assert.Nil(t, bob.Email)
				assert.Nil(t, bob.Division)
				assert.Nil(t, bob.ProfileData)
				assert.Equal(t, domain.ActivityStats{}, *bob.Activity)
				assert.Equal(t, 1, *bob.CreationRank)
			},
		},
		{
			name: "empty page",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("WITH profile_rank AS")).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows(pageColumns))
			},
			check: func(t *testing.T, rows []domain.UserRow) {
				assert.Empty(t, rows)
			},
		},
		{
			name: "store failure is unavailable",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("WITH profile_rank AS")).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(errors.New("connection reset by peer"))
			},
			wantErr: domain.ErrUnavailable,
		},
		{
			name: "context error passes through",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("WITH profile_rank AS")).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(context.DeadlineExceeded)
			},
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newMockRepo(t)
			tt.setup(mock)

			rows, err := repo.FetchPage(context.Background(), unfilteredPlan(t))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				tt.check(t, rows)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepo_CountMatching(t *testing.T) {
	t.Parallel()

	t.Run("unfiltered", func(t *testing.T) {
		t.Parallel()

		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM profiles")).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

		n, err := repo.CountMatching(context.Background(), unfilteredPlan(t))
		require.NoError(t, err)
		assert.Equal(t, 42, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filtered", func(t *testing.T) {
		t.Parallel()

		plan, err := NewPlan(domain.ListRequest{Division: ptr("ops"), Page: 1, Limit: 2}, testOpts())
		require.NoError(t, err)

		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("WITH division_pick AS")).
			WithArgs("ops").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))

		n, err := repo.CountMatching(context.Background(), plan)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM profiles")).
			WillReturnError(errors.New("too many connections"))

		_, err := repo.CountMatching(context.Background(), unfilteredPlan(t))
		assert.ErrorIs(t, err, domain.ErrUnavailable)
		assert.True(t, domain.IsRetryable(err))
	})
}

func TestRepo_GetByID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	now := time.Now().UTC()
	role := "moderator"

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM profiles p")).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(profileColumnsOnly).
				AddRow(id, "Cat", "cat", (*string)(nil), (*string)(nil), (*string)(nil), []byte(nil),
					now, now, (*string)(nil), &role, (*string)(nil), int64(1), int64(0)))

		row, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, id, row.ID)
		assert.Equal(t, domain.RoleModerator, *row.Role)
		assert.Nil(t, row.Activity)
		assert.Nil(t, row.CreationRank)
		assert.Nil(t, row.TotalProfiles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM profiles p")).
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.False(t, domain.IsRetryable(err))
	})
}
