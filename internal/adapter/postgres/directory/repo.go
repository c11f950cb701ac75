// Package directory implements the user directory read path on PostgreSQL.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/userdir-backend/internal/adapter/postgres"
	"github.com/heartmarshall/userdir-backend/internal/domain"
)

// getByIDSQL fetches one profile with its satellites. The lateral picks keep
// the earliest assignment and still report how many exist.
const getByIDSQL = `
SELECT p.id, p.full_name, p.username, p.bio, p.address, p.phone,
       p.profile_data, p.created_at, p.updated_at,
       c.email, r.role, d.division,
       COALESCE(r.role_assignments, 0) AS role_assignments,
       COALESCE(d.division_assignments, 0) AS division_assignments
FROM profiles p
LEFT JOIN credentials c ON c.id = p.credential_id
LEFT JOIN LATERAL (
    SELECT role, count(*) OVER () AS role_assignments
    FROM role_assignments
    WHERE user_id = p.id
    ORDER BY assigned_at, id
    LIMIT 1
) r ON true
LEFT JOIN LATERAL (
    SELECT division, count(*) OVER () AS division_assignments
    FROM division_assignments
    WHERE user_id = p.id
    ORDER BY assigned_at, id
    LIMIT 1
) d ON true
WHERE p.id = $1
LIMIT 1`

// Repo serves the directory queries.
type Repo struct {
	db postgres.Querier
}

// New creates a new directory repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// FetchPage executes the page statement of the plan. Rows are ordered by
// created_at DESC, id DESC. In keyset mode up to Limit+1 rows are returned.
func (r *Repo) FetchPage(ctx context.Context, plan Plan) ([]domain.UserRow, error) {
	sql, args, err := plan.PageQuery()
	if err != nil {
		return nil, fmt.Errorf("build page query: %w", err)
	}

	var rows []pageRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapQueryError(err, "fetch page")
	}

	out := make([]domain.UserRow, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// CountMatching returns the number of profiles matching the plan's filter.
func (r *Repo) CountMatching(ctx context.Context, plan Plan) (int, error) {
	sql, args, err := plan.CountQuery()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int64
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapQueryError(err, "count matching")
	}
	return int(n), nil
}

// GetByID returns one profile with its one-to-one satellites and no aggregates.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserRow, error) {
	var row profileRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, getByIDSQL, id); err != nil {
		return nil, postgres.MapError(err, "profile", id)
	}

	u := row.toDomain()
	return &u, nil
}

// profileRow is the scan target shared by both read paths.
type profileRow struct {
	ID                  uuid.UUID `db:"id"`
	FullName            string    `db:"full_name"`
	Username            string    `db:"username"`
	Bio                 *string   `db:"bio"`
	Address             *string   `db:"address"`
	Phone               *string   `db:"phone"`
	ProfileData         []byte    `db:"profile_data"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
	Email               *string   `db:"email"`
	Role                *string   `db:"role"`
	Division            *string   `db:"division"`
	RoleAssignments     int64     `db:"role_assignments"`
	DivisionAssignments int64     `db:"division_assignments"`
}

// pageRow adds the planned aggregates.
type pageRow struct {
	profileRow
	CreationRank       int64 `db:"creation_rank"`
	TotalProfiles      int64 `db:"total_profiles"`
	TotalLogs          int64 `db:"total_logs"`
	LoginCount         int64 `db:"login_count"`
	UpdateProfileCount int64 `db:"update_profile_count"`
	RecentLogs         int64 `db:"recent_logs"`
}

func (r profileRow) toDomain() domain.UserRow {
	u := domain.UserRow{
		Profile: domain.Profile{
			ID:          r.ID,
			FullName:    r.FullName,
			Username:    r.Username,
			Bio:         r.Bio,
			Address:     r.Address,
			Phone:       r.Phone,
			ProfileData: r.ProfileData,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		},
		Email:               r.Email,
		Division:            r.Division,
		RoleAssignments:     int(r.RoleAssignments),
		DivisionAssignments: int(r.DivisionAssignments),
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		u.Role = &role
	}
	return u
}

func (r pageRow) toDomain() domain.UserRow {
	u := r.profileRow.toDomain()
	u.Activity = &domain.ActivityStats{
		TotalLogs:          int(r.TotalLogs),
		LoginCount:         int(r.LoginCount),
		UpdateProfileCount: int(r.UpdateProfileCount),
		RecentLogs:         int(r.RecentLogs),
	}
	rank, total := int(r.CreationRank), int(r.TotalProfiles)
	u.CreationRank = &rank
	u.TotalProfiles = &total
	return u
}
