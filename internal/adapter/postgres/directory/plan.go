package directory

import (
	"fmt"
	"math"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/userdir-backend/internal/domain"
)

// Aggregate is one per-profile count produced by the grouped pass over
// activity_logs. A nil Filter counts every log row.
type Aggregate struct {
	Column string
	Filter sq.Sqlizer
}

// PlanOptions bound and parameterize a plan.
type PlanOptions struct {
	MaxLimit     int
	RecentWindow time.Duration
	Now          time.Time
}

// Plan is the set of computations needed to serve one page of the directory.
// Each aggregate is computed once per query, never once per row.
type Plan struct {
	// Division is the equality filter; empty means no filter.
	Division string
	Page     int
	Limit    int
	// Cursor switches the page window from OFFSET to keyset.
	Cursor *domain.PageCursor
	// Since is the lower bound of the recent-activity aggregate.
	Since      time.Time
	Aggregates []Aggregate
}

// NewPlan clamps the request into a valid window and selects the aggregates.
// Out-of-range page and limit are clamped; only a malformed cursor is an error.
func NewPlan(req domain.ListRequest, opts PlanOptions) (Plan, error) {
	maxLimit := max(opts.MaxLimit, 1)
	limit := min(max(req.Limit, 1), maxLimit)

	// (Page-1)*Limit must stay within int and bigint range.
	p := Plan{
		Page:  min(max(req.Page, 1), math.MaxInt/limit),
		Limit: limit,
		Since: opts.Now.Add(-opts.RecentWindow),
	}

	if req.Division != nil {
		p.Division = strings.TrimSpace(*req.Division)
	}

	if req.Cursor != nil && *req.Cursor != "" {
		c, err := domain.DecodeCursor(*req.Cursor)
		if err != nil {
			return Plan{}, err
		}
		p.Cursor = &c
	}

	p.Aggregates = []Aggregate{
		{Column: "total_logs"},
		{Column: "login_count", Filter: sq.Eq{"l.action": string(domain.ActionLogin)}},
		{Column: "update_profile_count", Filter: sq.Eq{"l.action": string(domain.ActionUpdateProfile)}},
		{Column: "recent_logs", Filter: sq.Gt{"l.created_at": p.Since}},
	}

	return p, nil
}

// Filtered reports whether the plan restricts profiles by division.
func (p Plan) Filtered() bool { return p.Division != "" }

// FilteredBy is the resolved filter as reported to callers.
func (p Plan) FilteredBy() string {
	if p.Filtered() {
		return p.Division
	}
	return domain.FilterAll
}

// Keyset reports whether the page window is cursor based.
func (p Plan) Keyset() bool { return p.Cursor != nil }

// Offset is the number of rows skipped in offset mode.
func (p Plan) Offset() int {
	if p.Keyset() {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// FetchLimit is the number of rows the page query asks for. In keyset mode
// one extra row is fetched to detect whether a next page exists.
func (p Plan) FetchLimit() int {
	if p.Keyset() {
		return p.Limit + 1
	}
	return p.Limit
}

// cte is one named common table expression.
type cte struct {
	name  string
	query sq.Sqlizer
}

// profileRankCTE computes the global total and creation rank in one pass
// over profiles, independent of the filter.
func profileRankCTE() cte {
	return cte{"profile_rank", sq.Select(
		"id AS user_id",
		"rank() OVER (ORDER BY created_at DESC) - 1 AS creation_rank",
		"count(*) OVER () AS total_profiles",
	).From("profiles")}
}

// pickCTE keeps the earliest assignment per profile and exposes how many
// assignments existed, so duplicates never multiply profile rows.
func pickCTE(name, table, column, countAlias string, onlyPage bool) cte {
	q := sq.Select(
		"user_id",
		column,
		fmt.Sprintf("count(*) OVER (PARTITION BY user_id) AS %s", countAlias),
	).
		Options("DISTINCT ON (user_id)").
		From(table).
		OrderBy("user_id", "assigned_at", "id")
	if onlyPage {
		q = q.Where("user_id IN (SELECT id FROM page)")
	}
	return cte{name, q}
}

func (p Plan) pageCTE() cte {
	q := sq.Select("p.id", "p.created_at").From("profiles p")
	if p.Filtered() {
		q = q.Join("division_pick d ON d.user_id = p.id").
			Where(sq.Eq{"d.division": p.Division})
	}
	if p.Keyset() {
		q = q.Where("(p.created_at, p.id) < (?, ?)", p.Cursor.CreatedAt, p.Cursor.ID)
	}
	q = q.OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(p.FetchLimit())).
		Offset(uint64(p.Offset()))
	return cte{"page", q}
}

func (p Plan) logStatsCTE() (cte, error) {
	q := sq.Select("l.user_id").
		From("activity_logs l").
		Join("page pg ON pg.id = l.user_id").
		GroupBy("l.user_id")

	for _, a := range p.Aggregates {
		if a.Filter == nil {
			q = q.Column(fmt.Sprintf("count(*) AS %s", a.Column))
			continue
		}
		cond, args, err := a.Filter.ToSql()
		if err != nil {
			return cte{}, fmt.Errorf("aggregate %s: %w", a.Column, err)
		}
		q = q.Column(fmt.Sprintf("count(*) FILTER (WHERE %s) AS %s", cond, a.Column), args...)
	}
	return cte{"log_stats", q}, nil
}

// PageQuery renders the page statement: one row per profile in the window
// with satellites and aggregates joined in.
func (p Plan) PageQuery() (string, []any, error) {
	stats, err := p.logStatsCTE()
	if err != nil {
		return "", nil, err
	}

	ctes := []cte{profileRankCTE()}
	if p.Filtered() {
		ctes = append(ctes,
			pickCTE("division_pick", "division_assignments", "division", "division_assignments", false),
			p.pageCTE(),
		)
	} else {
		ctes = append(ctes,
			p.pageCTE(),
			pickCTE("division_pick", "division_assignments", "division", "division_assignments", true),
		)
	}
	ctes = append(ctes,
		pickCTE("role_pick", "role_assignments", "role", "role_assignments", true),
		stats,
	)

	main := sq.Select(profileColumns...).
		Column("c.email").
		Column("r.role").
		Column("d.division").
		Column("COALESCE(r.role_assignments, 0) AS role_assignments").
		Column("COALESCE(d.division_assignments, 0) AS division_assignments").
		Column("pr.creation_rank").
		Column("pr.total_profiles").
		From("page pg").
		Join("profiles p ON p.id = pg.id").
		Join("profile_rank pr ON pr.user_id = p.id").
		LeftJoin("credentials c ON c.id = p.credential_id").
		LeftJoin("role_pick r ON r.user_id = p.id").
		LeftJoin("division_pick d ON d.user_id = p.id").
		LeftJoin("log_stats s ON s.user_id = p.id").
		OrderBy("p.created_at DESC", "p.id DESC")
	for _, a := range p.Aggregates {
		main = main.Column(fmt.Sprintf("COALESCE(s.%[1]s, 0) AS %[1]s", a.Column))
	}

	return withCTEs(ctes, main)
}

// CountQuery renders the statement counting every profile matching the filter,
// independent of the page window.
func (p Plan) CountQuery() (string, []any, error) {
	if !p.Filtered() {
		return withCTEs(nil, sq.Select("count(*)").From("profiles"))
	}

	main := sq.Select("count(*)").
		From("profiles p").
		Join("division_pick d ON d.user_id = p.id").
		Where(sq.Eq{"d.division": p.Division})

	return withCTEs([]cte{
		pickCTE("division_pick", "division_assignments", "division", "division_assignments", false),
	}, main)
}

var profileColumns = []string{
	"p.id", "p.full_name", "p.username", "p.bio", "p.address", "p.phone",
	"p.profile_data", "p.created_at", "p.updated_at",
}

// withCTEs renders ctes and main into one statement and converts the
// placeholders to $n once, so argument order follows rendering order.
func withCTEs(ctes []cte, main sq.SelectBuilder) (string, []any, error) {
	var (
		b    strings.Builder
		args []any
	)

	for i, c := range ctes {
		sql, cargs, err := c.query.ToSql()
		if err != nil {
			return "", nil, fmt.Errorf("build %s: %w", c.name, err)
		}
		if i == 0 {
			b.WriteString("WITH ")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s AS (%s)", c.name, sql)
		args = append(args, cargs...)
	}

	sql, margs, err := main.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build select: %w", err)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(sql)
	args = append(args, margs...)

	out, err := sq.Dollar.ReplacePlaceholders(b.String())
	if err != nil {
		return "", nil, fmt.Errorf("replace placeholders: %w", err)
	}
	return out, args, nil
}
