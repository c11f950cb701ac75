package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListRequest is the caller-facing request for one page of the user directory.
// Out-of-range Page/Limit values are clamped by the planner, never rejected.
type ListRequest struct {
	// Division restricts the listing to profiles in that division.
	// nil or blank means no filter.
	Division *string
	Page     int
	Limit    int
	// Cursor switches to keyset pagination; Page is then only echoed back
	// and a previous page always exists.
	Cursor *string
}

// ActivityStats are the per-profile aggregates over the activity log.
type ActivityStats struct {
	TotalLogs          int
	LoginCount         int
	UpdateProfileCount int
	RecentLogs         int
}

// UserRow is one raw row returned by the page fetcher: the profile, its
// one-to-one satellites and the planned aggregates.
type UserRow struct {
	Profile
	Email    *string
	Role     *Role
	Division *string

	// RoleAssignments and DivisionAssignments count the satellite rows seen
	// for the profile before one was picked. Values above 1 are data-integrity
	// anomalies.
	RoleAssignments     int
	DivisionAssignments int

	// Activity, CreationRank and TotalProfiles are nil on the single-record path.
	Activity      *ActivityStats
	CreationRank  *int
	TotalProfiles *int
}

// HasDuplicateSatellites reports whether the row was built from more than one
// role or division assignment.
func (r UserRow) HasDuplicateSatellites() bool {
	return r.RoleAssignments > 1 || r.DivisionAssignments > 1
}

// UserRecord is the externally visible, enriched shape of a user.
type UserRecord struct {
	ID          uuid.UUID
	FullName    string
	Username    string
	Email       *string
	Bio         *string
	Address     *string
	Phone       *string
	ProfileData []byte
	Role        *Role
	Division    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Activity      *ActivityStats
	CreationRank  *int
	TotalProfiles *int

	DisplayName         string
	BioDisplay          string
	InstagramHandle     string
	DaysSinceCreated    int
	IsActive            bool
	IsSenior            bool
	ProfileCompleteness int
	HasProfile          bool
	HasBio              bool
	HasAddress          bool
	HasPhone            bool
	SocialMedia         map[string]any
	Preferences         map[string]any
	Skills              []any
	Interests           []any
}

// Pagination is the page metadata returned with a listing.
type Pagination struct {
	Page            int
	Limit           int
	TotalPages      int
	TotalCount      int
	HasNextPage     bool
	HasPreviousPage bool
	// NextCursor is set when a next page exists.
	NextCursor *string
}

// NewPagination derives page metadata from the total count of the active filter.
func NewPagination(page, limit, totalCount int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}
	return Pagination{
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		TotalCount:      totalCount,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// PageSummary holds statistics folded over the returned page only.
// It is not a dataset-wide count; use Pagination.TotalCount for that.
type PageSummary struct {
	ActiveUsers               int
	SeniorUsers               int
	UsersWithCompleteProfiles int
	UsersByDivision           map[string]int
}

// UserListing is the full response of a directory listing.
type UserListing struct {
	Users      []UserRecord
	Pagination Pagination
	Summary    PageSummary
	// FilteredBy is the resolved division filter, or FilterAll.
	FilteredBy string
}

// FilterAll is reported in UserListing.FilteredBy when no division filter applies.
const FilterAll = "all"

// PageCursor is the keyset position after which the next page starts.
type PageCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode returns the opaque cursor string: base64(created_at + "|" + id).
func (c PageCursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by PageCursor.Encode.
func DecodeCursor(s string) (PageCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return PageCursor{}, NewValidationError("cursor", "malformed encoding")
	}

	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return PageCursor{}, NewValidationError("cursor", "malformed value")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return PageCursor{}, NewValidationError("cursor", fmt.Sprintf("invalid timestamp %q", ts))
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return PageCursor{}, NewValidationError("cursor", fmt.Sprintf("invalid id %q", id))
	}

	return PageCursor{CreatedAt: createdAt, ID: uid}, nil
}
