package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/userdir-backend/internal/domain"
)

// directoryService defines the minimal interface needed by UsersHandler.
type directoryService interface {
	ListUsers(ctx context.Context, req domain.ListRequest) (*domain.UserListing, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.UserRecord, error)
	DefaultLimit() int
}

// UsersHandler serves the user directory endpoints.
type UsersHandler struct {
	svc directoryService
	log *slog.Logger
}

// NewUsersHandler creates a UsersHandler.
func NewUsersHandler(svc directoryService, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, log: logger.With("handler", "users")}
}

// List handles GET /users?division=&page=&limit=&cursor=.
// Missing or unparsable page and limit fall back to defaults; range
// clamping is left to the service.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := domain.ListRequest{
		Page:  intParam(q.Get("page"), 1),
		Limit: intParam(q.Get("limit"), h.svc.DefaultLimit()),
	}
	if q.Has("division") {
		division := q.Get("division")
		req.Division = &division
	}
	if cursor := q.Get("cursor"); cursor != "" {
		req.Cursor = &cursor
	}

	listing, err := h.svc.ListUsers(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

// Get handles GET /users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	rec, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*rec))
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

type listingResponse struct {
	Users      []userResponse     `json:"users"`
	Pagination paginationResponse `json:"pagination"`
	Summary    summaryResponse    `json:"summary"`
	FilteredBy string             `json:"filteredBy"`
}

type paginationResponse struct {
	Page            int     `json:"page"`
	Limit           int     `json:"limit"`
	TotalPages      int     `json:"totalPages"`
	TotalCount      int     `json:"totalCount"`
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	NextCursor      *string `json:"nextCursor,omitempty"`
}

// summaryResponse covers the returned page only.
type summaryResponse struct {
	ActiveUsers               int            `json:"activeUsers"`
	SeniorUsers               int            `json:"seniorUsers"`
	UsersWithCompleteProfiles int            `json:"usersWithCompleteProfiles"`
	UsersByDivision           map[string]int `json:"usersByDivision"`
}

type userResponse struct {
	ID          string          `json:"id"`
	FullName    string          `json:"fullName"`
	Username    string          `json:"username"`
	Email       *string         `json:"email"`
	Bio         *string         `json:"bio"`
	Address     *string         `json:"address"`
	Phone       *string         `json:"phone"`
	ProfileData json.RawMessage `json:"profileData,omitempty"`
	Role        *string         `json:"role"`
	Division    *string         `json:"division"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Absent on the single-record path.
	TotalLogs          *int `json:"totalLogs,omitempty"`
	LoginCount         *int `json:"loginCount,omitempty"`
	UpdateProfileCount *int `json:"updateProfileCount,omitempty"`
	RecentLogs         *int `json:"recentLogs,omitempty"`
	CreationRank       *int `json:"creationRank,omitempty"`
	TotalProfiles      *int `json:"totalProfiles,omitempty"`

	DisplayName         string         `json:"displayName"`
	BioDisplay          string         `json:"bioDisplay"`
	InstagramHandle     string         `json:"instagramHandle"`
	DaysSinceCreated    int            `json:"daysSinceCreated"`
	IsActive            bool           `json:"isActive"`
	IsSenior            bool           `json:"isSenior"`
	ProfileCompleteness int            `json:"profileCompleteness"`
	HasProfile          bool           `json:"hasProfile"`
	HasBio              bool           `json:"hasBio"`
	HasAddress          bool           `json:"hasAddress"`
	HasPhone            bool           `json:"hasPhone"`
	SocialMedia         map[string]any `json:"socialMedia"`
	Preferences         map[string]any `json:"preferences"`
	Skills              []any          `json:"skills"`
	Interests           []any          `json:"interests"`
}

func toListingResponse(l *domain.UserListing) listingResponse {
	users := make([]userResponse, 0, len(l.Users))
	for _, u := range l.Users {
		users = append(users, toUserResponse(u))
	}

	byDivision := l.Summary.UsersByDivision
	if byDivision == nil {
		byDivision = map[string]int{}
	}

	return listingResponse{
		Users: users,
		Pagination: paginationResponse{
			Page:            l.Pagination.Page,
			Limit:           l.Pagination.Limit,
			TotalPages:      l.Pagination.TotalPages,
			TotalCount:      l.Pagination.TotalCount,
			HasNextPage:     l.Pagination.HasNextPage,
			HasPreviousPage: l.Pagination.HasPreviousPage,
			NextCursor:      l.Pagination.NextCursor,
		},
		Summary: summaryResponse{
			ActiveUsers:               l.Summary.ActiveUsers,
			SeniorUsers:               l.Summary.SeniorUsers,
			UsersWithCompleteProfiles: l.Summary.UsersWithCompleteProfiles,
			UsersByDivision:           byDivision,
		},
		FilteredBy: l.FilteredBy,
	}
}

func toUserResponse(u domain.UserRecord) userResponse {
	resp := userResponse{
		ID:                  u.ID.String(),
		FullName:            u.FullName,
		Username:            u.Username,
		Email:               u.Email,
		Bio:                 u.Bio,
		Address:             u.Address,
		Phone:               u.Phone,
		ProfileData:         json.RawMessage(u.ProfileData),
		Division:            u.Division,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
		CreationRank:        u.CreationRank,
		TotalProfiles:       u.TotalProfiles,
		DisplayName:         u.DisplayName,
		BioDisplay:          u.BioDisplay,
		InstagramHandle:     u.InstagramHandle,
		DaysSinceCreated:    u.DaysSinceCreated,
		IsActive:            u.IsActive,
		IsSenior:            u.IsSenior,
		ProfileCompleteness: u.ProfileCompleteness,
		HasProfile:          u.HasProfile,
		HasBio:              u.HasBio,
		HasAddress:          u.HasAddress,
		HasPhone:            u.HasPhone,
		SocialMedia:         u.SocialMedia,
		Preferences:         u.Preferences,
		Skills:              u.Skills,
		Interests:           u.Interests,
	}
	if u.Role != nil {
		role := u.Role.String()
		resp.Role = &role
	}
	if a := u.Activity; a != nil {
		resp.TotalLogs = &a.TotalLogs
		resp.LoginCount = &a.LoginCount
		resp.UpdateProfileCount = &a.UpdateProfileCount
		resp.RecentLogs = &a.RecentLogs
	}
	return resp
}
