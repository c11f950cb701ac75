package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the role name carried by a role assignment.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// IsSenior reports whether the role belongs to the senior set (admin, moderator).
func (r Role) IsSenior() bool {
	return r == RoleAdmin || r == RoleModerator
}

func (r Role) String() string { return string(r) }

// ActivityAction is the free-text action tag of an activity log entry.
type ActivityAction string

const (
	ActionLogin         ActivityAction = "login"
	ActionUpdateProfile ActivityAction = "update_profile"
)

// Profile is the primary user-facing entity.
type Profile struct {
	ID       uuid.UUID
	FullName string
	Username string
	Bio      *string
	Address  *string
	Phone    *string
	// ProfileData is the raw structured profile document (JSON), nil when absent.
	ProfileData []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credential holds the login identity linked to a profile.
type Credential struct {
	ID    uuid.UUID
	Email string
}

// ActivityLogEntry is one append-only activity record of a profile.
type ActivityLogEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Action    ActivityAction
	CreatedAt time.Time
}
