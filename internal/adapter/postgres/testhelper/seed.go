package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/userdir-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// ptr returns a pointer to v.
func ptr[T any](v T) *T { return &v }

// ProfileOption customizes a profile before SeedProfile inserts it.
type ProfileOption func(p *domain.Profile)

// WithCreatedAt sets created_at (and updated_at) of the seeded profile.
func WithCreatedAt(ts time.Time) ProfileOption {
	return func(p *domain.Profile) {
		p.CreatedAt = ts.UTC().Truncate(time.Microsecond)
		p.UpdatedAt = p.CreatedAt
	}
}

// WithBio sets the bio; an empty string is stored as ” not NULL.
func WithBio(bio string) ProfileOption {
	return func(p *domain.Profile) { p.Bio = ptr(bio) }
}

// WithAddress sets the address.
func WithAddress(address string) ProfileOption {
	return func(p *domain.Profile) { p.Address = ptr(address) }
}

// WithPhone sets the phone.
func WithPhone(phone string) ProfileOption {
	return func(p *domain.Profile) { p.Phone = ptr(phone) }
}

// WithProfileData sets the structured profile document (raw JSON).
func WithProfileData(doc string) ProfileOption {
	return func(p *domain.Profile) { p.ProfileData = []byte(doc) }
}

// SeedCredential creates a credential with a unique email.
func SeedCredential(t *testing.T, pool *pgxpool.Pool) domain.Credential {
	t.Helper()

	cred := domain.Credential{
		ID:    uuid.New(),
		Email: "testuser-" + uniqueSuffix() + "@example.com",
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO credentials (id, email, password_hash) VALUES ($1, $2, $3)`,
		cred.ID, cred.Email, "not-a-real-hash",
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCredential: %v", err)
	}

	return cred
}

// SeedProfile creates a profile without satellites. credentialID may be nil.
func SeedProfile(t *testing.T, pool *pgxpool.Pool, credentialID *uuid.UUID, opts ...ProfileOption) domain.Profile {
	t.Helper()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := domain.Profile{
		ID:        uuid.New(),
		FullName:  "Test User " + suffix,
		Username:  "user-" + suffix,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(&p)
	}

	var doc any
	if p.ProfileData != nil {
		doc = string(p.ProfileData)
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO profiles (id, credential_id, full_name, username, bio, address, phone, profile_data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)`,
		p.ID, credentialID, p.FullName, p.Username, p.Bio, p.Address, p.Phone, doc, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProfile: %v", err)
	}

	return p
}

// SeedRole assigns a role to a profile. Calling it twice for one profile
// creates a duplicate assignment.
func SeedRole(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, role domain.Role, assignedAt time.Time) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO role_assignments (id, user_id, role, assigned_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), userID, string(role), assignedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRole: %v", err)
	}
}

// SeedDivision assigns a division to a profile. Calling it twice for one
// profile creates a duplicate assignment.
func SeedDivision(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, division string, assignedAt time.Time) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO division_assignments (id, user_id, division, assigned_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), userID, division, assignedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDivision: %v", err)
	}
}

// SeedActivity appends n activity log entries with the given action and
// timestamp and returns them in insertion order.
func SeedActivity(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, action domain.ActivityAction, at time.Time, n int) []domain.ActivityLogEntry {
	t.Helper()

	entries := make([]domain.ActivityLogEntry, 0, n)
	for range n {
		e := domain.ActivityLogEntry{
			ID:        uuid.New(),
			UserID:    userID,
			Action:    action,
			CreatedAt: at.UTC().Truncate(time.Microsecond),
		}
		_, err := pool.Exec(context.Background(),
			`INSERT INTO activity_logs (id, user_id, action, created_at) VALUES ($1, $2, $3, $4)`,
			e.ID, e.UserID, string(e.Action), e.CreatedAt,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedActivity: %v", err)
		}
		entries = append(entries, e)
	}

	return entries
}

// UniqueDivision returns a division name no other test uses.
func UniqueDivision() string {
	return "division-" + uniqueSuffix()
}
