package directory

import (
	"math"
	"time"

	"github.com/tidwall/gjson"

	"github.com/heartmarshall/userdir-backend/internal/domain"
)

const (
	noRoleMarker      = "no role"
	noBioMarker       = "No bio available"
	noInstagramMarker = "No Instagram"

	// activeLogThreshold is exclusive: more than this many logs is active.
	activeLogThreshold = 5
	// completenessStep is the score of each present completeness field.
	completenessStep = 25
)

// Profile document paths.
const (
	pathInstagram   = "socialMedia.instagram"
	pathSocialMedia = "socialMedia"
	pathPreferences = "preferences"
	pathSkills      = "skills"
	pathInterests   = "interests"
)

// project maps a raw row to the external record. Every derived field depends
// only on the row itself and now.
func project(row domain.UserRow, now time.Time) domain.UserRecord {
	doc := parseDocument(row.ProfileData)
	hasDoc := doc.Exists() && doc.Type != gjson.Null

	rec := domain.UserRecord{
		ID:            row.ID,
		FullName:      row.FullName,
		Username:      row.Username,
		Email:         row.Email,
		Bio:           row.Bio,
		Address:       row.Address,
		Phone:         row.Phone,
		ProfileData:   row.ProfileData,
		Role:          row.Role,
		Division:      row.Division,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		Activity:      row.Activity,
		CreationRank:  row.CreationRank,
		TotalProfiles: row.TotalProfiles,

		DisplayName:      displayName(row.FullName, row.Role),
		BioDisplay:       bioDisplay(row.Bio),
		InstagramHandle:  noInstagramMarker,
		DaysSinceCreated: daysBetween(row.CreatedAt, now),
		IsActive:         row.Activity != nil && row.Activity.TotalLogs > activeLogThreshold,
		IsSenior:         row.Role != nil && row.Role.IsSenior(),
		HasProfile:       hasDoc,
		HasBio:           row.Bio != nil,
		HasAddress:       row.Address != nil,
		HasPhone:         row.Phone != nil,
		SocialMedia:      map[string]any{},
		Preferences:      map[string]any{},
		Skills:           []any{},
		Interests:        []any{},
	}

	rec.ProfileCompleteness = completeness(rec.HasBio, rec.HasAddress, rec.HasPhone, rec.HasProfile)

	if hasDoc {
		if ig := doc.Get(pathInstagram); ig.Type == gjson.String && ig.Str != "" {
			rec.InstagramHandle = ig.Str
		}
		rec.SocialMedia = objectAt(doc, pathSocialMedia)
		rec.Preferences = objectAt(doc, pathPreferences)
		rec.Skills = arrayAt(doc, pathSkills)
		rec.Interests = arrayAt(doc, pathInterests)
	}

	return rec
}

func displayName(fullName string, role *domain.Role) string {
	r := noRoleMarker
	if role != nil && *role != "" {
		r = role.String()
	}
	return fullName + " (" + r + ")"
}

// bioDisplay collapses NULL and empty bios to one marker.
func bioDisplay(bio *string) string {
	if bio == nil || *bio == "" {
		return noBioMarker
	}
	return *bio
}

// daysBetween is floor((now - from) / 24h).
func daysBetween(from, now time.Time) int {
	return int(math.Floor(now.Sub(from).Hours() / 24))
}

// completeness scores the fixed four-field basis in steps of 25.
func completeness(present ...bool) int {
	score := 0
	for _, p := range present {
		if p {
			score += completenessStep
		}
	}
	return score
}

// parseDocument returns an empty result for a missing or malformed document.
func parseDocument(raw []byte) gjson.Result {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}
	}
	return gjson.ParseBytes(raw)
}

func objectAt(doc gjson.Result, path string) map[string]any {
	v := doc.Get(path)
	if !v.IsObject() {
		return map[string]any{}
	}
	if m, ok := v.Value().(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func arrayAt(doc gjson.Result, path string) []any {
	v := doc.Get(path)
	if !v.IsArray() {
		return []any{}
	}
	if a, ok := v.Value().([]any); ok {
		return a
	}
	return []any{}
}
