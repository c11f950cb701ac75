package directory

import "github.com/heartmarshall/userdir-backend/internal/domain"

// completeProfileThreshold is exclusive: only a full score counts as complete.
const completeProfileThreshold = 75

// summarize folds the returned page, not the filtered set. Users without a
// division are left out of UsersByDivision.
func summarize(users []domain.UserRecord) domain.PageSummary {
	s := domain.PageSummary{UsersByDivision: make(map[string]int)}

	for _, u := range users {
		if u.IsActive {
			s.ActiveUsers++
		}
		if u.IsSenior {
			s.SeniorUsers++
		}
		if u.ProfileCompleteness > completeProfileThreshold {
			s.UsersWithCompleteProfiles++
		}
		if u.Division != nil {
			s.UsersByDivision[*u.Division]++
		}
	}

	return s
}
