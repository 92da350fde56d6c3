package guard

import "github.com/msomdec/village-rental/internal/domain"

// Landing returns the dashboard path for a role. It is total: an empty role
// lands on the user dashboard and any other text maps to "/" plus its lower
// case form.
func Landing(role string) string {
	r := domain.NormalizeRole(role)
	if r == "" {
		r = domain.RoleUser.Slug()
	}
	return "/" + r
}
