package handler

import (
	"net/http"

	"github.com/msomdec/village-rental/internal/guard"
	"github.com/msomdec/village-rental/internal/view"
)

// HandleDashboard sends the client to its role's landing page.
func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	redirect(w, r, guard.Landing(string(s.User.Role)))
}

// HandleRoleDashboard renders the dashboard at the request path. The route
// guard has already checked the role.
func HandleRoleDashboard(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, r, http.StatusOK, view.DashboardPage(chrome(r, title), r.URL.Path))
	}
}
