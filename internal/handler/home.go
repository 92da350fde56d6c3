package handler

import (
	"net/http"

	"github.com/msomdec/village-rental/internal/view"
)

// chrome builds the page frame from the request's session snapshot.
func chrome(r *http.Request, title string) view.Chrome {
	st := stateFromContext(r.Context())
	return view.Chrome{
		Title:      title,
		User:       st.session.User,
		DemoBanner: st.showBanner,
	}
}

// HandleHome renders the landing page. Any other unmatched path is sent
// back to it.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderPage(w, r, http.StatusOK, view.HomePage(chrome(r, "")))
}

// HandleHelp renders the help page.
func HandleHelp(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.HelpPage(chrome(r, "Help")))
}

// placeholder renders a guarded page for a feature outside the web tier.
func placeholder(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, r, http.StatusOK, view.PlaceholderPage(chrome(r, title)))
	}
}
