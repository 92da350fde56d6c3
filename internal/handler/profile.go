package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	datastar "github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/guard"
	"github.com/msomdec/village-rental/internal/service"
	"github.com/msomdec/village-rental/internal/view"
)

// ProfileHandler handles the profile page and its updates.
type ProfileHandler struct {
	gateway *service.AuthGateway
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(gateway *service.AuthGateway) *ProfileHandler {
	return &ProfileHandler{gateway: gateway}
}

// HandleProfile renders the profile page.
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, http.StatusOK, "", "")
}

// HandleRefresh re-fetches the profile and patches the profile card. A
// rejected session sends the client to the login page.
func (h *ProfileHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	user, err := h.gateway.RefreshProfile(r.Context(), ClientIDFromContext(r.Context()))

	sse := datastar.NewSSE(w, r)
	if err != nil {
		if isSessionLost(err) {
			sse.Redirect(guard.LoginPath)
			return
		}
		slog.Error("refresh profile", "error", err)
		sse.PatchElementTempl(
			view.Toast("Could not refresh your profile. Please try again."),
			datastar.WithSelectorID(view.ToastID),
			datastar.WithModeInner(),
		)
		return
	}

	sse.PatchElementTempl(view.ProfileCard(user))
}

// HandleUpdate saves the editable profile fields.
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err := h.gateway.UpdateProfile(r.Context(), ClientIDFromContext(r.Context()), domain.ProfileUpdate{
		Name:        strings.TrimSpace(r.FormValue("name")),
		PhoneNumber: strings.TrimSpace(r.FormValue("phoneNumber")),
		Address:     strings.TrimSpace(r.FormValue("address")),
	})
	if err != nil {
		h.handleError(w, r, "update profile", err)
		return
	}
	h.renderProfile(w, r, http.StatusOK, "", "Profile saved.")
}

// HandleChangePassword changes the account password.
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	err := h.gateway.ChangePassword(r.Context(), ClientIDFromContext(r.Context()), r.FormValue("oldPassword"), r.FormValue("newPassword"))
	if err != nil {
		h.handleError(w, r, "change password", err)
		return
	}
	h.renderProfile(w, r, http.StatusOK, "", "Password changed.")
}

func (h *ProfileHandler) handleError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var be *domain.BackendError
	switch {
	case isSessionLost(err):
		redirect(w, r, guard.LoginPath)
	case errors.Is(err, domain.ErrDemoReadOnly):
		h.renderProfile(w, r, http.StatusForbidden, "Profile changes are not available in demo mode.", "")
	case errors.Is(err, domain.ErrInvalidInput):
		h.renderProfile(w, r, http.StatusUnprocessableEntity, inputMessage(err), "")
	case errors.As(err, &be) && be.Message != "":
		h.renderProfile(w, r, http.StatusUnprocessableEntity, be.Message, "")
	case errors.Is(err, domain.ErrNetwork):
		h.renderProfile(w, r, http.StatusServiceUnavailable, "Could not reach the rental service. Please try again.", "")
	default:
		slog.Error(action, "error", err)
		h.renderProfile(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.", "")
	}
}

// renderProfile shows the profile from a fresh snapshot, so a successful
// update is visible immediately.
func (h *ProfileHandler) renderProfile(w http.ResponseWriter, r *http.Request, status int, flash, notice string) {
	s := h.gateway.Current(r.Context(), ClientIDFromContext(r.Context()))
	if !s.Authenticated() {
		redirect(w, r, guard.LoginPath)
		return
	}
	c := chrome(r, "Profile")
	c.User = s.User
	c.Flash = flash
	c.Notice = notice
	renderPage(w, r, status, view.ProfilePage(c, s.User, !s.DemoMode))
}
