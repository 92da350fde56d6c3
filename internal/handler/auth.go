package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/guard"
	"github.com/msomdec/village-rental/internal/service"
	"github.com/msomdec/village-rental/internal/view"
)

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	gateway *service.AuthGateway
	limiter *service.TokenBucket
}

// NewAuthHandler creates a new AuthHandler. limiter may be nil.
func NewAuthHandler(gateway *service.AuthGateway, limiter *service.TokenBucket) *AuthHandler {
	return &AuthHandler{gateway: gateway, limiter: limiter}
}

// HandleLoginPage renders the login form.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.LoginPage(chrome(r, "Log in"), ""))
}

// HandleLogin processes the login form. On success the client is sent to
// the landing page of the user the login returned.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	fail := func(status int, msg string) {
		c := chrome(r, "Log in")
		c.Flash = msg
		renderPage(w, r, status, view.LoginPage(c, email))
	}

	if h.limiter != nil && !h.limiter.Allow(clientIP(r)) {
		fail(http.StatusTooManyRequests, "Too many login attempts. Please wait a moment and try again.")
		return
	}
	if email == "" || password == "" {
		fail(http.StatusUnprocessableEntity, "Please fill in all fields.")
		return
	}

	user, err := h.gateway.Login(r.Context(), ClientIDFromContext(r.Context()), email, password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			fail(http.StatusUnauthorized, "Invalid email or password.")
		case errors.Is(err, domain.ErrNetwork):
			fail(http.StatusServiceUnavailable, "Could not reach the rental service. Please try again.")
		default:
			slog.Error("login user", "error", err)
			fail(http.StatusInternalServerError, "Login failed. Please try again.")
		}
		return
	}

	http.Redirect(w, r, guard.Landing(string(user.Role)), http.StatusSeeOther)
}

// HandleRegisterPage renders the registration form.
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.RegisterPage(chrome(r, "Register"), view.RegisterForm{Role: string(domain.RoleUser)}))
}

// HandleRegister processes the registration form.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := view.RegisterForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		PhoneNumber: strings.TrimSpace(r.FormValue("phoneNumber")),
		Role:        r.FormValue("role"),
		Address:     strings.TrimSpace(r.FormValue("address")),
	}
	password := r.FormValue("password")

	fail := func(status int, msg string) {
		c := chrome(r, "Register")
		c.Flash = msg
		renderPage(w, r, status, view.RegisterPage(c, form))
	}

	// Demo mode has no account creation, whatever the form holds.
	if h.gateway.Init(r.Context()) == domain.ModeDemo {
		fail(http.StatusServiceUnavailable, "Registration is not available in demo mode.")
		return
	}
	if password != r.FormValue("confirmPassword") {
		fail(http.StatusUnprocessableEntity, "Passwords do not match.")
		return
	}
	role, err := domain.ParseRole(form.Role)
	if err != nil {
		fail(http.StatusUnprocessableEntity, "Please choose a valid account type.")
		return
	}

	user, err := h.gateway.Register(r.Context(), ClientIDFromContext(r.Context()), domain.Registration{
		Name:        form.Name,
		Email:       form.Email,
		Password:    password,
		PhoneNumber: form.PhoneNumber,
		Role:        role,
		Address:     form.Address,
	})
	if err != nil {
		var be *domain.BackendError
		switch {
		case errors.Is(err, domain.ErrRegistrationUnavailable):
			fail(http.StatusServiceUnavailable, "Registration is not available in demo mode.")
		case errors.Is(err, domain.ErrDuplicateEmail):
			fail(http.StatusConflict, "An account with that email already exists.")
		case errors.Is(err, domain.ErrInvalidInput):
			fail(http.StatusUnprocessableEntity, inputMessage(err))
		case errors.Is(err, domain.ErrNetwork):
			fail(http.StatusServiceUnavailable, "Could not reach the rental service. Please try again.")
		case errors.As(err, &be) && be.Message != "":
			fail(http.StatusUnprocessableEntity, be.Message)
		default:
			slog.Error("register user", "error", err)
			fail(http.StatusInternalServerError, "Registration failed. Please try again.")
		}
		return
	}

	http.Redirect(w, r, guard.Landing(string(user.Role)), http.StatusSeeOther)
}

// HandleLogout clears the client's session and returns to the login page.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.Logout(r.Context(), ClientIDFromContext(r.Context())); err != nil {
		slog.Error("logout", "error", err)
	}
	redirect(w, r, guard.LoginPath)
}

// HandleMe returns the client's session snapshot.
// GET /api/auth/me
// Response: {"authenticated":bool,"demoMode":bool,"mode":"...","user":{...}|null}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	st := stateFromContext(r.Context())
	writeJSON(w, http.StatusOK, toSessionDTO(st.session, st.mode))
}

// inputMessage strips the sentinel prefix from a validation error.
func inputMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "Please check the form and try again."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
