package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msomdec/village-rental/internal/guard"
	"github.com/msomdec/village-rental/internal/service"
)

// Deps are the services the HTTP handlers use.
type Deps struct {
	Gateway   *service.AuthGateway
	Sessions  *service.SessionStore
	Equipment *service.EquipmentService
	ClientIDs *service.ClientIDs
	// LoginLimiter throttles login attempts per remote address. Optional.
	LoginLimiter *service.TokenBucket
	CookieSecure bool
}

// placeholderPages are guarded routes whose feature lives outside the web tier.
var placeholderPages = []struct {
	pattern string
	title   string
	rule    guard.Rule
}{
	{"GET /map", "Nearby equipment", guard.Authenticated},
	{"GET /booking/{id}", "Book equipment", guard.Authenticated},
	{"GET /payment", "Payment", guard.Authenticated},
	{"GET /payment/success", "Payment complete", guard.Authenticated},
	{"GET /bookings", "Bookings", guard.Authenticated},
	{"GET /feedback", "Feedback", guard.Authenticated},
	{"GET /notifications", "Notifications", guard.Authenticated},
	{"GET /borrow-return", "Borrow and return", guard.Authenticated},
	{"GET /fines", "Fines", guard.Authenticated},
	{"GET /report-problem", "Report a problem", guard.Authenticated},
	{"GET /qr-scan", "Scan QR code", guard.Authenticated},
	{"GET /operator/inventory", "Inventory", guard.Roles("operator")},
	{"GET /operator/equipment", "My equipment", guard.Roles("operator")},
	{"GET /operator/equipment/add", "Add equipment", guard.Roles("operator")},
	{"GET /operator/earnings", "Earnings", guard.Roles("operator")},
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	authHandler := NewAuthHandler(d.Gateway, d.LoginLimiter)
	profileHandler := NewProfileHandler(d.Gateway)
	bannerHandler := NewBannerHandler(d.Sessions)
	equipmentHandler := NewEquipmentHandler(d.Equipment)

	// client wraps a handler with client identification and the session
	// snapshot; every page and action goes through it.
	client := func(rule guard.Rule, h http.HandlerFunc) http.Handler {
		return ClientSession(d.ClientIDs, d.CookieSecure,
			Identify(d.Gateway, d.Sessions, Guard(rule, h)))
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Public pages
	mux.Handle("GET /", client(guard.Public, HandleHome))
	mux.Handle("GET /login", client(guard.Public, authHandler.HandleLoginPage))
	mux.Handle("POST /login", client(guard.Public, authHandler.HandleLogin))
	mux.Handle("GET /register", client(guard.Public, authHandler.HandleRegisterPage))
	mux.Handle("POST /register", client(guard.Public, authHandler.HandleRegister))
	mux.Handle("GET /help", client(guard.Public, HandleHelp))
	mux.Handle("POST /logout", client(guard.Public, authHandler.HandleLogout))
	mux.Handle("POST /banner/dismiss", client(guard.Public, bannerHandler.HandleDismiss))
	mux.Handle("GET /api/auth/me", client(guard.Public, authHandler.HandleMe))

	// Role landing pages
	mux.Handle("GET /dashboard", client(guard.Authenticated, HandleDashboard))
	mux.Handle("GET /user", client(guard.Roles("user"), HandleRoleDashboard("Dashboard")))
	mux.Handle("GET /operator", client(guard.Roles("operator"), HandleRoleDashboard("Operator dashboard")))
	mux.Handle("GET /admin", client(guard.Roles("admin"), HandleRoleDashboard("Admin dashboard")))

	// Authenticated pages
	mux.Handle("GET /profile", client(guard.Authenticated, profileHandler.HandleProfile))
	mux.Handle("POST /profile", client(guard.Authenticated, profileHandler.HandleUpdate))
	mux.Handle("POST /profile/refresh", client(guard.Authenticated, profileHandler.HandleRefresh))
	mux.Handle("POST /profile/password", client(guard.Authenticated, profileHandler.HandleChangePassword))
	mux.Handle("GET /equipment", client(guard.Authenticated, equipmentHandler.HandleList))
	mux.Handle("GET /equipment/search", client(guard.Authenticated, equipmentHandler.HandleSearch))
	mux.Handle("GET /equipment/{id}", client(guard.Authenticated, equipmentHandler.HandleDetail))

	for _, p := range placeholderPages {
		mux.Handle(p.pattern, client(p.rule, placeholder(p.title)))
	}
}
