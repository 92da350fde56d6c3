package handler

import (
	"context"
	"log/slog"
	"net/http"

	datastar "github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/guard"
	"github.com/msomdec/village-rental/internal/metrics"
	"github.com/msomdec/village-rental/internal/service"
)

type contextKey string

const (
	clientIDContextKey contextKey = "client_id"
	stateContextKey    contextKey = "state"
)

// ClientCookie is the name of the cookie carrying the signed client id.
const ClientCookie = "sid"

// requestState is the session snapshot taken once per request.
type requestState struct {
	session    domain.Session
	mode       domain.Mode
	showBanner bool
}

// ClientIDFromContext returns the client id placed by ClientSession, or "".
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDContextKey).(string)
	return id
}

// SessionFromContext returns the session snapshot placed by Identify. It is
// anonymous if Identify did not run.
func SessionFromContext(ctx context.Context) domain.Session {
	return stateFromContext(ctx).session
}

// WithSession returns a context carrying s as the request's session snapshot.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, stateContextKey, requestState{session: s})
}

func stateFromContext(ctx context.Context) requestState {
	st, _ := ctx.Value(stateContextKey).(requestState)
	return st
}

// ClientSession identifies the browser by its sid cookie, issuing a new
// signed id when the cookie is missing or invalid. The id is injected into
// the request context.
func ClientSession(ids *service.ClientIDs, secure bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(ClientCookie); err == nil {
			id, _ = ids.Parse(c.Value)
		}

		if id == "" {
			newID, token, err := ids.Issue()
			if err != nil {
				slog.Error("issue client id", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			id = newID
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(ids.TTL().Seconds()),
			})
		}

		ctx := context.WithValue(r.Context(), clientIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identify snapshots the client's session from the gateway and injects it
// into the request context. It must run inside ClientSession.
func Identify(gateway *service.AuthGateway, store *service.SessionStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ns := ClientIDFromContext(r.Context())
		st := requestState{
			session: gateway.Current(r.Context(), ns),
			mode:    gateway.Mode(),
		}
		if st.mode == domain.ModeDemo {
			st.showBanner = !store.BannerDismissed(r.Context(), ns)
		}

		ctx := context.WithValue(r.Context(), stateContextKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Guard applies rule to the request's session snapshot. Denied requests are
// redirected without any message.
func Guard(rule guard.Rule, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := rule.Check(SessionFromContext(r.Context()))
		if d.Allow {
			metrics.GuardDecisionsTotal.WithLabelValues("allow").Inc()
			next.ServeHTTP(w, r)
			return
		}

		outcome := "landing"
		if d.Redirect == guard.LoginPath {
			outcome = "login"
		}
		metrics.GuardDecisionsTotal.WithLabelValues(outcome).Inc()
		redirect(w, r, d.Redirect)
	})
}

// redirect sends the client to path, through the SSE stream for datastar
// requests.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Datastar-Request") == "true" {
		sse := datastar.NewSSE(w, r)
		if err := sse.Redirect(path); err != nil {
			slog.Error("sse redirect", "error", err)
		}
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// SecurityHeaders sets response headers that apply to every page.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// datastar evaluates expressions with the Function constructor.
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://cdn.jsdelivr.net 'unsafe-eval'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
