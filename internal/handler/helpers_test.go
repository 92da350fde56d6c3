package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/village-rental/internal/backend"
	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/handler"
	"github.com/msomdec/village-rental/internal/repository/sqlite"
	"github.com/msomdec/village-rental/internal/service"
)

const testSessionSecret = "test-secret-for-handler-tests-32b!"

type apiAccount struct {
	password string
	user     domain.User
}

// fakeAPI is a minimal REST backend served over httptest.
type fakeAPI struct {
	mu       sync.Mutex
	down     bool
	accounts map[string]*apiAccount // by token
	expired  map[string]bool
	nextID   int64
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{accounts: make(map[string]*apiAccount), expired: make(map[string]bool), nextID: 10}
	srv := httptest.NewServer(api.routes())
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) add(email, password string, role domain.Role) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	token := "tok-" + email
	a.accounts[token] = &apiAccount{
		password: password,
		user:     domain.User{ID: a.nextID, Name: "Test " + role.Slug(), Email: email, PhoneNumber: "+910000", Role: role},
	}
	return token
}

func (a *fakeAPI) expire(token string) {
	a.mu.Lock()
	a.expired[token] = true
	a.mu.Unlock()
}

func (a *fakeAPI) routes() http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
	bearer := func(r *http.Request) (*apiAccount, bool) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		defer a.mu.Unlock()
		acct, ok := a.accounts[token]
		return acct, ok && !a.expired[token]
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if a.down {
			reply(w, http.StatusServiceUnavailable, map[string]string{"error": "down"})
			return
		}
		reply(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		a.mu.Lock()
		defer a.mu.Unlock()
		for token, acct := range a.accounts {
			if acct.user.Email == body.Email && acct.password == body.Password {
				reply(w, http.StatusOK, map[string]any{"token": token, "user": acct.user})
				return
			}
		}
		reply(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name, Email, Password, Phone, Role string }
		json.NewDecoder(r.Body).Decode(&body)
		a.mu.Lock()
		for _, acct := range a.accounts {
			if acct.user.Email == body.Email {
				a.mu.Unlock()
				reply(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
				return
			}
		}
		a.mu.Unlock()
		role, _ := domain.ParseRole(body.Role)
		token := a.add(body.Email, body.Password, role)
		a.mu.Lock()
		a.accounts[token].user.Name = body.Name
		u := a.accounts[token].user
		a.mu.Unlock()
		reply(w, http.StatusCreated, map[string]any{"token": token, "user": u})
	})
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		acct, ok := bearer(r)
		if !ok {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
			return
		}
		a.mu.Lock()
		u := acct.user
		a.mu.Unlock()
		reply(w, http.StatusOK, u)
	})
	mux.HandleFunc("GET /equipment", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearer(r); !ok {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
			return
		}
		reply(w, http.StatusOK, []domain.Equipment{
			{ID: 1, Name: "Blue Tractor", Category: "Tractor", Available: true, Location: domain.Location{City: "Thrissur"}},
			{ID: 2, Name: "Borewell Pump", Category: "Pump", Available: true, Location: domain.Location{City: "Kochi"}},
		})
	})
	return mux
}

type testServer struct {
	URL     string
	gateway *service.AuthGateway
	storage domain.Storage
}

// newTestServer wires the full handler stack against api. A nil api means
// an unreachable backend, which puts the server in demo mode.
func newTestServer(t *testing.T, apiURL string) *testServer {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if apiURL == "" {
		apiURL = "http://127.0.0.1:1"
	}
	client := backend.NewClient(apiURL, 2*time.Second)
	store := service.NewSessionStore(db.Storage())
	gateway, err := service.NewAuthGateway(client, store, service.GatewayOptions{
		ProbeTimeout: time.Second,
		BcryptCost:   bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("NewAuthGateway: %v", err)
	}
	gateway.Init(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Gateway:      gateway,
		Sessions:     store,
		Equipment:    service.NewEquipmentService(gateway, client),
		ClientIDs:    service.NewClientIDs(testSessionSecret),
		LoginLimiter: service.NewTokenBucket(ctx, 1, 20),
	})

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return &testServer{URL: srv.URL, gateway: gateway, storage: db.Storage()}
}

// newBrowser returns a client with a cookie jar that does not follow redirects.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
}

func expectRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect to %s, got %d", want, resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != want {
		t.Fatalf("expected redirect to %s, got %s", want, loc)
	}
}
