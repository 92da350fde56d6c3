package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/service"
)

func TestAuthGateway_ProbeSuccessEntersBackendMode(t *testing.T) {
	gw, _ := newTestGateway(t, newFakeBackend(), service.GatewayOptions{})

	if mode := gw.Mode(); mode != domain.ModeInitializing {
		t.Fatalf("expected initializing before Init, got %s", mode)
	}
	if mode := gw.Init(context.Background()); mode != domain.ModeBackend {
		t.Fatalf("expected backend mode, got %s", mode)
	}
}

func TestAuthGateway_ProbeFailureEntersDemoMode(t *testing.T) {
	b := newFakeBackend()
	b.healthErr = fmt.Errorf("%w: dial tcp: connection refused", domain.ErrNetwork)
	gw, _ := newTestGateway(t, b, service.GatewayOptions{})

	if mode := gw.Init(context.Background()); mode != domain.ModeDemo {
		t.Fatalf("expected demo mode, got %s", mode)
	}
}

func TestAuthGateway_ProbeTimeoutEntersDemoMode(t *testing.T) {
	b := newFakeBackend()
	b.healthDelay = time.Second
	gw, _ := newTestGateway(t, b, service.GatewayOptions{ProbeTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	if mode := gw.Init(ctx); mode != domain.ModeDemo {
		t.Fatalf("expected demo mode after timeout, got %s", mode)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("probe was not bounded by its timeout: %v", elapsed)
	}

	// Only the admin demo pair is accepted from here on.
	_, err := gw.Login(ctx, "c1", "user@x.com", "anything")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if gw.Current(ctx, "c1").Authenticated() {
		t.Fatal("expected anonymous after failed login")
	}
}

func TestAuthGateway_ProbeRunsOnce(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("r@x.com", "pw1234", domain.RoleUser)
	gw, _ := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	gw.Init(ctx)
	gw.Init(ctx)
	gw.Current(ctx, "c1")
	gw.Login(ctx, "c1", "r@x.com", "pw1234")
	gw.Logout(ctx, "c1")

	if n := b.count("health"); n != 1 {
		t.Fatalf("expected exactly one health probe, got %d", n)
	}
}

func TestAuthGateway_OperationsInitImplicitly(t *testing.T) {
	b := newFakeBackend()
	b.healthErr = errors.New("down")
	gw, _ := newTestGateway(t, b, service.GatewayOptions{})

	if _, err := gw.Login(context.Background(), "c1", service.DemoEmail, "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gw.Mode() != domain.ModeDemo {
		t.Fatalf("expected demo mode, got %s", gw.Mode())
	}
}

func TestAuthGateway_ProbeIgnoresCallerCancellation(t *testing.T) {
	gw, _ := newTestGateway(t, newFakeBackend(), service.GatewayOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if mode := gw.Init(ctx); mode != domain.ModeBackend {
		t.Fatalf("expected backend mode despite cancelled caller, got %s", mode)
	}
}

func TestAuthGateway_ForceDemoSkipsProbe(t *testing.T) {
	b := newFakeBackend()
	gw, _ := newTestGateway(t, b, service.GatewayOptions{ForceDemo: true})

	if mode := gw.Init(context.Background()); mode != domain.ModeDemo {
		t.Fatalf("expected demo mode, got %s", mode)
	}
	if n := b.count("health"); n != 0 {
		t.Fatalf("expected no probe, got %d", n)
	}
}

func TestAuthGateway_DemoLogin_Success(t *testing.T) {
	gw, store, _ := newDemoGateway(t)
	ctx := context.Background()

	user, err := gw.Login(ctx, "c1", "admin@village.com", "password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", user.Role)
	}
	if user.ID != 1 || user.Email != "admin@village.com" {
		t.Fatalf("unexpected demo user %+v", user)
	}

	cur := gw.Current(ctx, "c1")
	if !cur.Authenticated() || !cur.DemoMode {
		t.Fatalf("expected authenticated demo session, got %+v", cur)
	}

	stored, err := store.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored.Token != "demo-token" {
		t.Fatalf("expected sentinel token, got %q", stored.Token)
	}
}

func TestAuthGateway_DemoLogin_Rejected(t *testing.T) {
	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@village.com", "wrong"},
		{"operator account", "operator@village.com", "password"},
		{"user account", "user@village.com", "password"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw, _, storage := newDemoGateway(t)
			ctx := context.Background()

			_, err := gw.Login(ctx, "c1", tc.email, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if gw.Current(ctx, "c1").Authenticated() {
				t.Fatal("expected anonymous after rejected login")
			}
			assertStoreEmpty(t, storage, "c1")
		})
	}
}

func TestAuthGateway_DemoRegister_Unavailable(t *testing.T) {
	gw, _, storage := newDemoGateway(t)
	ctx := context.Background()

	regs := []domain.Registration{
		{Name: "Valid", Email: "v@x.com", Password: "secret1", PhoneNumber: "1", Role: domain.RoleUser},
		{},
	}
	for _, reg := range regs {
		_, err := gw.Register(ctx, "c1", reg)
		if !errors.Is(err, domain.ErrRegistrationUnavailable) {
			t.Fatalf("expected ErrRegistrationUnavailable, got %v", err)
		}
	}
	if gw.Current(ctx, "c1").Authenticated() {
		t.Fatal("registration must not authenticate in demo mode")
	}
	assertStoreEmpty(t, storage, "c1")
}

func TestAuthGateway_DemoDoesNotRehydrate(t *testing.T) {
	b := newFakeBackend()
	b.healthErr = errors.New("down")
	gw, store := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	if err := store.Save(ctx, "c1", "demo-token", &domain.User{ID: 1, Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if gw.Current(ctx, "c1").Authenticated() {
		t.Fatal("demo mode must not rehydrate from storage")
	}
}

func TestAuthGateway_BackendLogin_PersistsSession(t *testing.T) {
	b := newFakeBackend()
	acct := b.addAccount("op@x.com", "secret1", domain.RoleOperator)
	gw, store := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	user, err := gw.Login(ctx, "c1", "op@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Role != domain.RoleOperator {
		t.Fatalf("expected OPERATOR, got %s", user.Role)
	}

	stored, err := store.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored.Token != acct.token || stored.User.ID != acct.user.ID {
		t.Fatalf("stored session does not match login: %+v", stored)
	}

	cur := gw.Current(ctx, "c1")
	if !cur.Authenticated() || cur.DemoMode || cur.Token != acct.token {
		t.Fatalf("unexpected current session %+v", cur)
	}
}

func TestAuthGateway_BackendLogin_PropagatesErrors(t *testing.T) {
	tests := []struct {
		name     string
		loginErr error
		want     error
	}{
		{"invalid credentials", nil, domain.ErrInvalidCredentials},
		{"network", fmt.Errorf("%w: connection reset", domain.ErrNetwork), domain.ErrNetwork},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newFakeBackend()
			b.loginErr = tc.loginErr
			gw, _, storage := newTestGatewayWithStorage(t, b, service.GatewayOptions{})
			ctx := context.Background()

			_, err := gw.Login(ctx, "c1", "nobody@x.com", "pw")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if gw.Current(ctx, "c1").Authenticated() {
				t.Fatal("failed login must not authenticate")
			}
			assertStoreEmpty(t, storage, "c1")
		})
	}
}

func TestAuthGateway_BackendRehydratesFromStorage(t *testing.T) {
	b := newFakeBackend()
	storage := newTestStorage(t)
	store := service.NewSessionStore(storage)
	ctx := context.Background()

	if err := store.Save(ctx, "c1", "tok-prev", &domain.User{ID: 9, Name: "Prev", Role: domain.RoleOperator}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	gw, err := service.NewAuthGateway(b, store, service.GatewayOptions{BcryptCost: 4})
	if err != nil {
		t.Fatalf("NewAuthGateway: %v", err)
	}

	cur := gw.Current(ctx, "c1")
	if !cur.Authenticated() {
		t.Fatal("expected rehydrated session")
	}
	if cur.User.ID != 9 || cur.Token != "tok-prev" {
		t.Fatalf("unexpected rehydrated session %+v", cur)
	}

	if gw.Current(ctx, "c2").Authenticated() {
		t.Fatal("other clients must stay anonymous")
	}
}

func TestAuthGateway_BackendMalformedStorageIsAnonymous(t *testing.T) {
	b := newFakeBackend()
	gw, _, storage := newTestGatewayWithStorage(t, b, service.GatewayOptions{})
	ctx := context.Background()

	storage.Set(ctx, "c1", "token", "tok")
	storage.Set(ctx, "c1", "user", "{broken")

	if gw.Current(ctx, "c1").Authenticated() {
		t.Fatal("malformed stored session must be treated as absent")
	}
}

func TestAuthGateway_CurrentFollowsStorage(t *testing.T) {
	tests := []struct {
		name     string
		demo     bool
		email    string
		password string
	}{
		{"demo", true, "admin@village.com", "password"},
		{"backend", false, "r@x.com", "secret1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newFakeBackend()
			b.addAccount("r@x.com", "secret1", domain.RoleUser)
			if tc.demo {
				b.healthErr = errors.New("down")
			}
			gw, store, storage := newTestGatewayWithStorage(t, b, service.GatewayOptions{})
			ctx := context.Background()

			user, err := gw.Login(ctx, "c1", tc.email, tc.password)
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if !gw.Current(ctx, "c1").Authenticated() {
				t.Fatal("expected authenticated after login")
			}

			// Keys removed behind the gateway's back, as when a TTL expires.
			if err := storage.Delete(ctx, "c1", "token", "user"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			cur := gw.Current(ctx, "c1")
			if cur.Authenticated() || cur.User != nil {
				t.Fatalf("expected anonymous once storage is empty, got %+v", cur)
			}
			if cur.DemoMode != tc.demo {
				t.Fatalf("expected DemoMode=%v, got %v", tc.demo, cur.DemoMode)
			}

			// Restoring the keys later does not revive a demo session.
			token := "tok-r@x.com"
			if tc.demo {
				token = "demo-token"
			}
			if err := store.Save(ctx, "c1", token, user); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if got := gw.Current(ctx, "c1").Authenticated(); got == tc.demo {
				t.Fatalf("after restoring keys authenticated=%v", got)
			}
		})
	}
}

func TestAuthGateway_LogoutVisibleToGatewaysSharingStorage(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("r@x.com", "secret1", domain.RoleUser)
	storage := newTestStorage(t)
	store := service.NewSessionStore(storage)
	ctx := context.Background()

	newGateway := func() *service.AuthGateway {
		gw, err := service.NewAuthGateway(b, store, service.GatewayOptions{BcryptCost: 4})
		if err != nil {
			t.Fatalf("NewAuthGateway: %v", err)
		}
		return gw
	}
	a, other := newGateway(), newGateway()

	if _, err := a.Login(ctx, "c1", "r@x.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !other.Current(ctx, "c1").Authenticated() {
		t.Fatal("expected the second gateway to see the stored session")
	}

	if err := a.Logout(ctx, "c1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if cur := other.Current(ctx, "c1"); cur.Authenticated() {
		t.Fatalf("expected anonymous on the second gateway after logout, got %+v", cur)
	}
}

func TestAuthGateway_BackendDiscardsStoredDemoSession(t *testing.T) {
	b := newFakeBackend()
	gw, store, storage := newTestGatewayWithStorage(t, b, service.GatewayOptions{})
	ctx := context.Background()

	admin := &domain.User{ID: 1, Name: "Admin User", Email: "admin@village.com", Role: domain.RoleAdmin}
	if err := store.Save(ctx, "c1", "demo-token", admin); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if gw.Current(ctx, "c1").Authenticated() {
		t.Fatal("a stored demo session must not authenticate in backend mode")
	}
	assertStoreEmpty(t, storage, "c1")
}

func TestAuthGateway_LoginLogoutLeavesStoreEmpty(t *testing.T) {
	tests := []struct {
		name     string
		demo     bool
		email    string
		password string
	}{
		{"demo", true, "admin@village.com", "password"},
		{"backend", false, "r@x.com", "secret1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newFakeBackend()
			b.addAccount("r@x.com", "secret1", domain.RoleUser)
			if tc.demo {
				b.healthErr = errors.New("down")
			}
			gw, _, storage := newTestGatewayWithStorage(t, b, service.GatewayOptions{})
			ctx := context.Background()

			for i := 0; i < 3; i++ {
				if _, err := gw.Login(ctx, "c1", tc.email, tc.password); err != nil {
					t.Fatalf("Login %d: %v", i, err)
				}
				if err := gw.Logout(ctx, "c1"); err != nil {
					t.Fatalf("Logout %d: %v", i, err)
				}
				if gw.Current(ctx, "c1").Authenticated() {
					t.Fatalf("expected anonymous after logout %d", i)
				}
				assertStoreEmpty(t, storage, "c1")
			}
		})
	}
}

func TestAuthGateway_LogoutIsIdempotent(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("r@x.com", "secret1", domain.RoleUser)
	gw, _, storage := newTestGatewayWithStorage(t, b, service.GatewayOptions{})
	ctx := context.Background()

	if _, err := gw.Login(ctx, "c1", "r@x.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := gw.Logout(ctx, "c1"); err != nil {
			t.Fatalf("Logout %d: %v", i, err)
		}
		cur := gw.Current(ctx, "c1")
		if cur.Authenticated() || cur.Token != "" || cur.User != nil {
			t.Fatalf("expected empty session after logout %d, got %+v", i, cur)
		}
		assertStoreEmpty(t, storage, "c1")
	}

	// Logout of a client that never logged in is fine too.
	if err := gw.Logout(ctx, "never"); err != nil {
		t.Fatalf("Logout unknown client: %v", err)
	}
}

func TestAuthGateway_TokenAndUserTogether(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("r@x.com", "secret1", domain.RoleUser)
	gw, _ := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	check := func(step string) {
		t.Helper()
		cur := gw.Current(ctx, "c1")
		if (cur.Token != "") != (cur.User != nil) {
			t.Fatalf("%s: token and user out of step: %+v", step, cur)
		}
	}

	check("start")
	gw.Login(ctx, "c1", "r@x.com", "wrong")
	check("failed login")
	gw.Login(ctx, "c1", "r@x.com", "secret1")
	check("login")
	gw.RefreshProfile(ctx, "c1")
	check("refresh")
	gw.Logout(ctx, "c1")
	check("logout")
}

func TestAuthGateway_CurrentReturnsCopy(t *testing.T) {
	gw, _, _ := newDemoGateway(t)
	ctx := context.Background()

	user, err := gw.Login(ctx, "c1", "admin@village.com", "password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	user.Role = domain.RoleUser

	cur := gw.Current(ctx, "c1")
	cur.User.Name = "Mutated"

	again := gw.Current(ctx, "c1")
	if again.User.Role != domain.RoleAdmin || again.User.Name != "Admin User" {
		t.Fatalf("gateway state leaked to caller: %+v", again.User)
	}
}

func TestAuthGateway_BackendRegister(t *testing.T) {
	b := newFakeBackend()
	gw, store := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	reg := domain.Registration{
		Name:        "New Operator",
		Email:       "new@x.com",
		Password:    "secret1",
		PhoneNumber: "+91999",
		Role:        domain.RoleOperator,
	}
	user, err := gw.Register(ctx, "c1", reg)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleOperator || user.Name != "New Operator" {
		t.Fatalf("unexpected registered user %+v", user)
	}
	if _, err := store.Load(ctx, "c1"); err != nil {
		t.Fatalf("expected persisted session after register: %v", err)
	}

	_, err = gw.Register(ctx, "c2", reg)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthGateway_BackendRegister_Validation(t *testing.T) {
	b := newFakeBackend()
	gw, _ := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	tests := []struct {
		name string
		reg  domain.Registration
	}{
		{"missing name", domain.Registration{Email: "a@x.com", Password: "secret1", PhoneNumber: "1", Role: domain.RoleUser}},
		{"bad email", domain.Registration{Name: "A", Email: "not-an-email", Password: "secret1", PhoneNumber: "1", Role: domain.RoleUser}},
		{"short password", domain.Registration{Name: "A", Email: "a@x.com", Password: "123", PhoneNumber: "1", Role: domain.RoleUser}},
		{"missing phone", domain.Registration{Name: "A", Email: "a@x.com", Password: "secret1", Role: domain.RoleUser}},
		{"bad role", domain.Registration{Name: "A", Email: "a@x.com", Password: "secret1", PhoneNumber: "1", Role: "FARMER"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gw.Register(ctx, "c1", tc.reg)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if n := b.count("register"); n != 0 {
		t.Fatalf("invalid registrations must not reach the backend, got %d calls", n)
	}
}

func TestAuthGateway_RefreshProfile_ReplacesUser(t *testing.T) {
	b := newFakeBackend()
	acct := b.addAccount("r@x.com", "secret1", domain.RoleUser)
	gw, store := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	if _, err := gw.Login(ctx, "c1", "r@x.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	b.mu.Lock()
	acct.user.Name = "Renamed"
	acct.user.Address = "Palakkad"
	b.mu.Unlock()

	user, err := gw.RefreshProfile(ctx, "c1")
	if err != nil {
		t.Fatalf("RefreshProfile: %v", err)
	}
	if user.Name != "Renamed" {
		t.Fatalf("expected refreshed name, got %q", user.Name)
	}
	if cur := gw.Current(ctx, "c1"); cur.User.Address != "Palakkad" {
		t.Fatalf("expected session user replaced, got %+v", cur.User)
	}
	stored, err := store.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored.User.Name != "Renamed" {
		t.Fatalf("expected stored user replaced, got %+v", stored.User)
	}
}

func TestAuthGateway_RefreshProfile_ExpiredForcesLogout(t *testing.T) {
	b := newFakeBackend()
	acct := b.addAccount("r@x.com", "secret1", domain.RoleUser)
	gw, _, storage := newTestGatewayWithStorage(t, b, service.GatewayOptions{})
	ctx := context.Background()

	if _, err := gw.Login(ctx, "c1", "r@x.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	b.expire(acct.token)

	_, err := gw.RefreshProfile(ctx, "c1")
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if gw.Current(ctx, "c1").Authenticated() {
		t.Fatal("expected forced logout")
	}
	assertStoreEmpty(t, storage, "c1")
}

func TestAuthGateway_RefreshProfile_DemoIsNoop(t *testing.T) {
	gw, _, _ := newDemoGateway(t)
	ctx := context.Background()

	if _, err := gw.Login(ctx, "c1", "admin@village.com", "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	user, err := gw.RefreshProfile(ctx, "c1")
	if err != nil {
		t.Fatalf("RefreshProfile: %v", err)
	}
	if user.Name != "Admin User" {
		t.Fatalf("demo identity changed: %+v", user)
	}
}

func TestAuthGateway_RefreshProfile_Anonymous(t *testing.T) {
	gw, _ := newTestGateway(t, newFakeBackend(), service.GatewayOptions{})

	_, err := gw.RefreshProfile(context.Background(), "c1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthGateway_UpdateProfile(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("r@x.com", "secret1", domain.RoleUser)
	gw, _ := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	if _, err := gw.Login(ctx, "c1", "r@x.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := gw.UpdateProfile(ctx, "c1", domain.ProfileUpdate{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty update, got %v", err)
	}

	user, err := gw.UpdateProfile(ctx, "c1", domain.ProfileUpdate{Name: "Rani", PhoneNumber: "+9122", Address: "Kochi"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Name != "Rani" || gw.Current(ctx, "c1").User.Address != "Kochi" {
		t.Fatalf("profile not updated: %+v", user)
	}
}

func TestAuthGateway_ProfileChangesReadOnlyInDemo(t *testing.T) {
	gw, _, _ := newDemoGateway(t)
	ctx := context.Background()

	if _, err := gw.Login(ctx, "c1", "admin@village.com", "password"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := gw.UpdateProfile(ctx, "c1", domain.ProfileUpdate{Name: "X", PhoneNumber: "1"}); !errors.Is(err, domain.ErrDemoReadOnly) {
		t.Fatalf("expected ErrDemoReadOnly, got %v", err)
	}
	if err := gw.ChangePassword(ctx, "c1", "password", "newpass1"); !errors.Is(err, domain.ErrDemoReadOnly) {
		t.Fatalf("expected ErrDemoReadOnly, got %v", err)
	}
}

func TestAuthGateway_ChangePassword(t *testing.T) {
	b := newFakeBackend()
	b.addAccount("r@x.com", "secret1", domain.RoleUser)
	gw, _ := newTestGateway(t, b, service.GatewayOptions{})
	ctx := context.Background()

	if _, err := gw.Login(ctx, "c1", "r@x.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := gw.ChangePassword(ctx, "c1", "secret1", "123"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}

	err := gw.ChangePassword(ctx, "c1", "wrong", "newsecret")
	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError for wrong old password, got %v", err)
	}

	if err := gw.ChangePassword(ctx, "c1", "secret1", "newsecret"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	gw.Logout(ctx, "c1")
	if _, err := gw.Login(ctx, "c1", "r@x.com", "newsecret"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
}
