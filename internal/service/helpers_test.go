package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/repository/sqlite"
	"github.com/msomdec/village-rental/internal/service"
)

type account struct {
	password string
	token    string
	user     domain.User
}

// fakeBackend is an in-memory domain.Backend.
type fakeBackend struct {
	mu          sync.Mutex
	healthErr   error
	healthDelay time.Duration
	accounts    map[string]*account
	expired     map[string]bool
	loginErr    error
	equipment   []domain.Equipment
	calls       map[string]int
	nextID      int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts: make(map[string]*account),
		expired:  make(map[string]bool),
		calls:    make(map[string]int),
		nextID:   100,
	}
}

func (f *fakeBackend) addAccount(email, password string, role domain.Role) *account {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a := &account{
		password: password,
		token:    "tok-" + email,
		user:     domain.User{ID: f.nextID, Name: "Test " + string(role), Email: email, PhoneNumber: "+910000", Role: role},
	}
	f.accounts[email] = a
	return a
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) Health(ctx context.Context) error {
	f.record("health")
	if f.healthDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.healthDelay):
		}
	}
	return f.healthErr
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	f.record("login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok || a.password != password {
		return nil, domain.ErrInvalidCredentials
	}
	u := a.user
	return &domain.AuthResult{Token: a.token, User: &u}, nil
}

func (f *fakeBackend) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	f.record("register")
	f.mu.Lock()
	_, exists := f.accounts[reg.Email]
	f.mu.Unlock()
	if exists {
		return nil, domain.ErrDuplicateEmail
	}
	a := f.addAccount(reg.Email, reg.Password, reg.Role)
	u := a.user
	u.Name = reg.Name
	return &domain.AuthResult{Token: a.token, User: &u}, nil
}

func (f *fakeBackend) byToken(token string) (*account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired[token] {
		return nil, domain.ErrSessionExpired
	}
	for _, a := range f.accounts {
		if a.token == token {
			return a, nil
		}
	}
	return nil, domain.ErrSessionExpired
}

func (f *fakeBackend) Profile(ctx context.Context, token string) (*domain.User, error) {
	f.record("profile")
	a, err := f.byToken(token)
	if err != nil {
		return nil, err
	}
	u := a.user
	return &u, nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	f.record("update_profile")
	a, err := f.byToken(token)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	a.user.Name = update.Name
	a.user.PhoneNumber = update.PhoneNumber
	a.user.Address = update.Address
	u := a.user
	f.mu.Unlock()
	return &u, nil
}

func (f *fakeBackend) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	f.record("change_password")
	a, err := f.byToken(token)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.password != oldPassword {
		return &domain.BackendError{Status: 400, Message: "old password is incorrect"}
	}
	a.password = newPassword
	return nil
}

func (f *fakeBackend) ListEquipment(ctx context.Context, token string) ([]domain.Equipment, error) {
	f.record("list_equipment")
	if _, err := f.byToken(token); err != nil {
		return nil, err
	}
	return append([]domain.Equipment(nil), f.equipment...), nil
}

func (f *fakeBackend) expire(token string) {
	f.mu.Lock()
	f.expired[token] = true
	f.mu.Unlock()
}

func newTestStorage(t *testing.T) domain.Storage {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.Storage()
}

func newTestGateway(t *testing.T, b domain.Backend, opts service.GatewayOptions) (*service.AuthGateway, *service.SessionStore) {
	t.Helper()
	gw, store, _ := newTestGatewayWithStorage(t, b, opts)
	return gw, store
}

func newTestGatewayWithStorage(t *testing.T, b domain.Backend, opts service.GatewayOptions) (*service.AuthGateway, *service.SessionStore, domain.Storage) {
	t.Helper()
	storage := newTestStorage(t)
	store := service.NewSessionStore(storage)
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	gw, err := service.NewAuthGateway(b, store, opts)
	if err != nil {
		t.Fatalf("NewAuthGateway: %v", err)
	}
	return gw, store, storage
}

func newDemoGateway(t *testing.T) (*service.AuthGateway, *service.SessionStore, domain.Storage) {
	t.Helper()
	b := newFakeBackend()
	b.healthErr = errors.New("connection refused")
	gw, store, storage := newTestGatewayWithStorage(t, b, service.GatewayOptions{})
	if mode := gw.Init(context.Background()); mode != domain.ModeDemo {
		t.Fatalf("expected demo mode, got %s", mode)
	}
	return gw, store, storage
}

// assertStoreEmpty fails unless neither token nor user is stored for ns.
func assertStoreEmpty(t *testing.T, storage domain.Storage, ns string) {
	t.Helper()
	for _, key := range []string{"token", "user"} {
		if _, err := storage.Get(context.Background(), ns, key); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected %s absent from storage, got err=%v", key, err)
		}
	}
}
