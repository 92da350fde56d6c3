package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/metrics"
)

const defaultProbeTimeout = 3 * time.Second

// GatewayOptions configures an AuthGateway.
type GatewayOptions struct {
	// ProbeTimeout bounds the startup health probe. Zero means 3 seconds.
	ProbeTimeout time.Duration
	// ForceDemo skips the probe and commits to demo mode.
	ForceDemo bool
	// BcryptCost is used to hash the demo password once at construction.
	BcryptCost int
}

// AuthGateway is the single source of truth for who is logged in on each
// client, and the only writer of the SessionStore.
//
// The operating mode is decided once, by Init, and never revisited. The
// SessionStore is read on every access, so a session ends as soon as its
// stored keys are gone, whichever process removed them. In demo mode only
// sessions established by this process are honored.
type AuthGateway struct {
	backend domain.Backend
	store   *SessionStore
	demo    *demoAuthenticator
	opts    GatewayOptions

	initOnce sync.Once

	// mu guards mode and demoClients, and serializes session writes so a
	// logout cannot interleave with a save or a profile replacement.
	mu   sync.Mutex
	mode domain.Mode
	// demoClients holds the namespaces logged in during this process in
	// demo mode. Entries leave on logout or once the stored session is gone.
	demoClients map[string]struct{}
}

// NewAuthGateway creates an AuthGateway. The mode stays Initializing until
// Init runs.
func NewAuthGateway(backend domain.Backend, store *SessionStore, opts GatewayOptions) (*AuthGateway, error) {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	demo, err := newDemoAuthenticator(opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthGateway{
		backend:     backend,
		store:       store,
		demo:        demo,
		opts:        opts,
		demoClients: make(map[string]struct{}),
	}, nil
}

// Init probes the backend once per process and commits to a mode. A failed
// or timed-out probe means demo mode; there is no retry. Later calls return
// the mode already decided.
func (g *AuthGateway) Init(ctx context.Context) domain.Mode {
	g.initOnce.Do(func() {
		mode := domain.ModeBackend
		if g.opts.ForceDemo {
			mode = domain.ModeDemo
			slog.Info("demo mode forced by configuration")
		} else {
			// The probe must not inherit a caller's cancellation: its outcome is permanent.
			probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.opts.ProbeTimeout)
			defer cancel()
			if err := g.backend.Health(probeCtx); err != nil {
				slog.Warn("backend not available, entering demo mode", "error", err)
				mode = domain.ModeDemo
			}
		}

		g.mu.Lock()
		g.mode = mode
		g.mu.Unlock()

		metrics.SetMode(mode.String())
		slog.Info("operating mode decided", "mode", mode.String())
	})
	return g.Mode()
}

// Mode returns the current operating mode.
func (g *AuthGateway) Mode() domain.Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Current returns a read-only snapshot of the client's session.
func (g *AuthGateway) Current(ctx context.Context, ns string) domain.Session {
	mode := g.Init(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.load(ctx, ns, mode)
	if !ok {
		return domain.Session{DemoMode: mode == domain.ModeDemo}
	}
	return snapshot(s, mode)
}

// load reads the stored session and applies the mode's restore rules. The
// caller holds mu.
func (g *AuthGateway) load(ctx context.Context, ns string, mode domain.Mode) (domain.Session, bool) {
	stored, err := g.store.Load(ctx, ns)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			delete(g.demoClients, ns)
		} else {
			slog.Error("load session", "error", err)
		}
		return domain.Session{}, false
	}

	switch mode {
	case domain.ModeDemo:
		if _, ok := g.demoClients[ns]; !ok {
			return domain.Session{}, false
		}
	case domain.ModeBackend:
		// The demo account does not exist on the backend.
		if stored.Token == demoToken {
			slog.Info("discarding stored demo session")
			if err := g.store.Clear(ctx, ns); err != nil {
				slog.Error("clear stored demo session", "error", err)
			}
			return domain.Session{}, false
		}
	default:
		return domain.Session{}, false
	}
	return stored, true
}

// Login authenticates against the backend, or the demo account in demo
// mode. On success the session is persisted before it becomes visible, and
// the fresh user is returned for the caller's redirect decision.
func (g *AuthGateway) Login(ctx context.Context, ns, email, password string) (*domain.User, error) {
	mode := g.Init(ctx)

	var res *domain.AuthResult
	var err error
	if mode == domain.ModeDemo {
		res, err = g.demo.login(email, password)
	} else {
		res, err = g.backend.Login(ctx, email, password)
	}
	metrics.ObserveAuthAttempt("login", mode.String(), err)
	if err != nil {
		return nil, err
	}

	if err := g.establish(ctx, ns, res, mode); err != nil {
		return nil, err
	}
	slog.Info("user logged in", "user_id", res.User.ID, "role", res.User.Role, "mode", mode.String())
	return res.User.Clone(), nil
}

// Register creates an account on the backend and logs it in. Demo mode has
// no account creation.
func (g *AuthGateway) Register(ctx context.Context, ns string, reg domain.Registration) (*domain.User, error) {
	mode := g.Init(ctx)
	if mode == domain.ModeDemo {
		metrics.ObserveAuthAttempt("register", mode.String(), domain.ErrRegistrationUnavailable)
		return nil, domain.ErrRegistrationUnavailable
	}

	if err := validateStruct(reg); err != nil {
		return nil, err
	}

	res, err := g.backend.Register(ctx, reg)
	metrics.ObserveAuthAttempt("register", mode.String(), err)
	if err != nil {
		return nil, err
	}

	if err := g.establish(ctx, ns, res, mode); err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", res.User.ID, "role", res.User.Role)
	return res.User.Clone(), nil
}

// Logout clears the client's session in any mode. It never calls the
// backend and is idempotent. When the stored keys cannot be removed the
// error is returned; a backend-mode session then survives until they are.
func (g *AuthGateway) Logout(ctx context.Context, ns string) error {
	g.Init(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.demoClients, ns)
	if err := g.store.Clear(ctx, ns); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// RefreshProfile replaces the session user with the backend's current
// profile. It is a no-op in demo mode. When the backend rejects the token
// the client is logged out and domain.ErrSessionExpired is returned.
func (g *AuthGateway) RefreshProfile(ctx context.Context, ns string) (*domain.User, error) {
	cur, err := g.authenticated(ctx, ns)
	if err != nil {
		return nil, err
	}
	if cur.DemoMode {
		return cur.User, nil
	}

	user, err := g.backend.Profile(ctx, cur.Token)
	if err != nil {
		return nil, g.checkExpired(ctx, ns, err)
	}
	return g.replaceUser(ctx, ns, cur.Token, user)
}

// UpdateProfile saves editable profile fields on the backend.
func (g *AuthGateway) UpdateProfile(ctx context.Context, ns string, update domain.ProfileUpdate) (*domain.User, error) {
	cur, err := g.authenticated(ctx, ns)
	if err != nil {
		return nil, err
	}
	if cur.DemoMode {
		return nil, domain.ErrDemoReadOnly
	}
	if err := validateStruct(update); err != nil {
		return nil, err
	}

	user, err := g.backend.UpdateProfile(ctx, cur.Token, update)
	if err != nil {
		return nil, g.checkExpired(ctx, ns, err)
	}
	return g.replaceUser(ctx, ns, cur.Token, user)
}

// ChangePassword changes the account password on the backend.
func (g *AuthGateway) ChangePassword(ctx context.Context, ns, oldPassword, newPassword string) error {
	cur, err := g.authenticated(ctx, ns)
	if err != nil {
		return err
	}
	if cur.DemoMode {
		return domain.ErrDemoReadOnly
	}
	if oldPassword == "" || len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: new password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	if err := g.backend.ChangePassword(ctx, cur.Token, oldPassword, newPassword); err != nil {
		return g.checkExpired(ctx, ns, err)
	}
	return nil
}

func (g *AuthGateway) authenticated(ctx context.Context, ns string) (domain.Session, error) {
	cur := g.Current(ctx, ns)
	if !cur.Authenticated() {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return cur, nil
}

// establish persists a fresh session. A demo session is only honored once
// it is stored.
func (g *AuthGateway) establish(ctx context.Context, ns string, res *domain.AuthResult, mode domain.Mode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Save(ctx, ns, res.Token, res.User); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if mode == domain.ModeDemo {
		g.demoClients[ns] = struct{}{}
	}
	return nil
}

// replaceUser swaps in a refreshed user, unless the session changed while
// the backend call was in flight.
func (g *AuthGateway) replaceUser(ctx context.Context, ns, token string, user *domain.User) (*domain.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cur, ok := g.load(ctx, ns, g.mode); !ok || cur.Token != token {
		return nil, domain.ErrUnauthorized
	}
	if err := g.store.Save(ctx, ns, token, user); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}
	return user.Clone(), nil
}

// checkExpired logs the client out when err reports a rejected token.
func (g *AuthGateway) checkExpired(ctx context.Context, ns string, err error) error {
	if !errors.Is(err, domain.ErrSessionExpired) {
		return err
	}
	metrics.ForcedLogoutsTotal.Inc()
	slog.Info("backend rejected session, logging out")
	if logoutErr := g.Logout(ctx, ns); logoutErr != nil {
		slog.Error("logout after expired session", "error", logoutErr)
	}
	return domain.ErrSessionExpired
}

func snapshot(s domain.Session, mode domain.Mode) domain.Session {
	return domain.Session{
		Token:    s.Token,
		User:     s.User.Clone(),
		DemoMode: mode == domain.ModeDemo,
	}
}
