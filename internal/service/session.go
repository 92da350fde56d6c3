package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/village-rental/internal/domain"
)

// Storage keys, shared by every client namespace.
const (
	keyToken           = "token"
	keyUser            = "user"
	keyBannerDismissed = "demoBannerDismissed"
)

// SessionStore persists a client's token and user record. Only the
// AuthGateway writes through it.
type SessionStore struct {
	storage domain.Storage
}

// NewSessionStore creates a SessionStore over the given storage.
func NewSessionStore(storage domain.Storage) *SessionStore {
	return &SessionStore{storage: storage}
}

// Save writes the user record and then the token. If the token write fails
// the user record is removed again.
func (s *SessionStore) Save(ctx context.Context, ns, token string, user *domain.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("%w: session requires both token and user", domain.ErrInvalidInput)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := s.storage.Set(ctx, ns, keyUser, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	if err := s.storage.Set(ctx, ns, keyToken, token); err != nil {
		if delErr := s.storage.Delete(ctx, ns, keyUser); delErr != nil {
			slog.Error("roll back stored user", "error", delErr)
		}
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Load returns the stored session. It returns domain.ErrNotFound when either
// value is missing or the user record cannot be parsed.
func (s *SessionStore) Load(ctx context.Context, ns string) (domain.Session, error) {
	token, err := s.storage.Get(ctx, ns, keyToken)
	if err != nil {
		return domain.Session{}, err
	}
	raw, err := s.storage.Get(ctx, ns, keyUser)
	if err != nil {
		return domain.Session{}, err
	}
	if token == "" {
		return domain.Session{}, domain.ErrNotFound
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		slog.Warn("discarding unparsable stored session", "error", err)
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrNotFound, domain.ErrMalformedSession)
	}

	return domain.Session{Token: token, User: &user}, nil
}

// Clear removes the token and user record.
func (s *SessionStore) Clear(ctx context.Context, ns string) error {
	if err := s.storage.Delete(ctx, ns, keyToken, keyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// BannerDismissed reports whether this client dismissed the demo banner.
// Storage failures count as not dismissed.
func (s *SessionStore) BannerDismissed(ctx context.Context, ns string) bool {
	v, err := s.storage.Get(ctx, ns, keyBannerDismissed)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("read banner preference", "error", err)
		}
		return false
	}
	return v == "true"
}

// DismissBanner records that this client dismissed the demo banner. The
// preference outlives logout.
func (s *SessionStore) DismissBanner(ctx context.Context, ns string) error {
	if err := s.storage.Set(ctx, ns, keyBannerDismissed, "true"); err != nil {
		return fmt.Errorf("store banner preference: %w", err)
	}
	return nil
}
