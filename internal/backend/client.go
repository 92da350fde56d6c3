// Package backend is the HTTP client for the marketplace REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// Client implements domain.Backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the API rooted at baseURL. A zero timeout
// uses the default of 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health probes GET /health. Any 2xx is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}

	var res domain.AuthResult
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", body, &res)
	if err != nil {
		if isStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := checkAuthResult(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	body := map[string]string{
		"name":        reg.Name,
		"email":       reg.Email,
		"password":    reg.Password,
		"phoneNumber": reg.PhoneNumber,
		"phone":       reg.PhoneNumber,
		"role":        string(reg.Role),
	}
	if reg.Address != "" {
		body["address"] = reg.Address
	}

	var res domain.AuthResult
	err := c.do(ctx, "register", http.MethodPost, "/auth/register", "", body, &res)
	if err != nil {
		var be *domain.BackendError
		if errors.As(err, &be) && (be.Status == http.StatusConflict ||
			(be.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(be.Message), "exists"))) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	if err := checkAuthResult(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "profile", http.MethodGet, "/auth/profile", token, nil, &user); err != nil {
		return nil, sessionErr(err)
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	body := map[string]string{
		"name":        update.Name,
		"phoneNumber": update.PhoneNumber,
		"phone":       update.PhoneNumber,
		"address":     update.Address,
	}

	var user domain.User
	if err := c.do(ctx, "update_profile", http.MethodPut, "/auth/profile", token, body, &user); err != nil {
		return nil, sessionErr(err)
	}
	return &user, nil
}

func (c *Client) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	if err := c.do(ctx, "change_password", http.MethodPost, "/auth/change-password", token, body, nil); err != nil {
		return sessionErr(err)
	}
	return nil
}

func (c *Client) ListEquipment(ctx context.Context, token string) ([]domain.Equipment, error) {
	var items []domain.Equipment
	if err := c.do(ctx, "list_equipment", http.MethodGet, "/equipment", token, nil, &items); err != nil {
		return nil, sessionErr(err)
	}
	return items, nil
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
// Transport failures wrap domain.ErrNetwork; non-2xx responses are
// *domain.BackendError.
func (c *Client) do(ctx context.Context, endpoint, method, path, token string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveBackendRequest(endpoint, err, time.Since(start))
	}()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.BackendError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// errorMessage extracts {"message": ...} or {"error": ...} from an error body.
func errorMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func isStatus(err error, statuses ...int) bool {
	var be *domain.BackendError
	if !errors.As(err, &be) {
		return false
	}
	for _, s := range statuses {
		if be.Status == s {
			return true
		}
	}
	return false
}

// sessionErr maps a rejected bearer token to domain.ErrSessionExpired.
func sessionErr(err error) error {
	if isStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
		return fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
	}
	return err
}

func checkAuthResult(res *domain.AuthResult) error {
	if res.Token == "" || res.User == nil {
		return fmt.Errorf("%w: auth response missing token or user", domain.ErrInvalidInput)
	}
	return nil
}
