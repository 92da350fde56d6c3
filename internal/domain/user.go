package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is one of the three fixed marketplace categories: renter, equipment
// operator, administrator. The canonical form is upper case, as the backend
// sends it.
type Role string

const (
	RoleUser     Role = "USER"
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

// NormalizeRole case-folds role text for comparison and routing.
// All role comparisons in the application go through here.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// ParseRole converts role text in any case to a Role. An empty string yields
// RoleUser.
func ParseRole(s string) (Role, error) {
	switch NormalizeRole(s) {
	case "", "user":
		return RoleUser, nil
	case "operator":
		return RoleOperator, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// Slug returns the lower-case form used in URLs and allow-lists.
func (r Role) Slug() string {
	return NormalizeRole(string(r))
}

// User is the authenticated user's profile as held in the session.
type User struct {
	ID          int64
	Name        string
	Email       string
	PhoneNumber string
	Role        Role
	Address     string
	CreatedAt   *time.Time
}

// Clone returns a deep copy so snapshots handed to callers cannot alias
// gateway state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		c.CreatedAt = &t
	}
	return &c
}

// userRecord is the wire and storage shape of a User.
type userRecord struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Address     string     `json:"address,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userRecord{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Address:     u.Address,
		CreatedAt:   u.CreatedAt,
	})
}

// UnmarshalJSON accepts the backend's "phone" field when "phoneNumber" is
// absent and normalizes the role.
func (u *User) UnmarshalJSON(data []byte) error {
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	role, err := ParseRole(rec.Role)
	if err != nil {
		return err
	}
	phone := rec.PhoneNumber
	if phone == "" {
		phone = rec.Phone
	}
	*u = User{
		ID:          rec.ID,
		Name:        rec.Name,
		Email:       rec.Email,
		PhoneNumber: phone,
		Role:        role,
		Address:     rec.Address,
		CreatedAt:   rec.CreatedAt,
	}
	return nil
}
