package handler

import (
	"time"

	"github.com/msomdec/village-rental/internal/domain"
)

// UserDTO is the JSON representation of the session user.
type UserDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
	Role        string  `json:"role"`
	Address     string  `json:"address,omitempty"`
	CreatedAt   *string `json:"createdAt,omitempty"`
}

func toUserDTO(u *domain.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Address:     u.Address,
	}
	if u.CreatedAt != nil {
		t := u.CreatedAt.Format(time.RFC3339)
		dto.CreatedAt = &t
	}
	return dto
}

// SessionDTO is the JSON representation of a client's session snapshot.
type SessionDTO struct {
	Authenticated bool     `json:"authenticated"`
	DemoMode      bool     `json:"demoMode"`
	Mode          string   `json:"mode"`
	User          *UserDTO `json:"user"`
}

func toSessionDTO(s domain.Session, mode domain.Mode) SessionDTO {
	return SessionDTO{
		Authenticated: s.Authenticated(),
		DemoMode:      mode == domain.ModeDemo,
		Mode:          mode.String(),
		User:          toUserDTO(s.User),
	}
}
