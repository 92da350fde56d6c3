package domain

import "context"

// AuthResult is what the backend returns for a successful login or
// registration.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Registration is the data submitted to create an account.
type Registration struct {
	Name        string `validate:"required"`
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=6"`
	PhoneNumber string `validate:"required"`
	Role        Role   `validate:"required,oneof=USER OPERATOR ADMIN"`
	Address     string
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Name        string `validate:"required"`
	PhoneNumber string `validate:"required"`
	Address     string
}

// Backend is the REST API the presentation tier talks to.
type Backend interface {
	Health(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
	// Profile returns ErrSessionExpired when the token is rejected.
	Profile(ctx context.Context, token string) (*User, error)
	UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*User, error)
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error
	ListEquipment(ctx context.Context, token string) ([]Equipment, error)
}
