package domain

// Mode is the process-wide operating mode, decided once at startup.
type Mode int

const (
	ModeInitializing Mode = iota
	ModeBackend
	ModeDemo
)

func (m Mode) String() string {
	switch m {
	case ModeBackend:
		return "backend"
	case ModeDemo:
		return "demo"
	default:
		return "initializing"
	}
}

// Session is the auth state of one client: a token and the user it belongs
// to. Either both are set or neither is.
type Session struct {
	Token    string
	User     *User
	DemoMode bool
}

// Authenticated reports whether the session holds both a token and a user.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the session user's role, or "" when anonymous.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
