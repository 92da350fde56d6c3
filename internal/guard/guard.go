// Package guard decides whether a client may view a route and where clients
// land after authenticating. Both functions are pure; the HTTP middleware in
// package handler applies them per request.
package guard

import (
	"slices"

	"github.com/msomdec/village-rental/internal/domain"
)

// LoginPath is where unauthenticated clients are sent.
const LoginPath = "/login"

// Rule is the access requirement attached to a route.
type Rule struct {
	RequiresAuth bool
	// AllowedRoles restricts the route to these roles, in any case. Empty
	// means any authenticated role.
	AllowedRoles []string
}

// Public is the rule for routes anyone may view.
var Public = Rule{}

// Authenticated is the rule for routes any logged-in role may view.
var Authenticated = Rule{RequiresAuth: true}

// Roles builds a rule restricted to the given roles.
func Roles(roles ...string) Rule {
	return Rule{RequiresAuth: true, AllowedRoles: roles}
}

// Decision is the outcome of a guard check: either Allow, or a path to
// redirect to.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide applies a guard to a session. An unauthenticated client goes to the
// login page. An authenticated client whose role is not allowed goes to its
// own landing page. Otherwise the route is shown.
func Decide(authenticated bool, role string, allowed []string) Decision {
	if !authenticated {
		return Decision{Redirect: LoginPath}
	}
	if len(allowed) > 0 {
		r := domain.NormalizeRole(role)
		if !slices.ContainsFunc(allowed, func(a string) bool { return domain.NormalizeRole(a) == r }) {
			return Decision{Redirect: Landing(role)}
		}
	}
	return Decision{Allow: true}
}

// Check evaluates rule against a session.
func (r Rule) Check(s domain.Session) Decision {
	if !r.RequiresAuth {
		return Decision{Allow: true}
	}
	var role string
	if s.User != nil {
		role = string(s.User.Role)
	}
	return Decide(s.Authenticated(), role, r.AllowedRoles)
}
