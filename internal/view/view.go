// Package view holds the HTML components of the web tier. Components are
// generated from the .templ files next to this one; run `templ generate`
// after editing them.
package view

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/msomdec/village-rental/internal/domain"
)

// Element ids targeted by datastar patches.
const (
	BannerID           = "demo-banner"
	ToastID            = "toast"
	ProfileCardID      = "profile-card"
	EquipmentResultsID = "equipment-results"
)

// Chrome is the per-request state every full page shows around its body.
type Chrome struct {
	Title string
	// User is nil for anonymous clients.
	User *domain.User
	// DemoBanner shows the demo mode notice.
	DemoBanner bool
	// Flash is an error toast shown on load.
	Flash string
	// Notice is a success toast shown on load.
	Notice string
}

// RegisterForm is the registration input echoed back after a failure.
// Passwords are never echoed.
type RegisterForm struct {
	Name        string
	Email       string
	PhoneNumber string
	Role        string
	Address     string
}

var registerRoles = []struct{ value, label string }{
	{"USER", "Renter"},
	{"OPERATOR", "Equipment operator"},
}

// NavLink is one entry of a dashboard's navigation.
type NavLink struct {
	Path  string
	Label string
}

var navLinks = map[domain.Role][]NavLink{
	domain.RoleUser: {
		{"/user", "Dashboard"},
		{"/equipment", "Browse Equipment"},
		{"/bookings", "My Bookings"},
		{"/payment", "Payments"},
		{"/map", "Nearby Equipment"},
		{"/feedback", "Feedback"},
	},
	domain.RoleOperator: {
		{"/operator", "Dashboard"},
		{"/operator/equipment", "My Equipment"},
		{"/operator/inventory", "Inventory"},
		{"/operator/equipment/add", "Add Equipment"},
		{"/operator/earnings", "Earnings"},
	},
	domain.RoleAdmin: {
		{"/admin", "Dashboard"},
		{"/equipment", "Equipment"},
		{"/bookings", "All Bookings"},
		{"/notifications", "Notifications"},
	},
}

// NavLinks returns the dashboard navigation for role.
func NavLinks(role domain.Role) []NavLink {
	return navLinks[role]
}

var dashboardTitles = map[domain.Role]string{
	domain.RoleUser:     "Renter dashboard",
	domain.RoleOperator: "Operator dashboard",
	domain.RoleAdmin:    "Admin dashboard",
}

func pageTitle(title string) string {
	if title == "" {
		return "Village Rental"
	}
	return title + " | Village Rental"
}

// searchSignals seeds the datastar query signal.
func searchSignals(query string) string {
	b, _ := json.Marshal(map[string]string{"query": query})
	return string(b)
}

func formatPrice(perDay float64) string {
	return strconv.FormatFloat(perDay, 'f', -1, 64)
}

func equipmentPath(id int64) string {
	return fmt.Sprintf("/equipment/%d", id)
}

func bookingPath(id int64) string {
	return fmt.Sprintf("/booking/%d", id)
}

func locationLine(l domain.Location) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Address, l.City, l.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
