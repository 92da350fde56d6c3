package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/village-rental/internal/domain"
)

// Demo account. Only the admin pair works in demo mode.
const (
	DemoEmail    = "admin@village.com"
	demoPassword = "password"
	demoToken    = "demo-token"
	demoUserID   = 1
)

// demoAuthenticator stands in for the backend when it is unreachable.
type demoAuthenticator struct {
	passwordHash []byte
}

func newDemoAuthenticator(bcryptCost int) (*demoAuthenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &demoAuthenticator{passwordHash: hash}, nil
}

func (d *demoAuthenticator) login(email, password string) (*domain.AuthResult, error) {
	if email != DemoEmail {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(d.passwordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.AuthResult{
		Token: demoToken,
		User: &domain.User{
			ID:          demoUserID,
			Name:        "Admin User",
			Email:       DemoEmail,
			PhoneNumber: "+1234567890",
			Role:        domain.RoleAdmin,
		},
	}, nil
}

// demoCatalog is the equipment shown while in demo mode.
var demoCatalog = []domain.Equipment{
	{ID: 1, Name: "Mahindra 575 DI Tractor", Category: "Tractor", Description: "45 HP tractor for ploughing and haulage.", PricePerDay: 1500, Available: true, OperatorID: 2, Location: domain.Location{City: "Thrissur", State: "Kerala"}},
	{ID: 2, Name: "Kirloskar Water Pump", Category: "Pump", Description: "5 HP diesel irrigation pump.", PricePerDay: 400, Available: true, OperatorID: 2, Location: domain.Location{City: "Chalakudy", State: "Kerala"}},
	{ID: 3, Name: "Combine Harvester", Category: "Harvester", Description: "Self-propelled paddy harvester.", PricePerDay: 6000, Available: false, OperatorID: 3, Location: domain.Location{City: "Palakkad", State: "Kerala"}},
	{ID: 4, Name: "Power Tiller", Category: "Tiller", Description: "Walk-behind tiller for small plots.", PricePerDay: 800, Available: true, OperatorID: 3, Location: domain.Location{City: "Thrissur", State: "Kerala"}},
	{ID: 5, Name: "Knapsack Sprayer", Category: "Sprayer", Description: "16 litre battery sprayer.", PricePerDay: 150, Available: true, OperatorID: 2, Location: domain.Location{City: "Irinjalakuda", State: "Kerala"}},
}
