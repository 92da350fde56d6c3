package service

import (
	"context"
	"slices"
	"strings"

	"github.com/msomdec/village-rental/internal/domain"
)

// EquipmentService lists rentable equipment for a logged-in client.
type EquipmentService struct {
	gateway *AuthGateway
	backend domain.Backend
}

// NewEquipmentService creates a new EquipmentService.
func NewEquipmentService(gateway *AuthGateway, backend domain.Backend) *EquipmentService {
	return &EquipmentService{gateway: gateway, backend: backend}
}

// Search returns the equipment whose name, category or city contains query,
// case-insensitively, in listing order. An empty query returns everything.
func (s *EquipmentService) Search(ctx context.Context, ns, query string) ([]domain.Equipment, error) {
	cur, err := s.gateway.authenticated(ctx, ns)
	if err != nil {
		return nil, err
	}

	var items []domain.Equipment
	if cur.DemoMode {
		items = slices.Clone(demoCatalog)
	} else {
		items, err = s.backend.ListEquipment(ctx, cur.Token)
		if err != nil {
			return nil, s.gateway.checkExpired(ctx, ns, err)
		}
	}
	return FilterEquipment(items, query), nil
}

// FilterEquipment keeps the items matching query as a substring.
func FilterEquipment(items []domain.Equipment, query string) []domain.Equipment {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	return slices.DeleteFunc(items, func(e domain.Equipment) bool {
		return !strings.Contains(strings.ToLower(e.Name), q) &&
			!strings.Contains(strings.ToLower(e.Category), q) &&
			!strings.Contains(strings.ToLower(e.Location.City), q)
	})
}

// Find returns one listed item by id, or domain.ErrNotFound.
func (s *EquipmentService) Find(ctx context.Context, ns string, id int64) (*domain.Equipment, error) {
	items, err := s.Search(ctx, ns, "")
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(items, func(e domain.Equipment) bool { return e.ID == id })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	return &items[i], nil
}
