// internal/commerce/catalog.go
package commerce

import (
	"fmt"
	"sync"

	"github.com/your-org/farmcrate-storefront/internal/catalog"
)

// CatalogService serves the product catalog. The reference API keeps it
// in memory, seeded at startup; the durable database of record is out of
// scope for this system.
type CatalogService struct {
	mu       sync.RWMutex
	products []catalog.Product
	byID     map[string]catalog.Product
}

// NewCatalogService creates a catalog service with the given products
func NewCatalogService(products []catalog.Product) *CatalogService {
	byID := make(map[string]catalog.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return &CatalogService{products: products, byID: byID}
}

// List returns all active products
func (s *CatalogService) List() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]catalog.Product, 0, len(s.products))
	for _, product := range s.products {
		if product.IsActive {
			active = append(active, product)
		}
	}
	return active
}

// Get returns one product by id
func (s *CatalogService) Get(id string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.byID[id]
	if !ok || !product.IsActive {
		return nil, fmt.Errorf("product not found or inactive")
	}
	return &product, nil
}

// SeedProducts returns the development product catalog. Interval prices
// are derived from the base price and discount so the discount arithmetic
// invariant holds by construction.
func SeedProducts() []catalog.Product {
	weekly := func(base int64) catalog.SubscriptionInterval {
		return catalog.SubscriptionInterval{
			Key:             "weekly",
			Label:           "Every week",
			CadenceDays:     7,
			Price:           catalog.DiscountedPrice(base, 10),
			DiscountPercent: 10,
		}
	}
	biweekly := func(base int64) catalog.SubscriptionInterval {
		return catalog.SubscriptionInterval{
			Key:             "biweekly",
			Label:           "Every two weeks",
			CadenceDays:     14,
			Price:           catalog.DiscountedPrice(base, 20),
			DiscountPercent: 20,
		}
	}

	return []catalog.Product{
		{
			ID:                "box-seasonal",
			Name:              "Seasonal Harvest Box",
			Slug:              "seasonal-harvest-box",
			Description:       "A rotating selection of what the farm picked this week.",
			Price:             45000,
			AllowOneTime:      true,
			AllowSubscription: true,
			Intervals:         []catalog.SubscriptionInterval{weekly(45000), biweekly(45000)},
			IsActive:          true,
		},
		{
			ID:                "box-greens",
			Name:              "Leafy Greens Box",
			Slug:              "leafy-greens-box",
			Description:       "Salads, herbs and cooking greens, harvested to order.",
			Price:             28000,
			AllowOneTime:      true,
			AllowSubscription: true,
			Intervals:         []catalog.SubscriptionInterval{weekly(28000), biweekly(28000)},
			IsActive:          true,
		},
		{
			ID:                "box-dairy",
			Name:              "Creamery Add-on",
			Slug:              "creamery-add-on",
			Description:       "Small-batch yogurt and fresh cheese, subscription only.",
			Price:             19000,
			AllowOneTime:      false,
			AllowSubscription: true,
			Intervals:         []catalog.SubscriptionInterval{weekly(19000), biweekly(19000)},
			IsActive:          true,
		},
	}
}
