// internal/catalog/entity.go
package catalog

import "math"

// PurchaseType identifies how a product is being bought
type PurchaseType string

const (
	PurchaseTypeOneTime      PurchaseType = "one_time"
	PurchaseTypeSubscription PurchaseType = "subscription"
)

// SubscriptionInterval represents a recurring-purchase cadence with its own
// discounted price. Price is in minor currency units.
type SubscriptionInterval struct {
	Key             string  `json:"key"`
	Label           string  `json:"label"`
	CadenceDays     int     `json:"cadence_days"`
	Price           int64   `json:"price"`
	DiscountPercent float64 `json:"discount_percent"`
}

// Product represents a storefront product with its purchase options.
// Prices are in minor currency units and are read-only on the client.
type Product struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Slug              string                 `json:"slug"`
	Description       string                 `json:"description,omitempty"`
	Price             int64                  `json:"price"`
	AllowOneTime      bool                   `json:"allow_one_time"`
	AllowSubscription bool                   `json:"allow_subscription"`
	Intervals         []SubscriptionInterval `json:"intervals,omitempty"`
	IsActive          bool                   `json:"is_active"`
}

// DiscountedPrice applies a percentage discount to a base price in minor
// units, rounding half away from zero to the nearest minor unit.
func DiscountedPrice(base int64, discountPercent float64) int64 {
	if discountPercent <= 0 {
		return base
	}
	return int64(math.Round(float64(base) * (100 - discountPercent) / 100))
}

// IntervalByKey returns the interval with the given key, if configured
func (p *Product) IntervalByKey(key string) (SubscriptionInterval, bool) {
	for _, interval := range p.Intervals {
		if interval.Key == key {
			return interval, true
		}
	}
	return SubscriptionInterval{}, false
}
