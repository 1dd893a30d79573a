// internal/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/farmcrate-storefront/internal/catalog"
)

// Item represents one cart line item. The unit price is a snapshot
// captured at add-time, not recomputed from the live product price.
// Purchase type, interval and delivery day are immutable after creation;
// changing them requires remove and re-add.
type Item struct {
	ID                   string               `json:"id"`
	ProductID            string               `json:"product_id"`
	ProductName          string               `json:"product_name"`
	Quantity             int                  `json:"quantity"`
	PurchaseType         catalog.PurchaseType `json:"purchase_type"`
	SubscriptionInterval string               `json:"subscription_interval,omitempty"`
	DeliveryDay          int                  `json:"delivery_day,omitempty"`
	UnitPrice            int64                `json:"unit_price"`
	Total                int64                `json:"total"`
	AddedAt              time.Time            `json:"added_at"`
}

// Summary represents derived cart totals. It is cached opportunistically
// from server responses, because the server applies its own rounding
// rules, but it is always recomputable from the items.
type Summary struct {
	ItemCount int   `json:"item_count"`
	Subtotal  int64 `json:"subtotal"`
}

// Summarize recomputes a summary from a set of items
func Summarize(items []Item) Summary {
	var summary Summary
	for _, item := range items {
		summary.ItemCount += item.Quantity
		summary.Subtotal += item.Total
	}
	return summary
}
