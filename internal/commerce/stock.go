// internal/commerce/stock.go
package commerce

import (
	"fmt"
	"sync"

	"github.com/your-org/farmcrate-storefront/internal/config"
	"github.com/your-org/farmcrate-storefront/internal/delivery"
)

// StockLedger tracks remaining per-day delivery capacity for the current
// allocation window. Closed days carry no capacity and can never be
// reserved regardless of the numeric value.
type StockLedger struct {
	mu        sync.Mutex
	remaining delivery.Inventory
	closed    map[int]bool
}

// NewStockLedger seeds a ledger from delivery configuration
func NewStockLedger(cfg config.DeliveryConfig) *StockLedger {
	closed := make(map[int]bool, len(cfg.ClosedDays))
	for _, day := range cfg.ClosedDays {
		closed[day] = true
	}

	remaining := make(delivery.Inventory)
	for day := 1; day <= 7; day++ {
		if !closed[day] {
			remaining[day] = cfg.DefaultCapacity
		}
	}

	return &StockLedger{remaining: remaining, closed: closed}
}

// Snapshot returns a point-in-time view of the ledger
func (l *StockLedger) Snapshot() delivery.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	days := make(delivery.Inventory, len(l.remaining))
	for day, capacity := range l.remaining {
		days[day] = capacity
	}
	closed := make([]int, 0, len(l.closed))
	for day := range l.closed {
		closed = append(closed, day)
	}

	return delivery.Snapshot{Days: days, ClosedDays: closed}
}

// Reserve allocates capacity for a day, failing when the day is closed or
// the remaining capacity cannot cover the quantity
func (l *StockLedger) Reserve(day, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reservation quantity must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed[day] {
		return fmt.Errorf("delivery day %d is not available", day)
	}
	if l.remaining[day] < quantity {
		return fmt.Errorf("insufficient delivery capacity for day %d. Available: %d", day, l.remaining[day])
	}

	l.remaining[day] -= quantity
	return nil
}

// Release returns previously reserved capacity to a day
func (l *StockLedger) Release(day, quantity int) {
	if quantity <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed[day] {
		return
	}
	l.remaining[day] += quantity
}

// SetCapacity overrides the remaining capacity for a day. Used by tests
// and admin tooling.
func (l *StockLedger) SetCapacity(day, capacity int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if capacity < 0 {
		capacity = 0
	}
	l.remaining[day] = capacity
}
