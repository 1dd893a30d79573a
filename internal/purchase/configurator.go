// internal/purchase/configurator.go
package purchase

import (
	"errors"
	"fmt"

	"github.com/your-org/farmcrate-storefront/internal/catalog"
	"github.com/your-org/farmcrate-storefront/internal/delivery"
)

// ErrDayUnavailable means the requested delivery day has no legal quantity
// range: it is administratively closed or out of capacity. The
// configuration is unselectable; quantities are never clamped to zero.
var ErrDayUnavailable = errors.New("delivery day is not available")

// ErrReselectRequired means a previously valid day selection no longer
// holds (a stock refresh lowered capacity or closed the day). Day choice
// is a user decision; the engine never moves the user to a different day.
var ErrReselectRequired = errors.New("delivery day selection is no longer valid, reselect required")

// SelectionRequest is a candidate line-item configuration from the UI
type SelectionRequest struct {
	Quantity     int
	PurchaseType catalog.PurchaseType
	IntervalKey  string
	DeliveryDay  int
}

// Selection is a validated, possibly clamped line-item configuration
// ready for the cart
type Selection struct {
	PurchaseType catalog.PurchaseType
	Interval     *catalog.SubscriptionInterval
	Quantity     int
	DeliveryDay  int
	UnitPrice    int64
}

// ResolveInterval returns the interval matching the requested key,
// defaulting to the product's first configured interval when the key is
// empty or matches nothing. The second result is false when the product
// has no intervals at all.
func ResolveInterval(product *catalog.Product, requestedKey string) (catalog.SubscriptionInterval, bool) {
	if len(product.Intervals) == 0 {
		return catalog.SubscriptionInterval{}, false
	}
	if requestedKey != "" {
		if interval, ok := product.IntervalByKey(requestedKey); ok {
			return interval, true
		}
	}
	return product.Intervals[0], true
}

// RemainingCapacity returns the capacity left for a day after subtracting
// what the current, not-yet-submitted UI selection already tentatively
// holds against it. Never negative.
func RemainingCapacity(snapshot delivery.Snapshot, day, held int) int {
	remaining := snapshot.Days.Capacity(day) - held
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsDaySelectable reports whether a day is a legal selection target:
// false when administratively closed or out of remaining capacity
func IsDaySelectable(snapshot delivery.Snapshot, day, held int) bool {
	if day < 1 || day > 7 {
		return false
	}
	if snapshot.IsClosed(day) {
		return false
	}
	return RemainingCapacity(snapshot, day, held) > 0
}

// ClampQuantity clamps a requested quantity into [1, remaining capacity]
// for the given day. When the legal range is empty the configuration is
// unselectable and ErrDayUnavailable is returned instead of clamping to 0.
func ClampQuantity(requested, day int, snapshot delivery.Snapshot, held int) (int, error) {
	if !IsDaySelectable(snapshot, day, held) {
		return 0, ErrDayUnavailable
	}

	remaining := RemainingCapacity(snapshot, day, held)
	if requested > remaining {
		return remaining, nil
	}
	if requested < 1 {
		return 1, nil
	}
	return requested, nil
}

// CheckSelection re-validates an existing day/quantity choice against a
// fresh snapshot. ErrReselectRequired signals that the user must choose
// again.
func CheckSelection(snapshot delivery.Snapshot, day, quantity, held int) error {
	if !IsDaySelectable(snapshot, day, held) {
		return ErrReselectRequired
	}
	if quantity > RemainingCapacity(snapshot, day, held) {
		return ErrReselectRequired
	}
	return nil
}

// ResolveSelection validates a candidate configuration against the product
// and stock constraints, clamping where policy allows. This runs before
// any network call so an already-known-invalid request never reaches the
// gateway.
func ResolveSelection(product *catalog.Product, req SelectionRequest, snapshot delivery.Snapshot, held int) (Selection, error) {
	if !product.IsActive {
		return Selection{}, fmt.Errorf("product %q is not available", product.Name)
	}

	selection := Selection{
		PurchaseType: req.PurchaseType,
		DeliveryDay:  req.DeliveryDay,
		UnitPrice:    product.Price,
	}

	switch req.PurchaseType {
	case catalog.PurchaseTypeOneTime:
		if !product.AllowOneTime {
			return Selection{}, fmt.Errorf("product %q does not allow one-time purchase", product.Name)
		}
	case catalog.PurchaseTypeSubscription:
		if !product.AllowSubscription {
			return Selection{}, fmt.Errorf("product %q does not allow subscription", product.Name)
		}
		interval, ok := ResolveInterval(product, req.IntervalKey)
		if !ok {
			return Selection{}, fmt.Errorf("product %q has no subscription intervals configured", product.Name)
		}
		selection.Interval = &interval
		selection.UnitPrice = interval.Price
	default:
		return Selection{}, fmt.Errorf("unknown purchase type %q", req.PurchaseType)
	}

	if req.DeliveryDay != 0 {
		quantity, err := ClampQuantity(req.Quantity, req.DeliveryDay, snapshot, held)
		if err != nil {
			return Selection{}, err
		}
		selection.Quantity = quantity
	} else {
		selection.Quantity = req.Quantity
		if selection.Quantity < 1 {
			selection.Quantity = 1
		}
	}

	return selection, nil
}
