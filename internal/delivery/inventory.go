// internal/delivery/inventory.go
package delivery

// Inventory maps a delivery day (1-7, Monday-Sunday) to the remaining
// order capacity for the current allocation window. Capacity is never
// negative; the snapshot is advisory, not a reservation.
type Inventory map[int]int

// Capacity returns the remaining capacity for a day, 0 when unknown
func (inv Inventory) Capacity(day int) int {
	if capacity, ok := inv[day]; ok && capacity > 0 {
		return capacity
	}
	return 0
}

// Snapshot is a point-in-time read of the delivery schedule: per-day
// remaining capacity plus the administratively closed days, which are
// never orderable regardless of the numeric inventory value.
type Snapshot struct {
	Days       Inventory `json:"days"`
	ClosedDays []int     `json:"closed_days"`
}

// IsClosed reports whether a day is under administrative fixed closure
func (s Snapshot) IsClosed(day int) bool {
	for _, closed := range s.ClosedDays {
		if closed == day {
			return true
		}
	}
	return false
}
