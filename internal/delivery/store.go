// internal/delivery/store.go
package delivery

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/farmcrate-storefront/internal/gateway"
)

// Store is the client-side view of delivery stock. It caches the latest
// snapshot and tracks tentative UI holds per day, so a user cannot
// visually over-subscribe a day in the selector before the request is even
// sent. The server remains the final arbiter of true allocation.
type Store struct {
	mu       sync.Mutex
	gw       *gateway.Gateway
	log      *logrus.Entry
	snapshot Snapshot
	loaded   bool
	holds    map[int]int

	subscribers map[int]func()
	nextSub     int
}

// NewStore creates a delivery stock store
func NewStore(gw *gateway.Gateway, log *logrus.Logger) *Store {
	return &Store{
		gw:          gw,
		log:         log.WithField("component", "delivery"),
		holds:       make(map[int]int),
		subscribers: make(map[int]func()),
	}
}

// Refresh fetches a fresh stock snapshot. Concurrent refreshes share one
// network call through the gateway's read deduplication.
func (s *Store) Refresh(ctx context.Context) error {
	var snapshot Snapshot
	if err := s.gw.Get(ctx, "/delivery-stock", nil, false, &snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.loaded = true
	s.mu.Unlock()

	s.notify()
	return nil
}

// Loaded reports whether a snapshot has been fetched yet
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Snapshot returns a copy of the cached stock snapshot
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := make(Inventory, len(s.snapshot.Days))
	for day, capacity := range s.snapshot.Days {
		days[day] = capacity
	}
	closed := make([]int, len(s.snapshot.ClosedDays))
	copy(closed, s.snapshot.ClosedDays)

	return Snapshot{Days: days, ClosedDays: closed}
}

// Hold records a tentative, not-yet-submitted UI selection against a day
func (s *Store) Hold(day, quantity int) {
	if quantity <= 0 {
		return
	}
	s.mu.Lock()
	s.holds[day] += quantity
	s.mu.Unlock()
	s.notify()
}

// ReleaseHold releases a tentative selection, flooring at zero
func (s *Store) ReleaseHold(day, quantity int) {
	s.mu.Lock()
	s.holds[day] -= quantity
	if s.holds[day] <= 0 {
		delete(s.holds, day)
	}
	s.mu.Unlock()
	s.notify()
}

// HeldFor returns the quantity the current UI selection tentatively holds
// against a day
func (s *Store) HeldFor(day int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds[day]
}

// ClearHolds drops all tentative selections (e.g. after a successful add)
func (s *Store) ClearHolds() {
	s.mu.Lock()
	s.holds = make(map[int]int)
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers a callback invoked after every store change and
// returns a cancel function
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	callbacks := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
