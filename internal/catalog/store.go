// internal/catalog/store.go
package catalog

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/farmcrate-storefront/internal/gateway"
)

// Store is the client-side read-through product cache. Products are
// read-only on the client; concurrent reads of the same resource share a
// single round trip through the gateway's deduplication.
type Store struct {
	mu       sync.Mutex
	gw       *gateway.Gateway
	log      *logrus.Entry
	products []Product
	byID     map[string]Product
	loaded   bool

	subscribers map[int]func()
	nextSub     int
}

// NewStore creates a product store
func NewStore(gw *gateway.Gateway, log *logrus.Logger) *Store {
	return &Store{
		gw:          gw,
		log:         log.WithField("component", "catalog"),
		byID:        make(map[string]Product),
		subscribers: make(map[int]func()),
	}
}

// Refresh fetches the full product list
func (s *Store) Refresh(ctx context.Context) error {
	var payload struct {
		Products []Product `json:"products"`
	}
	if err := s.gw.Get(ctx, "/products", nil, false, &payload); err != nil {
		return err
	}

	s.mu.Lock()
	s.products = payload.Products
	s.byID = make(map[string]Product, len(payload.Products))
	for _, product := range payload.Products {
		s.byID[product.ID] = product
	}
	s.loaded = true
	s.mu.Unlock()

	s.notify()
	return nil
}

// Products returns the cached product list, fetching it on first use
func (s *Store) Products(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	if !loaded {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]Product, len(s.products))
	copy(products, s.products)
	return products, nil
}

// Product returns one product, consulting the cache before the network
func (s *Store) Product(ctx context.Context, id string) (*Product, error) {
	s.mu.Lock()
	if product, ok := s.byID[id]; ok {
		s.mu.Unlock()
		return &product, nil
	}
	s.mu.Unlock()

	var payload struct {
		Product Product `json:"product"`
	}
	if err := s.gw.Get(ctx, "/products/"+id, nil, false, &payload); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.byID[payload.Product.ID] = payload.Product
	s.mu.Unlock()
	s.notify()

	return &payload.Product, nil
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
