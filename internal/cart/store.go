// internal/cart/store.go
package cart

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/farmcrate-storefront/internal/catalog"
	"github.com/your-org/farmcrate-storefront/internal/delivery"
	"github.com/your-org/farmcrate-storefront/internal/gateway"
	"github.com/your-org/farmcrate-storefront/internal/identity"
	"github.com/your-org/farmcrate-storefront/internal/purchase"
	"golang.org/x/sync/errgroup"
)

// StockProvider supplies the delivery stock snapshot and tentative UI
// holds the configurator validates against
type StockProvider interface {
	Refresh(ctx context.Context) error
	Snapshot() delivery.Snapshot
	HeldFor(day int) int
}

// Store is the authoritative client-side cache of cart line items and the
// derived summary. It exclusively owns the in-memory item collection; the
// remote API is the durable owner of record, and this cache is a
// read-through, write-through replica.
//
// Store never panics: every operation returns an explicit error so the UI
// layer always handles failure.
type Store struct {
	mu       sync.Mutex
	gw       *gateway.Gateway
	resolver *identity.Resolver
	stock    StockProvider
	log      *logrus.Entry

	items   []Item
	summary *Summary
	loaded  bool

	subscribers map[int]func()
	nextSub     int
}

// AddRequest is a candidate line item before configurator validation
type AddRequest struct {
	Quantity     int
	PurchaseType catalog.PurchaseType
	IntervalKey  string
	DeliveryDay  int
}

// cartPayload is the wire shape of GET /cart
type cartPayload struct {
	CartItems []Item   `json:"cart_items"`
	Summary   *Summary `json:"summary"`
}

// mutationPayload is the wire shape of add/update responses
type mutationPayload struct {
	Item    *Item    `json:"item"`
	Summary *Summary `json:"summary"`
}

// addBody is the wire shape of POST /cart/add
type addBody struct {
	ProductID            string `json:"product_id"`
	Quantity             int    `json:"quantity"`
	SessionID            string `json:"session_id"`
	PurchaseType         string `json:"purchase_type"`
	SubscriptionInterval string `json:"subscription_interval,omitempty"`
	DeliveryDay          int    `json:"delivery_day,omitempty"`
	FinalPrice           *int64 `json:"final_price,omitempty"`
}

// updateBody is the wire shape of PUT /cart/items/:id
type updateBody struct {
	Quantity  int    `json:"quantity"`
	SessionID string `json:"session_id"`
}

// NewStore creates a cart store
func NewStore(gw *gateway.Gateway, resolver *identity.Resolver, stock StockProvider, log *logrus.Logger) *Store {
	return &Store{
		gw:          gw,
		resolver:    resolver,
		stock:       stock,
		log:         log.WithField("component", "cart"),
		subscribers: make(map[int]func()),
	}
}

// Load fetches the current items and summary from the server, scoped by
// session id. The server decides whether the session cart or the
// authenticated user's cart (or their merge) is returned.
//
// An authentication-required answer is an expected state for an anonymous
// visitor and is treated as an empty cart, not surfaced as an error.
func (s *Store) Load(ctx context.Context) error {
	query := url.Values{}
	query.Set("session_id", s.resolver.SessionID())

	var payload cartPayload
	err := s.gw.Get(ctx, "/cart", query, true, &payload)
	if err != nil {
		if gateway.IsAuthRequired(err) {
			s.log.Debug("cart read requires authentication, treating as empty cart")
			s.replace([]Item{}, nil)
			return nil
		}
		return err
	}

	items := payload.CartItems
	if items == nil {
		items = []Item{}
	}
	s.replace(items, payload.Summary)
	return nil
}

// AddItem validates the candidate configuration through the purchase
// configurator before any network call, then posts it and reconciles with
// a full reload. The reload is deliberate: the server computes
// authoritative pricing the client must not approximate.
func (s *Store) AddItem(ctx context.Context, product *catalog.Product, req AddRequest) error {
	held := 0
	snapshot := delivery.Snapshot{}
	if req.DeliveryDay != 0 {
		if err := s.stock.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh delivery stock: %w", err)
		}
		snapshot = s.stock.Snapshot()
		held = s.stock.HeldFor(req.DeliveryDay)
	}

	selection, err := purchase.ResolveSelection(product, purchase.SelectionRequest{
		Quantity:     req.Quantity,
		PurchaseType: req.PurchaseType,
		IntervalKey:  req.IntervalKey,
		DeliveryDay:  req.DeliveryDay,
	}, snapshot, held)
	if err != nil {
		return err
	}

	body := addBody{
		ProductID:    product.ID,
		Quantity:     selection.Quantity,
		SessionID:    s.resolver.SessionID(),
		PurchaseType: string(selection.PurchaseType),
		DeliveryDay:  selection.DeliveryDay,
		FinalPrice:   &selection.UnitPrice,
	}
	if selection.Interval != nil {
		body.SubscriptionInterval = selection.Interval.Key
	}

	if err := s.gw.Post(ctx, "/cart/add", body, true, nil); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"quantity":   selection.Quantity,
	}).Debug("item added, reconciling cart")

	return s.Load(ctx)
}

// UpdateItem changes a single item's quantity. A quantity of zero or less
// is redirected to RemoveItem. On success the one scalar is patched
// locally without a full reload, since the unit price is already known.
func (s *Store) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}

	body := updateBody{Quantity: quantity, SessionID: s.resolver.SessionID()}

	var payload mutationPayload
	if err := s.gw.Put(ctx, "/cart/items/"+itemID, body, true, &payload); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = quantity
			s.items[i].Total = s.items[i].UnitPrice * int64(quantity)
			if payload.Item != nil {
				// Server totals win when it echoed the item back.
				s.items[i].Total = payload.Item.Total
			}
			break
		}
	}
	s.summary = payload.Summary
	s.mu.Unlock()

	s.notify()
	return nil
}

// RemoveItem deletes an item server-side and drops it locally only after
// confirmation, so a failed deletion never hides an item that still
// exists on the server.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	query := url.Values{}
	query.Set("session_id", s.resolver.SessionID())

	if err := s.gw.Delete(ctx, "/cart/items/"+itemID, query, true, nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.removeLocked(itemID)
	s.summary = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

// Clear deletes every item in parallel. Items whose deletions were
// confirmed are removed locally even when the batch as a whole failed;
// the caller should re-run Load after a failure to resynchronize with
// whatever partial state resulted.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, len(s.items))
	for i, item := range s.items {
		ids[i] = item.ID
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}

	sessionID := s.resolver.SessionID()

	var succeededMu sync.Mutex
	succeeded := make(map[string]bool, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		group.Go(func() error {
			query := url.Values{}
			query.Set("session_id", sessionID)
			if err := s.gw.Delete(groupCtx, "/cart/items/"+id, query, true, nil); err != nil {
				return err
			}
			succeededMu.Lock()
			succeeded[id] = true
			succeededMu.Unlock()
			return nil
		})
	}
	err := group.Wait()

	s.mu.Lock()
	for id := range succeeded {
		s.removeLocked(id)
	}
	s.summary = nil
	s.mu.Unlock()
	s.notify()

	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Items returns a copy of the current line items
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Loaded reports whether the cart has been fetched at least once
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// TotalItems returns the summed quantity, preferring the server summary
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary != nil {
		return s.summary.ItemCount
	}
	return Summarize(s.items).ItemCount
}

// TotalPrice returns the cart subtotal in minor units. The server's
// subtotal is authoritative when both exist.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary != nil {
		return s.summary.Subtotal
	}
	return Summarize(s.items).Subtotal
}

// Summary returns the cached server summary, or nil before the first
// successful load
func (s *Store) Summary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return nil
	}
	summary := *s.summary
	return &summary
}

// Subscribe registers a callback invoked after every state change and
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

func (s *Store) replace(items []Item, summary *Summary) {
	s.mu.Lock()
	s.items = items
	s.summary = summary
	s.loaded = true
	s.mu.Unlock()
	s.notify()
}

func (s *Store) removeLocked(itemID string) {
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
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
