// internal/commerce/cart_service.go
package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/farmcrate-storefront/internal/cart"
	"github.com/your-org/farmcrate-storefront/internal/catalog"
	"github.com/your-org/farmcrate-storefront/internal/purchase"
)

// CartService owns server-side cart state. Pricing here is authoritative:
// the client's final_price is advisory and the service recomputes unit
// prices from the catalog before storing an item.
type CartService struct {
	repo    CartRepository
	catalog *CatalogService
	stock   *StockLedger
	log     *logrus.Entry
}

// AddItemInput describes an add-to-cart request after transport decoding
type AddItemInput struct {
	SessionID            string
	UserID               string
	ProductID            string
	Quantity             int
	PurchaseType         catalog.PurchaseType
	SubscriptionInterval string
	DeliveryDay          int
}

// NewCartService creates a cart service
func NewCartService(repo CartRepository, catalogService *CatalogService, stock *StockLedger, log *logrus.Logger) *CartService {
	return &CartService{
		repo:    repo,
		catalog: catalogService,
		stock:   stock,
		log:     log.WithField("component", "commerce.cart"),
	}
}

// GetCart returns the session cart's items and computed summary
func (s *CartService) GetCart(ctx context.Context, sessionID string) ([]cart.Item, cart.Summary, error) {
	sessionCart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, cart.Summary{}, err
	}
	return sessionCart.Items, cart.Summarize(sessionCart.Items), nil
}

// AddItem validates and prices a new line item, reserves delivery
// capacity and stores the item
func (s *CartService) AddItem(ctx context.Context, input AddItemInput) (*cart.Item, cart.Summary, error) {
	if input.SessionID == "" {
		return nil, cart.Summary{}, fmt.Errorf("session id is required")
	}
	if input.Quantity < 1 {
		return nil, cart.Summary{}, fmt.Errorf("quantity must be at least 1")
	}

	product, err := s.catalog.Get(input.ProductID)
	if err != nil {
		return nil, cart.Summary{}, err
	}

	unitPrice := product.Price
	intervalKey := ""
	switch input.PurchaseType {
	case catalog.PurchaseTypeOneTime:
		if !product.AllowOneTime {
			return nil, cart.Summary{}, fmt.Errorf("product does not allow one-time purchase")
		}
	case catalog.PurchaseTypeSubscription:
		if !product.AllowSubscription {
			return nil, cart.Summary{}, fmt.Errorf("product does not allow subscription")
		}
		interval, ok := purchase.ResolveInterval(product, input.SubscriptionInterval)
		if !ok {
			return nil, cart.Summary{}, fmt.Errorf("product has no subscription intervals")
		}
		unitPrice = interval.Price
		intervalKey = interval.Key
	default:
		return nil, cart.Summary{}, fmt.Errorf("invalid purchase type %q", input.PurchaseType)
	}

	if input.DeliveryDay != 0 {
		if input.DeliveryDay < 1 || input.DeliveryDay > 7 {
			return nil, cart.Summary{}, fmt.Errorf("invalid delivery day %d", input.DeliveryDay)
		}
		if err := s.stock.Reserve(input.DeliveryDay, input.Quantity); err != nil {
			return nil, cart.Summary{}, err
		}
	}

	item := cart.Item{
		ID:                   uuid.NewString(),
		ProductID:            product.ID,
		ProductName:          product.Name,
		Quantity:             input.Quantity,
		PurchaseType:         input.PurchaseType,
		SubscriptionInterval: intervalKey,
		DeliveryDay:          input.DeliveryDay,
		UnitPrice:            unitPrice,
		Total:                unitPrice * int64(input.Quantity),
		AddedAt:              time.Now().UTC(),
	}

	sessionCart, err := s.repo.Get(ctx, input.SessionID)
	if err != nil {
		s.releaseFor(item)
		return nil, cart.Summary{}, err
	}

	sessionCart.Items = append(sessionCart.Items, item)
	if input.UserID != "" {
		sessionCart.UserID = input.UserID
	}
	sessionCart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, input.SessionID, sessionCart); err != nil {
		s.releaseFor(item)
		return nil, cart.Summary{}, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": input.SessionID,
		"product_id": product.ID,
		"quantity":   input.Quantity,
	}).Info("item added to cart")

	return &item, cart.Summarize(sessionCart.Items), nil
}

// UpdateItem changes an existing item's quantity. Purchase type, interval
// and delivery day are immutable; a different configuration requires
// remove and re-add.
func (s *CartService) UpdateItem(ctx context.Context, sessionID, itemID string, quantity int) (*cart.Item, cart.Summary, error) {
	if quantity < 1 {
		return nil, cart.Summary{}, fmt.Errorf("quantity must be at least 1")
	}

	sessionCart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, cart.Summary{}, err
	}

	for i := range sessionCart.Items {
		item := &sessionCart.Items[i]
		if item.ID != itemID {
			continue
		}

		delta := quantity - item.Quantity
		if item.DeliveryDay != 0 && delta > 0 {
			if err := s.stock.Reserve(item.DeliveryDay, delta); err != nil {
				return nil, cart.Summary{}, err
			}
		}
		if item.DeliveryDay != 0 && delta < 0 {
			s.stock.Release(item.DeliveryDay, -delta)
		}

		item.Quantity = quantity
		item.Total = item.UnitPrice * int64(quantity)
		sessionCart.UpdatedAt = time.Now().UTC()

		if err := s.repo.Save(ctx, sessionID, sessionCart); err != nil {
			return nil, cart.Summary{}, err
		}

		updated := *item
		return &updated, cart.Summarize(sessionCart.Items), nil
	}

	return nil, cart.Summary{}, fmt.Errorf("item not found in cart")
}

// RemoveItem deletes an item and releases its delivery capacity
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (cart.Summary, error) {
	sessionCart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return cart.Summary{}, err
	}

	for i := range sessionCart.Items {
		item := sessionCart.Items[i]
		if item.ID != itemID {
			continue
		}

		sessionCart.Items = append(sessionCart.Items[:i], sessionCart.Items[i+1:]...)
		sessionCart.UpdatedAt = time.Now().UTC()

		if err := s.repo.Save(ctx, sessionID, sessionCart); err != nil {
			return cart.Summary{}, err
		}

		s.releaseFor(item)
		return cart.Summarize(sessionCart.Items), nil
	}

	return cart.Summary{}, fmt.Errorf("item not found in cart")
}

func (s *CartService) releaseFor(item cart.Item) {
	if item.DeliveryDay != 0 {
		s.stock.Release(item.DeliveryDay, item.Quantity)
	}
}
