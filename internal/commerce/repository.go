// internal/commerce/repository.go
package commerce

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/farmcrate-storefront/internal/cart"
)

// CartRepository stores session carts. A missing cart is returned as an
// empty cart, never an error.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (*SessionCart, error)
	Save(ctx context.Context, sessionID string, sessionCart *SessionCart) error
	Delete(ctx context.Context, sessionID string) error
}

// OTPRepository stores pending one-time codes keyed by phone number
type OTPRepository interface {
	Put(ctx context.Context, phone, code string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, bool, error)
	Delete(ctx context.Context, phone string) error
}

// MemoryCartRepository keeps session carts in memory. Used in tests and
// when Redis is not configured.
type MemoryCartRepository struct {
	mu    sync.Mutex
	carts map[string]*SessionCart
}

// NewMemoryCartRepository creates an in-memory cart repository
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: make(map[string]*SessionCart)}
}

// Get returns the session cart, or an empty one when none exists
func (r *MemoryCartRepository) Get(_ context.Context, sessionID string) (*SessionCart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sessionCart, ok := r.carts[sessionID]; ok && time.Now().Before(sessionCart.ExpiresAt) {
		clone := *sessionCart
		clone.Items = append([]cart.Item(nil), sessionCart.Items...)
		return &clone, nil
	}
	return emptySessionCart(sessionID), nil
}

// Save stores the session cart
func (r *MemoryCartRepository) Save(_ context.Context, sessionID string, sessionCart *SessionCart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *sessionCart
	clone.Items = append([]cart.Item(nil), sessionCart.Items...)
	r.carts[sessionID] = &clone
	return nil
}

// Delete removes the session cart
func (r *MemoryCartRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

// MemoryOTPRepository keeps pending codes in memory
type MemoryOTPRepository struct {
	mu    sync.Mutex
	codes map[string]otpEntry
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// NewMemoryOTPRepository creates an in-memory OTP repository
func NewMemoryOTPRepository() *MemoryOTPRepository {
	return &MemoryOTPRepository{codes: make(map[string]otpEntry)}
}

// Put stores a pending code with a TTL
func (r *MemoryOTPRepository) Put(_ context.Context, phone, code string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[phone] = otpEntry{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Get returns the pending code for a phone, if any
func (r *MemoryOTPRepository) Get(_ context.Context, phone string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.codes[phone]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.code, true, nil
}

// Delete removes the pending code
func (r *MemoryOTPRepository) Delete(_ context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, phone)
	return nil
}

func emptySessionCart(sessionID string) *SessionCart {
	now := time.Now().UTC()
	return &SessionCart{
		SessionID: sessionID,
		Items:     []cart.Item{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
}
