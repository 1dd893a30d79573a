// internal/commerce/entity.go
package commerce

import (
	"time"

	"github.com/your-org/farmcrate-storefront/internal/cart"
)

// SessionCart is a session-scoped cart as stored by the reference API.
// When a logged-in user touches the cart the user id is recorded as an
// owner annotation; items stay keyed by session id so the anonymous and
// authenticated views merge naturally.
type SessionCart struct {
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id,omitempty"`
	Items     []cart.Item `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// User is an account known to the reference API
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
