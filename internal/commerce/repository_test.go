package commerce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/farmcrate-storefront/internal/cart"
)

func TestMemoryCartRepositoryMissingCartIsEmpty(t *testing.T) {
	repo := NewMemoryCartRepository()

	sessionCart, err := repo.Get(context.Background(), "sess_new")
	require.NoError(t, err)
	assert.Equal(t, "sess_new", sessionCart.SessionID)
	assert.Empty(t, sessionCart.Items)
}

func TestMemoryCartRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCartRepository()
	ctx := context.Background()

	sessionCart, err := repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	sessionCart.Items = append(sessionCart.Items, cart.Item{ID: "item-1", Quantity: 2})
	require.NoError(t, repo.Save(ctx, "sess_1", sessionCart))

	got, err := repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "item-1", got.Items[0].ID)

	require.NoError(t, repo.Delete(ctx, "sess_1"))
	got, err = repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestMemoryCartRepositoryReturnsClones(t *testing.T) {
	repo := NewMemoryCartRepository()
	ctx := context.Background()

	saved, err := repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	saved.Items = append(saved.Items, cart.Item{ID: "item-1", Quantity: 2})
	require.NoError(t, repo.Save(ctx, "sess_1", saved))

	first, err := repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	first.Items[0].Quantity = 99

	second, err := repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Items[0].Quantity, "mutating a returned cart must not leak into the store")
}

func TestMemoryCartRepositoryExpiry(t *testing.T) {
	repo := NewMemoryCartRepository()
	ctx := context.Background()

	sessionCart, err := repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	sessionCart.Items = append(sessionCart.Items, cart.Item{ID: "item-1"})
	sessionCart.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Save(ctx, "sess_1", sessionCart))

	got, err := repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	assert.Empty(t, got.Items, "an expired cart reads as empty")
}

func TestMemoryOTPRepositoryTTL(t *testing.T) {
	repo := NewMemoryOTPRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "+15550100", "123456", time.Minute))
	code, ok, err := repo.Get(ctx, "+15550100")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "123456", code)

	require.NoError(t, repo.Put(ctx, "+15550100", "654321", -time.Second))
	_, ok, err = repo.Get(ctx, "+15550100")
	require.NoError(t, err)
	assert.False(t, ok, "an expired code never verifies")

	require.NoError(t, repo.Delete(ctx, "+15550100"))
	_, ok, err = repo.Get(ctx, "+15550100")
	require.NoError(t, err)
	assert.False(t, ok)
}
