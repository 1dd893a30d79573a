package commerce

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/farmcrate-storefront/internal/catalog"
	"github.com/your-org/farmcrate-storefront/internal/config"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testDeliveryConfig() config.DeliveryConfig {
	return config.DeliveryConfig{
		ClosedDays:      []int{1, 7},
		DefaultCapacity: 25,
		CartTTL:         24 * time.Hour,
	}
}

func newTestCartService() (*CartService, *StockLedger) {
	stock := NewStockLedger(testDeliveryConfig())
	service := NewCartService(NewMemoryCartRepository(), NewCatalogService(SeedProducts()), stock, testLogger())
	return service, stock
}

func TestAddItemPricesSubscriptionAuthoritatively(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	item, summary, err := service.AddItem(ctx, AddItemInput{
		SessionID:            "sess_1",
		ProductID:            "box-seasonal",
		Quantity:             2,
		PurchaseType:         catalog.PurchaseTypeSubscription,
		SubscriptionInterval: "biweekly",
		DeliveryDay:          3,
	})
	require.NoError(t, err)

	// 45000 base with the 20% biweekly discount.
	assert.Equal(t, int64(36000), item.UnitPrice)
	assert.Equal(t, int64(72000), item.Total)
	assert.Equal(t, "biweekly", item.SubscriptionInterval)
	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, int64(72000), summary.Subtotal)
}

func TestAddItemOneTimeUsesBasePrice(t *testing.T) {
	service, _ := newTestCartService()

	item, _, err := service.AddItem(context.Background(), AddItemInput{
		SessionID:    "sess_1",
		ProductID:    "box-seasonal",
		Quantity:     1,
		PurchaseType: catalog.PurchaseTypeOneTime,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(45000), item.UnitPrice)
	assert.Empty(t, item.SubscriptionInterval)
}

func TestAddItemReservesDeliveryCapacity(t *testing.T) {
	service, stock := newTestCartService()
	stock.SetCapacity(3, 5)

	_, _, err := service.AddItem(context.Background(), AddItemInput{
		SessionID:    "sess_1",
		ProductID:    "box-greens",
		Quantity:     4,
		PurchaseType: catalog.PurchaseTypeOneTime,
		DeliveryDay:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stock.Snapshot().Days.Capacity(3))

	_, _, err = service.AddItem(context.Background(), AddItemInput{
		SessionID:    "sess_1",
		ProductID:    "box-greens",
		Quantity:     2,
		PurchaseType: catalog.PurchaseTypeOneTime,
		DeliveryDay:  3,
	})
	require.Error(t, err, "a reservation beyond remaining capacity must fail")
	assert.Equal(t, 1, stock.Snapshot().Days.Capacity(3))
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	cases := []struct {
		name  string
		input AddItemInput
	}{
		{"missing session", AddItemInput{ProductID: "box-greens", Quantity: 1, PurchaseType: catalog.PurchaseTypeOneTime}},
		{"zero quantity", AddItemInput{SessionID: "s", ProductID: "box-greens", Quantity: 0, PurchaseType: catalog.PurchaseTypeOneTime}},
		{"unknown product", AddItemInput{SessionID: "s", ProductID: "box-unknown", Quantity: 1, PurchaseType: catalog.PurchaseTypeOneTime}},
		{"bad purchase type", AddItemInput{SessionID: "s", ProductID: "box-greens", Quantity: 1, PurchaseType: "rental"}},
		{"delivery day out of range", AddItemInput{SessionID: "s", ProductID: "box-greens", Quantity: 1, PurchaseType: catalog.PurchaseTypeOneTime, DeliveryDay: 9}},
		{"closed delivery day", AddItemInput{SessionID: "s", ProductID: "box-greens", Quantity: 1, PurchaseType: catalog.PurchaseTypeOneTime, DeliveryDay: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := service.AddItem(ctx, tc.input)
			assert.Error(t, err)
		})
	}
}

func TestAddItemSubscriptionOnlyProductRejectsOneTime(t *testing.T) {
	service, _ := newTestCartService()

	_, _, err := service.AddItem(context.Background(), AddItemInput{
		SessionID:    "sess_1",
		ProductID:    "box-dairy",
		Quantity:     1,
		PurchaseType: catalog.PurchaseTypeOneTime,
	})
	assert.Error(t, err)
}

func TestUpdateItemAdjustsStockByDelta(t *testing.T) {
	service, stock := newTestCartService()
	ctx := context.Background()

	item, _, err := service.AddItem(ctx, AddItemInput{
		SessionID:    "sess_1",
		ProductID:    "box-greens",
		Quantity:     2,
		PurchaseType: catalog.PurchaseTypeOneTime,
		DeliveryDay:  3,
	})
	require.NoError(t, err)
	require.Equal(t, 23, stock.Snapshot().Days.Capacity(3))

	updated, summary, err := service.UpdateItem(ctx, "sess_1", item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, int64(28000*5), updated.Total)
	assert.Equal(t, 20, stock.Snapshot().Days.Capacity(3))
	assert.Equal(t, 5, summary.ItemCount)

	_, _, err = service.UpdateItem(ctx, "sess_1", item.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 24, stock.Snapshot().Days.Capacity(3))
}

func TestUpdateItemUnknownItem(t *testing.T) {
	service, _ := newTestCartService()

	_, _, err := service.UpdateItem(context.Background(), "sess_1", "nope", 2)
	assert.Error(t, err)
}

func TestRemoveItemReleasesCapacity(t *testing.T) {
	service, stock := newTestCartService()
	ctx := context.Background()

	item, _, err := service.AddItem(ctx, AddItemInput{
		SessionID:    "sess_1",
		ProductID:    "box-greens",
		Quantity:     3,
		PurchaseType: catalog.PurchaseTypeOneTime,
		DeliveryDay:  4,
	})
	require.NoError(t, err)
	require.Equal(t, 22, stock.Snapshot().Days.Capacity(4))

	summary, err := service.RemoveItem(ctx, "sess_1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ItemCount)
	assert.Equal(t, 25, stock.Snapshot().Days.Capacity(4))

	items, _, err := service.GetCart(ctx, "sess_1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetCartUnknownSessionIsEmpty(t *testing.T) {
	service, _ := newTestCartService()

	items, summary, err := service.GetCart(context.Background(), "sess_new")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, summary.ItemCount)
}

func TestCartsAreIsolatedBySession(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	_, _, err := service.AddItem(ctx, AddItemInput{
		SessionID:    "sess_a",
		ProductID:    "box-greens",
		Quantity:     1,
		PurchaseType: catalog.PurchaseTypeOneTime,
	})
	require.NoError(t, err)

	items, _, err := service.GetCart(ctx, "sess_b")
	require.NoError(t, err)
	assert.Empty(t, items)
}
