package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/farmcrate-storefront/internal/catalog"
	"github.com/your-org/farmcrate-storefront/internal/delivery"
)

func testProduct() *catalog.Product {
	return &catalog.Product{
		ID:                "box-seasonal",
		Name:              "Seasonal Harvest Box",
		Price:             45000,
		AllowOneTime:      true,
		AllowSubscription: true,
		IsActive:          true,
		Intervals: []catalog.SubscriptionInterval{
			{Key: "weekly", Label: "Every week", CadenceDays: 7, Price: 40500, DiscountPercent: 10},
			{Key: "biweekly", Label: "Every two weeks", CadenceDays: 14, Price: 36000, DiscountPercent: 20},
		},
	}
}

func testSnapshot(days delivery.Inventory) delivery.Snapshot {
	return delivery.Snapshot{Days: days, ClosedDays: []int{1, 7}}
}

func TestResolveInterval(t *testing.T) {
	product := testProduct()

	t.Run("matches requested key", func(t *testing.T) {
		interval, ok := ResolveInterval(product, "biweekly")
		require.True(t, ok)
		assert.Equal(t, "biweekly", interval.Key)
	})

	t.Run("defaults to first on empty key", func(t *testing.T) {
		interval, ok := ResolveInterval(product, "")
		require.True(t, ok)
		assert.Equal(t, "weekly", interval.Key)
	})

	t.Run("defaults to first on unknown key", func(t *testing.T) {
		interval, ok := ResolveInterval(product, "monthly")
		require.True(t, ok)
		assert.Equal(t, "weekly", interval.Key)
	})

	t.Run("no intervals configured", func(t *testing.T) {
		_, ok := ResolveInterval(&catalog.Product{}, "weekly")
		assert.False(t, ok)
	})
}

func TestClampQuantityInvariant(t *testing.T) {
	// For any remaining capacity R >= 1 the result lies in [1, R] for
	// every requested quantity >= 1.
	for capacity := 1; capacity <= 10; capacity++ {
		snapshot := testSnapshot(delivery.Inventory{3: capacity})
		for requested := 1; requested <= 20; requested++ {
			got, err := ClampQuantity(requested, 3, snapshot, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, capacity)
		}
	}
}

func TestClampQuantityZeroCapacity(t *testing.T) {
	snapshot := testSnapshot(delivery.Inventory{3: 0})

	_, err := ClampQuantity(2, 3, snapshot, 0)
	assert.ErrorIs(t, err, ErrDayUnavailable)
}

func TestClampQuantityAccountsForHeldUnits(t *testing.T) {
	// Inventory {2: 3} with 1 unit already tentatively held: a request
	// for 5 clamps to 2, not 5.
	snapshot := testSnapshot(delivery.Inventory{2: 3})

	got, err := ClampQuantity(5, 2, snapshot, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestClampQuantityRaisesToOne(t *testing.T) {
	snapshot := testSnapshot(delivery.Inventory{2: 3})

	got, err := ClampQuantity(0, 2, snapshot, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestIsDaySelectable(t *testing.T) {
	snapshot := testSnapshot(delivery.Inventory{1: 10, 2: 5, 3: 0})

	assert.False(t, IsDaySelectable(snapshot, 1, 0), "closed day is never selectable, capacity is irrelevant")
	assert.False(t, IsDaySelectable(snapshot, 7, 0), "closed day without capacity")
	assert.True(t, IsDaySelectable(snapshot, 2, 0))
	assert.False(t, IsDaySelectable(snapshot, 3, 0), "zero capacity")
	assert.False(t, IsDaySelectable(snapshot, 2, 5), "holds exhaust capacity")
	assert.False(t, IsDaySelectable(snapshot, 0, 0))
	assert.False(t, IsDaySelectable(snapshot, 8, 0))
}

func TestRemainingCapacityNeverNegative(t *testing.T) {
	snapshot := testSnapshot(delivery.Inventory{2: 3})

	assert.Equal(t, 3, RemainingCapacity(snapshot, 2, 0))
	assert.Equal(t, 1, RemainingCapacity(snapshot, 2, 2))
	assert.Equal(t, 0, RemainingCapacity(snapshot, 2, 9))
	assert.Equal(t, 0, RemainingCapacity(snapshot, 4, 0), "unknown day has no capacity")
}

func TestCheckSelectionReselectRequired(t *testing.T) {
	snapshot := testSnapshot(delivery.Inventory{2: 3})

	assert.NoError(t, CheckSelection(snapshot, 2, 3, 0))

	// A stock refresh lowered capacity below the chosen quantity: the
	// user must reselect, the engine never picks another day.
	assert.ErrorIs(t, CheckSelection(snapshot, 2, 4, 0), ErrReselectRequired)
	assert.ErrorIs(t, CheckSelection(snapshot, 2, 3, 1), ErrReselectRequired)

	lowered := testSnapshot(delivery.Inventory{2: 0})
	assert.ErrorIs(t, CheckSelection(lowered, 2, 1, 0), ErrReselectRequired)
}

func TestResolveSelection(t *testing.T) {
	product := testProduct()
	snapshot := testSnapshot(delivery.Inventory{2: 10})

	t.Run("subscription uses interval price", func(t *testing.T) {
		selection, err := ResolveSelection(product, SelectionRequest{
			Quantity:     2,
			PurchaseType: catalog.PurchaseTypeSubscription,
			IntervalKey:  "biweekly",
			DeliveryDay:  2,
		}, snapshot, 0)
		require.NoError(t, err)
		require.NotNil(t, selection.Interval)
		assert.Equal(t, "biweekly", selection.Interval.Key)
		assert.Equal(t, int64(36000), selection.UnitPrice)
		assert.Equal(t, 2, selection.Quantity)
	})

	t.Run("one time uses base price", func(t *testing.T) {
		selection, err := ResolveSelection(product, SelectionRequest{
			Quantity:     1,
			PurchaseType: catalog.PurchaseTypeOneTime,
			DeliveryDay:  2,
		}, snapshot, 0)
		require.NoError(t, err)
		assert.Nil(t, selection.Interval)
		assert.Equal(t, int64(45000), selection.UnitPrice)
	})

	t.Run("quantity clamps to capacity", func(t *testing.T) {
		selection, err := ResolveSelection(product, SelectionRequest{
			Quantity:     50,
			PurchaseType: catalog.PurchaseTypeOneTime,
			DeliveryDay:  2,
		}, snapshot, 0)
		require.NoError(t, err)
		assert.Equal(t, 10, selection.Quantity)
	})

	t.Run("closed day rejected", func(t *testing.T) {
		_, err := ResolveSelection(product, SelectionRequest{
			Quantity:     1,
			PurchaseType: catalog.PurchaseTypeOneTime,
			DeliveryDay:  7,
		}, snapshot, 0)
		assert.ErrorIs(t, err, ErrDayUnavailable)
	})

	t.Run("purchase type must be permitted", func(t *testing.T) {
		subscriptionOnly := testProduct()
		subscriptionOnly.AllowOneTime = false

		_, err := ResolveSelection(subscriptionOnly, SelectionRequest{
			Quantity:     1,
			PurchaseType: catalog.PurchaseTypeOneTime,
			DeliveryDay:  2,
		}, snapshot, 0)
		assert.Error(t, err)
	})

	t.Run("inactive product rejected", func(t *testing.T) {
		inactive := testProduct()
		inactive.IsActive = false

		_, err := ResolveSelection(inactive, SelectionRequest{
			Quantity:     1,
			PurchaseType: catalog.PurchaseTypeOneTime,
			DeliveryDay:  2,
		}, snapshot, 0)
		assert.Error(t, err)
	})

	t.Run("no delivery day skips stock checks", func(t *testing.T) {
		selection, err := ResolveSelection(product, SelectionRequest{
			Quantity:     3,
			PurchaseType: catalog.PurchaseTypeOneTime,
		}, delivery.Snapshot{}, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, selection.Quantity)
		assert.Equal(t, 0, selection.DeliveryDay)
	})
}
