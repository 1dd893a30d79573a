package commerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/farmcrate-storefront/internal/config"
)

func TestNewStockLedgerSeedsOpenDaysOnly(t *testing.T) {
	ledger := NewStockLedger(testDeliveryConfig())

	snapshot := ledger.Snapshot()
	for day := 2; day <= 6; day++ {
		assert.Equal(t, 25, snapshot.Days.Capacity(day))
	}
	assert.Equal(t, 0, snapshot.Days.Capacity(1))
	assert.Equal(t, 0, snapshot.Days.Capacity(7))
	assert.True(t, snapshot.IsClosed(1))
	assert.True(t, snapshot.IsClosed(7))
	assert.False(t, snapshot.IsClosed(4))
}

func TestReserveAndRelease(t *testing.T) {
	ledger := NewStockLedger(testDeliveryConfig())

	require.NoError(t, ledger.Reserve(3, 10))
	assert.Equal(t, 15, ledger.Snapshot().Days.Capacity(3))

	require.Error(t, ledger.Reserve(3, 16), "over-reservation must fail without partial effect")
	assert.Equal(t, 15, ledger.Snapshot().Days.Capacity(3))

	ledger.Release(3, 10)
	assert.Equal(t, 25, ledger.Snapshot().Days.Capacity(3))
}

func TestReserveClosedDayAlwaysFails(t *testing.T) {
	ledger := NewStockLedger(testDeliveryConfig())

	assert.Error(t, ledger.Reserve(1, 1))
	assert.Error(t, ledger.Reserve(7, 1))
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	ledger := NewStockLedger(testDeliveryConfig())

	assert.Error(t, ledger.Reserve(3, 0))
	assert.Error(t, ledger.Reserve(3, -2))
}

func TestReleaseOnClosedDayIsIgnored(t *testing.T) {
	ledger := NewStockLedger(testDeliveryConfig())

	ledger.Release(1, 5)
	assert.Equal(t, 0, ledger.Snapshot().Days.Capacity(1))
}

func TestSetCapacityFloorsAtZero(t *testing.T) {
	ledger := NewStockLedger(config.DeliveryConfig{DefaultCapacity: 25})

	ledger.SetCapacity(3, -4)
	assert.Equal(t, 0, ledger.Snapshot().Days.Capacity(3))

	ledger.SetCapacity(3, 2)
	require.NoError(t, ledger.Reserve(3, 2))
	assert.Error(t, ledger.Reserve(3, 1))
}
