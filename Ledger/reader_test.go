package Ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasTrack/Models"
)

func TestComputeBalanceMatchesCacheAfterMixedOperations(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	reader := NewReader(db)
	customer := newTestCustomer(t, db)

	first, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID, UserID: 1,
		Load:    Models.LoadBreakdown{Kg6: 6, Kg50: 1},
		Returns: Models.ReturnsBreakdown{MaxEmpty: Models.PricedCounts{Kg6: 2}},
	})
	require.NoError(t, err)

	second, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID, UserID: 1,
		Outright:   Models.PricedCounts{Kg13: 2},
		AmountPaid: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)

	_, err = writer.RecordPayment(first.ID, decimal.NewFromInt(500), "cash", "", 1)
	require.NoError(t, err)

	_, err = writer.UpdateTransaction(second.ID, TransactionInput{
		CustomerID: customer.ID, UserID: 1,
		Outright:   Models.PricedCounts{Kg13: 1},
		AmountPaid: decimal.NewFromInt(3500),
	})
	require.NoError(t, err)

	computed, err := reader.ComputeBalance(customer.ID)
	require.NoError(t, err)

	cached := reloadCustomer(t, db, customer.ID)
	assert.True(t, cached.FinancialBalance.Equal(computed.Financial),
		"cached %s, computed %s", cached.FinancialBalance, computed.Financial)
	assert.Equal(t, cached.CylinderBalance, computed.Cylinders.Total)
	assert.Equal(t, cached.CylinderBalance6kg, computed.Cylinders.Kg6)
	assert.Equal(t, cached.CylinderBalance13kg, computed.Cylinders.Kg13)
	assert.Equal(t, cached.CylinderBalance50kg, computed.Cylinders.Kg50)
}

func TestComputeBalanceUnknownCustomer(t *testing.T) {
	db := newTestDB(t)
	reader := NewReader(db)

	_, err := reader.ComputeBalance(12345)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCheckDriftDetectsTamperedCache(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	reader := NewReader(db)
	customer := newTestCustomer(t, db)

	_, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID, UserID: 1,
		Load: Models.LoadBreakdown{Kg6: 3},
	})
	require.NoError(t, err)

	report, err := reader.CheckDrift(customer.ID)
	require.NoError(t, err)
	assert.True(t, report.InSync)

	// Corrupt the cache behind the ledger's back.
	require.NoError(t, db.Model(&Models.Customer{}).
		Where("id = ?", customer.ID).
		Update("financial_balance", decimal.NewFromInt(999)).Error)

	report, err = reader.CheckDrift(customer.ID)
	require.NoError(t, err)
	assert.False(t, report.InSync)
	assert.Equal(t, "999.00", report.Cached.Financial.StringFixed(2))
	assert.True(t, report.Computed.Financial.IsZero())
}

func TestCheckAllReturnsOnlyDriftedCustomers(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	reader := NewReader(db)

	clean := newTestCustomer(t, db)
	dirty := newTestCustomer(t, db)

	for _, customer := range []*Models.Customer{clean, dirty} {
		_, err := writer.RecordTransaction(TransactionInput{
			CustomerID: customer.ID, UserID: 1,
			Load: Models.LoadBreakdown{Kg13: 1},
		})
		require.NoError(t, err)
	}

	require.NoError(t, db.Model(&Models.Customer{}).
		Where("id = ?", dirty.ID).
		Update("cylinder_balance", 42).Error)

	drifted, err := reader.CheckAll()
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	assert.Equal(t, dirty.ID, drifted[0].CustomerID)
}

func TestComputeBalanceEmptyHistoryIsZero(t *testing.T) {
	db := newTestDB(t)
	reader := NewReader(db)
	customer := newTestCustomer(t, db)

	balance, err := reader.ComputeBalance(customer.ID)
	require.NoError(t, err)
	assert.True(t, balance.Financial.IsZero())
	assert.Equal(t, CylinderTotals{}, balance.Cylinders)
}
