package Ledger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"GasTrack/Models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// SQLite allows a single writer; one connection avoids lock errors.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Models.Migrate(db))
	return db
}

func newTestWriter(t *testing.T, db *gorm.DB) *Writer {
	t.Helper()
	return NewWriter(db, DefaultPriceTable(), 168*time.Hour, 10)
}

var customerSeq int

func newTestCustomer(t *testing.T, db *gorm.DB) *Models.Customer {
	t.Helper()
	customerSeq++
	customer := &Models.Customer{
		Name:  fmt.Sprintf("Customer %d", customerSeq),
		Phone: fmt.Sprintf("07%08d", customerSeq),
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func reloadCustomer(t *testing.T, db *gorm.DB, id uint) Models.Customer {
	t.Helper()
	var customer Models.Customer
	require.NoError(t, db.First(&customer, id).Error)
	return customer
}

func TestRecordTransactionUpdatesCustomerCache(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	record, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Load:       Models.LoadBreakdown{Kg6: 5},
		Returns: Models.ReturnsBreakdown{
			MaxEmpty: Models.PricedCounts{Kg6: 2},
		},
		AmountPaid:    decimal.NewFromInt(1000),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	// 2 x 6 x 135 = 1620 billed, 1000 paid
	assert.Equal(t, "1620.00", record.TotalBill.StringFixed(2))
	assert.Equal(t, "620.00", record.FinancialBalance.StringFixed(2))
	assert.Equal(t, 3, record.CylinderBalance)
	assert.Regexp(t, `^TXN-\d{8}-\d{4}$`, record.TransactionNumber)

	updated := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, "620.00", updated.FinancialBalance.StringFixed(2))
	assert.Equal(t, 3, updated.CylinderBalance)
	assert.Equal(t, 3, updated.CylinderBalance6kg)
	require.NotNil(t, updated.LastTransactionDate)
}

func TestRecordTransactionNumbersAreSequential(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	var numbers []string
	for i := 0; i < 3; i++ {
		record, err := writer.RecordTransaction(TransactionInput{
			CustomerID: customer.ID,
			UserID:     1,
			Load:       Models.LoadBreakdown{Kg6: 1},
		})
		require.NoError(t, err)
		numbers = append(numbers, record.TransactionNumber)
	}

	day := time.Now().Format("20060102")
	assert.Equal(t, []string{
		fmt.Sprintf("TXN-%s-0001", day),
		fmt.Sprintf("TXN-%s-0002", day),
		fmt.Sprintf("TXN-%s-0003", day),
	}, numbers)
}

func TestRecordTransactionBalancesAreAdditive(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	expectedFinancial := decimal.Zero
	expectedCylinders := 0

	inputs := []TransactionInput{
		{
			CustomerID: customer.ID, UserID: 1,
			Load:    Models.LoadBreakdown{Kg6: 4, Kg13: 2},
			Returns: Models.ReturnsBreakdown{MaxEmpty: Models.PricedCounts{Kg6: 1}},
		},
		{
			CustomerID: customer.ID, UserID: 1,
			Returns:    Models.ReturnsBreakdown{ReturnFull: Models.UnpricedCounts{Kg6: 2}},
			AmountPaid: decimal.NewFromInt(0),
		},
		{
			CustomerID: customer.ID, UserID: 1,
			Outright:      Models.PricedCounts{Kg13: 1},
			AmountPaid:    decimal.NewFromInt(3500),
			PaymentMethod: "mpesa",
		},
	}

	for _, input := range inputs {
		record, err := writer.RecordTransaction(input)
		require.NoError(t, err)
		expectedFinancial = expectedFinancial.Add(record.FinancialBalance)
		expectedCylinders += record.CylinderBalance
	}

	updated := reloadCustomer(t, db, customer.ID)
	assert.True(t, updated.FinancialBalance.Equal(expectedFinancial),
		"cached %s, expected %s", updated.FinancialBalance, expectedFinancial)
	assert.Equal(t, expectedCylinders, updated.CylinderBalance)
}

func TestRecordTransactionConcurrentWrites(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := writer.RecordTransaction(TransactionInput{
				CustomerID: customer.ID,
				UserID:     1,
				Returns:    Models.ReturnsBreakdown{MaxEmpty: Models.PricedCounts{Kg6: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// 8 refills of one 6kg each: 8 x 810 owed, 8 cylinders handed back.
	updated := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, "6480.00", updated.FinancialBalance.StringFixed(2))
	assert.Equal(t, -workers, updated.CylinderBalance)

	report, err := NewReader(db).CheckDrift(customer.ID)
	require.NoError(t, err)
	assert.True(t, report.InSync)
}

func TestUpdateTransactionAdjustsByDifference(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	record, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Returns:    Models.ReturnsBreakdown{MaxEmpty: Models.PricedCounts{Kg6: 2}},
	})
	require.NoError(t, err)

	before := reloadCustomer(t, db, customer.ID)

	// Same breakdowns, 3 more paid: the customer owes exactly 3 less.
	updated, err := writer.UpdateTransaction(record.ID, TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Returns:    Models.ReturnsBreakdown{MaxEmpty: Models.PricedCounts{Kg6: 2}},
		AmountPaid: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "3.00", updated.AmountPaid.StringFixed(2))

	after := reloadCustomer(t, db, customer.ID)
	diff := before.FinancialBalance.Sub(after.FinancialBalance)
	assert.Equal(t, "3.00", diff.StringFixed(2))
	assert.Equal(t, before.CylinderBalance, after.CylinderBalance)
}

func TestUpdateTransactionRecomputesCylinders(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	record, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Load:       Models.LoadBreakdown{Kg6: 5},
	})
	require.NoError(t, err)

	_, err = writer.UpdateTransaction(record.ID, TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Load:       Models.LoadBreakdown{Kg6: 2},
	})
	require.NoError(t, err)

	updated := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, 2, updated.CylinderBalance6kg)
	assert.Equal(t, 2, updated.CylinderBalance)
}

func TestUpdateTransactionKeepsPaymentMethodWhenOmitted(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	record, err := writer.RecordTransaction(TransactionInput{
		CustomerID:    customer.ID,
		UserID:        1,
		Load:          Models.LoadBreakdown{Kg6: 2},
		PaymentMethod: "mpesa",
	})
	require.NoError(t, err)

	// An edit that says nothing about the method must not reset it.
	updated, err := writer.UpdateTransaction(record.ID, TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Load:       Models.LoadBreakdown{Kg6: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "mpesa", updated.PaymentMethod)

	var reloaded Models.Transaction
	require.NoError(t, db.First(&reloaded, record.ID).Error)
	assert.Equal(t, "mpesa", reloaded.PaymentMethod)

	// An explicit method still wins.
	updated, err = writer.UpdateTransaction(record.ID, TransactionInput{
		CustomerID:    customer.ID,
		UserID:        1,
		Load:          Models.LoadBreakdown{Kg6: 2},
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "cash", updated.PaymentMethod)
}

func TestDeleteTransactionReversesBalances(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	record, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Load:       Models.LoadBreakdown{Kg13: 3},
		Returns:    Models.ReturnsBreakdown{MaxEmpty: Models.PricedCounts{Kg13: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, writer.DeleteTransaction(record.ID))

	updated := reloadCustomer(t, db, customer.ID)
	assert.True(t, updated.FinancialBalance.IsZero(), "got %s", updated.FinancialBalance)
	assert.Equal(t, 0, updated.CylinderBalance)
	assert.Equal(t, 0, updated.CylinderBalance13kg)

	err = db.First(&Models.Transaction{}, record.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteTransactionRefusesOutsideRetentionWindow(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	record, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Load:       Models.LoadBreakdown{Kg6: 1},
	})
	require.NoError(t, err)

	// Age the row past the 7 day window.
	old := time.Now().Add(-200 * time.Hour)
	require.NoError(t, db.Model(&Models.Transaction{}).
		Where("id = ?", record.ID).
		Update("created_at", old).Error)

	err = writer.DeleteTransaction(record.ID)
	var policy *PolicyViolationError
	require.ErrorAs(t, err, &policy)

	// Nothing moved.
	updated := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, 1, updated.CylinderBalance)
}

func TestDeleteTransactionNotFound(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)

	err := writer.DeleteTransaction(9999)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "transaction", notFound.Entity)
}

func TestRecordPayment(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	record, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customer.ID,
		UserID:     1,
		Outright:   Models.PricedCounts{Kg6: 1}, // 3200 billed
	})
	require.NoError(t, err)

	payment, err := writer.RecordPayment(record.ID, decimal.NewFromInt(1200), "mpesa", "part payment", 1)
	require.NoError(t, err)
	assert.Regexp(t, `^RCP-\d{8}-\d{4}$`, payment.ReceiptNumber)
	assert.Equal(t, customer.ID, payment.CustomerID)

	var reloaded Models.Transaction
	require.NoError(t, db.First(&reloaded, record.ID).Error)
	assert.Equal(t, "1200.00", reloaded.AmountPaid.StringFixed(2))
	assert.Equal(t, "2000.00", reloaded.FinancialBalance.StringFixed(2))

	updated := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, "2000.00", updated.FinancialBalance.StringFixed(2))
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)

	_, err := writer.RecordPayment(1, decimal.Zero, "cash", "", 1)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "amount", validation.Field)
}

// outrightFor creates a transaction whose bill is exactly the given amount, by
// selling one 6kg cylinder at that price.
func outrightFor(t *testing.T, writer *Writer, customerID uint, amount int64) *Models.Transaction {
	t.Helper()
	record, err := writer.RecordTransaction(TransactionInput{
		CustomerID: customerID,
		UserID:     1,
		Outright:   Models.PricedCounts{Kg6: 1, Price6: decimal.NewFromInt(amount)},
	})
	require.NoError(t, err)
	return record
}

func TestApplyBulkPaymentOldestFirst(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	first := outrightFor(t, writer, customer.ID, 100)
	second := outrightFor(t, writer, customer.ID, 50)
	third := outrightFor(t, writer, customer.ID, 30)

	result, err := writer.ApplyBulkPayment(customer.ID, decimal.NewFromInt(120), "bulk", 1)
	require.NoError(t, err)
	assert.Equal(t, "120", result.Applied.String())
	assert.True(t, result.Remainder.IsZero())
	assert.Equal(t, 2, result.Transactions)

	var a, b, c Models.Transaction
	require.NoError(t, db.First(&a, first.ID).Error)
	require.NoError(t, db.First(&b, second.ID).Error)
	require.NoError(t, db.First(&c, third.ID).Error)
	assert.True(t, a.Outstanding().IsZero())
	assert.Equal(t, "30.00", b.Outstanding().StringFixed(2))
	assert.Equal(t, "30.00", c.Outstanding().StringFixed(2))

	updated := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, "60.00", updated.FinancialBalance.StringFixed(2))
}

func TestApplyBulkPaymentReportsRemainder(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	outrightFor(t, writer, customer.ID, 100)
	outrightFor(t, writer, customer.ID, 80)

	result, err := writer.ApplyBulkPayment(customer.ID, decimal.NewFromInt(200), "", 1)
	require.NoError(t, err)
	assert.Equal(t, "180", result.Applied.String())
	assert.Equal(t, "20", result.Remainder.String())
	assert.Equal(t, 2, result.Transactions)

	// The remainder is reported, never credited to the customer.
	updated := reloadCustomer(t, db, customer.ID)
	assert.True(t, updated.FinancialBalance.IsZero(), "got %s", updated.FinancialBalance)
}

func TestApplyBulkPaymentCreatesReceipts(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	outrightFor(t, writer, customer.ID, 100)
	outrightFor(t, writer, customer.ID, 50)

	_, err := writer.ApplyBulkPayment(customer.ID, decimal.NewFromInt(150), "settled", 1)
	require.NoError(t, err)

	var payments []Models.Payment
	require.NoError(t, db.Where("customer_id = ?", customer.ID).Find(&payments).Error)
	require.Len(t, payments, 2)
	for _, payment := range payments {
		assert.Regexp(t, `^RCP-\d{8}-\d{4}$`, payment.ReceiptNumber)
		assert.Equal(t, "settled", payment.Notes)
	}
}

func TestRecordTransactionValidation(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)
	customer := newTestCustomer(t, db)

	cases := []struct {
		name  string
		input TransactionInput
	}{
		{
			name:  "missing customer",
			input: TransactionInput{UserID: 1},
		},
		{
			name: "negative load count",
			input: TransactionInput{
				CustomerID: customer.ID, UserID: 1,
				Load: Models.LoadBreakdown{Kg6: -1},
			},
		},
		{
			name: "negative return count",
			input: TransactionInput{
				CustomerID: customer.ID, UserID: 1,
				Returns: Models.ReturnsBreakdown{ReturnFull: Models.UnpricedCounts{Kg13: -2}},
			},
		},
		{
			name: "negative price",
			input: TransactionInput{
				CustomerID: customer.ID, UserID: 1,
				Outright: Models.PricedCounts{Kg6: 1, Price6: decimal.NewFromInt(-5)},
			},
		},
		{
			name: "negative amount paid",
			input: TransactionInput{
				CustomerID: customer.ID, UserID: 1,
				AmountPaid: decimal.NewFromInt(-1),
			},
		},
		{
			name: "unknown payment method",
			input: TransactionInput{
				CustomerID: customer.ID, UserID: 1,
				PaymentMethod: "barter",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := writer.RecordTransaction(tc.input)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
		})
	}
}

func TestRecordTransactionUnknownCustomer(t *testing.T) {
	db := newTestDB(t)
	writer := newTestWriter(t, db)

	_, err := writer.RecordTransaction(TransactionInput{
		CustomerID: 424242,
		UserID:     1,
		Load:       Models.LoadBreakdown{Kg6: 1},
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "customer", notFound.Entity)
}
