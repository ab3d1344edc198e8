package Ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"GasTrack/Models"
)

// TransactionInput is the raw material for one ledger entry.
type TransactionInput struct {
	CustomerID    uint
	UserID        uint
	BranchID      *uint
	Date          time.Time
	Load          Models.LoadBreakdown
	Returns       Models.ReturnsBreakdown
	Outright      Models.PricedCounts
	AmountPaid    decimal.Decimal
	PaymentMethod string
	Notes         string
}

var paymentMethods = map[string]bool{
	"cash":     true,
	"mpesa":    true,
	"card":     true,
	"transfer": true,
	"credit":   true,
}

// Writer orchestrates ledger writes. Every mutation persists the transaction
// row and applies the computed deltas to the owning customer's cached
// balances inside a single database transaction; the customer row carries a
// version column and the balance write is conditional on it, retried a
// bounded number of times.
type Writer struct {
	db         *gorm.DB
	prices     PriceTable
	retention  time.Duration
	maxRetries int
	validate   *validator.Validate
}

// NewWriter builds a ledger writer around an already-open database handle.
func NewWriter(db *gorm.DB, prices PriceTable, retention time.Duration, maxRetries int) *Writer {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Writer{
		db:         db,
		prices:     prices,
		retention:  retention,
		maxRetries: maxRetries,
		validate:   validator.New(),
	}
}

// Prices exposes the writer's price table, for display endpoints.
func (w *Writer) Prices() PriceTable {
	return w.prices
}

// RecordTransaction validates the input, computes all derived fields, and
// atomically persists the new transaction while bumping the customer's
// cached balances.
func (w *Writer) RecordTransaction(input TransactionInput) (*Models.Transaction, error) {
	if err := w.validateInput(&input); err != nil {
		return nil, err
	}

	totalBill := w.prices.TotalBill(input.Returns, input.Outright)
	deltas := ComputeCylinderDeltas(input.Load, input.Returns, input.Outright)
	financialDelta := totalBill.Sub(input.AmountPaid)

	var created *Models.Transaction
	err := w.withBalanceRetry(input.CustomerID, func(tx *gorm.DB, customer *Models.Customer) error {
		number, err := nextTransactionNumber(tx)
		if err != nil {
			return err
		}

		record := &Models.Transaction{
			TransactionNumber:   number,
			CustomerID:          input.CustomerID,
			UserID:              input.UserID,
			BranchID:            input.BranchID,
			Date:                input.Date,
			Load:                input.Load,
			Returns:             input.Returns,
			Outright:            input.Outright,
			TotalLoad:           TotalLoad(input.Load),
			TotalReturns:        TotalReturns(input.Returns),
			CylinderBalance6kg:  deltas.Kg6,
			CylinderBalance13kg: deltas.Kg13,
			CylinderBalance50kg: deltas.Kg50,
			CylinderBalance:     deltas.Total(),
			TotalBill:           totalBill,
			AmountPaid:          input.AmountPaid,
			FinancialBalance:    financialDelta,
			PaymentMethod:       input.PaymentMethod,
			Status:              "completed",
			Notes:               input.Notes,
		}

		if err := tx.Create(record).Error; err != nil {
			if isDuplicateKey(err) {
				// Another writer claimed the same transaction number.
				return errVersionConflict
			}
			return &StorageError{Op: "create transaction", Err: err}
		}
		created = record

		return applyCustomerDeltas(tx, customer, financialDelta, deltas, &input.Date)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTransaction recomputes all derived fields from the edited inputs and
// adjusts the customer's cached balances by the difference between the new
// and old deltas. It never re-sums the customer's history; that is the
// reader's job.
func (w *Writer) UpdateTransaction(id uint, input TransactionInput) (*Models.Transaction, error) {
	// Validation defaults an empty method to "credit", so remember whether the
	// caller actually supplied one before it runs.
	methodProvided := input.PaymentMethod != ""
	if err := w.validateInput(&input); err != nil {
		return nil, err
	}

	totalBill := w.prices.TotalBill(input.Returns, input.Outright)
	deltas := ComputeCylinderDeltas(input.Load, input.Returns, input.Outright)
	financial := totalBill.Sub(input.AmountPaid)

	var updated *Models.Transaction
	err := w.withTransactionRecord(id, func(tx *gorm.DB, record *Models.Transaction, customer *Models.Customer) error {
		financialDiff := financial.Sub(record.FinancialBalance)
		cylinderDiff := CylinderDeltas{
			Kg6:  deltas.Kg6 - record.CylinderBalance6kg,
			Kg13: deltas.Kg13 - record.CylinderBalance13kg,
			Kg50: deltas.Kg50 - record.CylinderBalance50kg,
		}

		record.Date = input.Date
		record.Load = input.Load
		record.Returns = input.Returns
		record.Outright = input.Outright
		record.TotalLoad = TotalLoad(input.Load)
		record.TotalReturns = TotalReturns(input.Returns)
		record.CylinderBalance6kg = deltas.Kg6
		record.CylinderBalance13kg = deltas.Kg13
		record.CylinderBalance50kg = deltas.Kg50
		record.CylinderBalance = deltas.Total()
		record.TotalBill = totalBill
		record.AmountPaid = input.AmountPaid
		record.FinancialBalance = financial
		if methodProvided {
			record.PaymentMethod = input.PaymentMethod
		}
		if input.Notes != "" {
			record.Notes = input.Notes
		}

		if err := tx.Save(record).Error; err != nil {
			return &StorageError{Op: "update transaction", Err: err}
		}
		updated = record

		return applyCustomerDeltas(tx, customer, financialDiff, cylinderDiff, nil)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransaction reverses the transaction's contribution to the customer's
// cached balances and removes the row, all in one unit of work. Transactions
// older than the retention window cannot be deleted.
func (w *Writer) DeleteTransaction(id uint) error {
	return w.withTransactionRecord(id, func(tx *gorm.DB, record *Models.Transaction, customer *Models.Customer) error {
		if w.retention > 0 && time.Since(record.CreatedAt) > w.retention {
			return &PolicyViolationError{
				Reason: fmt.Sprintf("cannot delete transactions older than %d days", int(w.retention.Hours()/24)),
			}
		}

		reversal := CylinderDeltas{
			Kg6:  -record.CylinderBalance6kg,
			Kg13: -record.CylinderBalance13kg,
			Kg50: -record.CylinderBalance50kg,
		}

		if err := tx.Where("transaction_id = ?", record.ID).Delete(&Models.Payment{}).Error; err != nil {
			return &StorageError{Op: "delete payments", Err: err}
		}
		if err := tx.Delete(record).Error; err != nil {
			return &StorageError{Op: "delete transaction", Err: err}
		}

		return applyCustomerDeltas(tx, customer, record.FinancialBalance.Neg(), reversal, nil)
	})
}

// RecordPayment creates a payment row against a transaction, bumps the
// transaction's amount_paid, and reduces the customer's financial balance,
// atomically.
func (w *Writer) RecordPayment(transactionID uint, amount decimal.Decimal, method, notes string, userID uint) (*Models.Payment, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if !paymentMethods[method] {
		return nil, &ValidationError{Field: "method", Reason: "unknown payment method"}
	}

	var payment *Models.Payment
	err := w.withTransactionRecord(transactionID, func(tx *gorm.DB, record *Models.Transaction, customer *Models.Customer) error {
		receipt, err := nextReceiptNumber(tx)
		if err != nil {
			return err
		}

		payment = &Models.Payment{
			ReceiptNumber: receipt,
			TransactionID: record.ID,
			CustomerID:    record.CustomerID,
			ProcessedBy:   userID,
			Amount:        amount,
			Method:        method,
			PaymentDate:   time.Now(),
			Notes:         notes,
			Status:        "completed",
		}
		if err := tx.Create(payment).Error; err != nil {
			if isDuplicateKey(err) {
				return errVersionConflict
			}
			return &StorageError{Op: "create payment", Err: err}
		}

		record.AmountPaid = record.AmountPaid.Add(amount)
		record.FinancialBalance = record.TotalBill.Sub(record.AmountPaid)
		if err := tx.Save(record).Error; err != nil {
			return &StorageError{Op: "update transaction payment", Err: err}
		}

		return applyCustomerDeltas(tx, customer, amount.Neg(), CylinderDeltas{}, nil)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// BulkPaymentResult reports how a lump payment was allocated.
type BulkPaymentResult struct {
	Applied      decimal.Decimal `json:"applied"`
	Remainder    decimal.Decimal `json:"remainder"`
	Transactions int             `json:"transactions_paid"`
}

// ApplyBulkPayment distributes a lump payment across the customer's
// outstanding transactions oldest-first. Any unapplied remainder is reported
// back to the caller; it is neither dropped nor credited forward.
func (w *Writer) ApplyBulkPayment(customerID uint, amount decimal.Decimal, note string, userID uint) (BulkPaymentResult, error) {
	result := BulkPaymentResult{Applied: decimal.Zero, Remainder: amount}
	if !amount.IsPositive() {
		return result, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	err := w.withBalanceRetry(customerID, func(tx *gorm.DB, customer *Models.Customer) error {
		var records []Models.Transaction
		if err := tx.Where("customer_id = ?", customerID).Order("date ASC, id ASC").Find(&records).Error; err != nil {
			return &StorageError{Op: "load customer transactions", Err: err}
		}

		remaining := amount
		applied := decimal.Zero
		paidCount := 0

		for i := range records {
			if !remaining.IsPositive() {
				break
			}
			record := &records[i]

			outstanding := record.Outstanding()
			if !outstanding.IsPositive() {
				continue
			}

			payment := decimal.Min(outstanding, remaining)
			remaining = remaining.Sub(payment)
			applied = applied.Add(payment)
			paidCount++

			record.AmountPaid = record.AmountPaid.Add(payment)
			record.FinancialBalance = record.TotalBill.Sub(record.AmountPaid)
			if note != "" {
				if record.Notes != "" {
					record.Notes = record.Notes + "\n" + note
				} else {
					record.Notes = note
				}
			}
			if err := tx.Save(record).Error; err != nil {
				return &StorageError{Op: "apply bulk payment", Err: err}
			}

			receipt, err := nextReceiptNumber(tx)
			if err != nil {
				return err
			}
			paymentRow := &Models.Payment{
				ReceiptNumber: receipt,
				TransactionID: record.ID,
				CustomerID:    customerID,
				ProcessedBy:   userID,
				Amount:        payment,
				Method:        "cash",
				PaymentDate:   time.Now(),
				Notes:         note,
				Status:        "completed",
			}
			if err := tx.Create(paymentRow).Error; err != nil {
				if isDuplicateKey(err) {
					return errVersionConflict
				}
				return &StorageError{Op: "create bulk payment row", Err: err}
			}
		}

		result.Applied = applied
		result.Remainder = remaining
		result.Transactions = paidCount

		if applied.IsZero() {
			return nil
		}
		return applyCustomerDeltas(tx, customer, applied.Neg(), CylinderDeltas{}, nil)
	})
	return result, err
}

// --- internals ---

func (w *Writer) validateInput(input *TransactionInput) error {
	if input.CustomerID == 0 {
		return &ValidationError{Field: "customerId", Reason: "is required"}
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "credit"
	}
	if !paymentMethods[input.PaymentMethod] {
		return &ValidationError{Field: "paymentMethod", Reason: "unknown payment method"}
	}
	if input.AmountPaid.IsNegative() {
		return &ValidationError{Field: "amountPaid", Reason: "must not be negative"}
	}

	for field, counts := range map[string]interface{}{
		"loadBreakdown":                input.Load,
		"returnsBreakdown.max_empty":   input.Returns.MaxEmpty,
		"returnsBreakdown.swap_empty":  input.Returns.SwapEmpty,
		"returnsBreakdown.return_full": input.Returns.ReturnFull,
		"outrightBreakdown":            input.Outright,
	} {
		if err := w.validate.Struct(counts); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				return &ValidationError{
					Field:  field + "." + fieldErrs[0].Field(),
					Reason: "must not be negative",
				}
			}
			return &ValidationError{Field: field, Reason: err.Error()}
		}
	}

	for field, price := range map[string]decimal.Decimal{
		"returnsBreakdown.max_empty.price6":   input.Returns.MaxEmpty.Price6,
		"returnsBreakdown.max_empty.price13":  input.Returns.MaxEmpty.Price13,
		"returnsBreakdown.max_empty.price50":  input.Returns.MaxEmpty.Price50,
		"returnsBreakdown.swap_empty.price6":  input.Returns.SwapEmpty.Price6,
		"returnsBreakdown.swap_empty.price13": input.Returns.SwapEmpty.Price13,
		"returnsBreakdown.swap_empty.price50": input.Returns.SwapEmpty.Price50,
		"outrightBreakdown.price6":            input.Outright.Price6,
		"outrightBreakdown.price13":           input.Outright.Price13,
		"outrightBreakdown.price50":           input.Outright.Price50,
	} {
		if price.IsNegative() {
			return &ValidationError{Field: field, Reason: "must not be negative"}
		}
	}

	return nil
}

// withBalanceRetry runs fn inside a database transaction with the customer
// row freshly loaded, retrying the whole unit of work when the conditional
// balance write loses a version race.
func (w *Writer) withBalanceRetry(customerID uint, fn func(tx *gorm.DB, customer *Models.Customer) error) error {
	for attempt := 0; attempt < w.maxRetries; attempt++ {
		tx := w.db.Begin()
		if tx.Error != nil {
			return &StorageError{Op: "begin", Err: tx.Error}
		}

		var customer Models.Customer
		if err := tx.First(&customer, customerID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "customer", ID: customerID}
			}
			return &StorageError{Op: "load customer", Err: err}
		}

		err := fn(tx, &customer)
		if errors.Is(err, errVersionConflict) {
			tx.Rollback()
			continue
		}
		if err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit().Error; err != nil {
			return &StorageError{Op: "commit", Err: err}
		}
		return nil
	}
	return &ConcurrencyConflictError{CustomerID: customerID, Attempts: w.maxRetries}
}

// withTransactionRecord loads the transaction row inside the retried unit of
// work and hands it to fn along with its owning customer.
func (w *Writer) withTransactionRecord(id uint, fn func(tx *gorm.DB, record *Models.Transaction, customer *Models.Customer) error) error {
	// Resolve the owning customer outside the loop so the retry wrapper can
	// load and version-check it.
	var existing Models.Transaction
	if err := w.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "transaction", ID: id}
		}
		return &StorageError{Op: "load transaction", Err: err}
	}

	return w.withBalanceRetry(existing.CustomerID, func(tx *gorm.DB, customer *Models.Customer) error {
		var record Models.Transaction
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "transaction", ID: id}
			}
			return &StorageError{Op: "load transaction", Err: err}
		}
		return fn(tx, &record, customer)
	})
}

// applyCustomerDeltas performs the conditional read-modify-write on the
// customer's cached balances. A zero-row update means another writer won the
// race and the caller must retry.
func applyCustomerDeltas(tx *gorm.DB, customer *Models.Customer, financialDelta decimal.Decimal, deltas CylinderDeltas, lastTransaction *time.Time) error {
	updates := map[string]interface{}{
		"financial_balance":     customer.FinancialBalance.Add(financialDelta),
		"cylinder_balance":      customer.CylinderBalance + deltas.Total(),
		"cylinder_balance_6kg":  customer.CylinderBalance6kg + deltas.Kg6,
		"cylinder_balance_13kg": customer.CylinderBalance13kg + deltas.Kg13,
		"cylinder_balance_50kg": customer.CylinderBalance50kg + deltas.Kg50,
		"version":               customer.Version + 1,
	}
	if lastTransaction != nil {
		updates["last_transaction_date"] = *lastTransaction
	}

	result := tx.Model(&Models.Customer{}).
		Where("id = ? AND version = ?", customer.ID, customer.Version).
		Updates(updates)
	if result.Error != nil {
		return &StorageError{Op: "update customer balances", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return errVersionConflict
	}
	return nil
}

// nextTransactionNumber issues a per-day sequential number so creation order
// stays auditable. Soft-deleted rows still count toward the sequence.
func nextTransactionNumber(tx *gorm.DB) (string, error) {
	day := time.Now().Format("20060102")
	var count int64
	err := tx.Unscoped().Model(&Models.Transaction{}).
		Where("transaction_number LIKE ?", "TXN-"+day+"-%").
		Count(&count).Error
	if err != nil {
		return "", &StorageError{Op: "number transaction", Err: err}
	}
	return fmt.Sprintf("TXN-%s-%04d", day, count+1), nil
}

func nextReceiptNumber(tx *gorm.DB) (string, error) {
	day := time.Now().Format("20060102")
	var count int64
	err := tx.Unscoped().Model(&Models.Payment{}).
		Where("receipt_number LIKE ?", "RCP-"+day+"-%").
		Count(&count).Error
	if err != nil {
		return "", &StorageError{Op: "number receipt", Err: err}
	}
	return fmt.Sprintf("RCP-%s-%04d", day, count+1), nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "Duplicate entry")
}
