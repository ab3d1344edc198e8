package Ledger

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"GasTrack/Models"
)

// CylinderTotals is a per-size cylinder position.
type CylinderTotals struct {
	Kg6   int `json:"6kg"`
	Kg13  int `json:"13kg"`
	Kg50  int `json:"50kg"`
	Total int `json:"total"`
}

// Balance is a customer's position as recomputed from their transactions.
type Balance struct {
	Financial decimal.Decimal `json:"financial"`
	Cylinders CylinderTotals  `json:"cylinders"`
}

// Reader recomputes customer balances by folding over transaction history.
// It is deliberately independent of the cached fields on Customer, so drift
// between the cache and the ledger can be detected by comparing the two.
type Reader struct {
	db *gorm.DB
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// ComputeBalance sums the stored derived fields across all of the customer's
// transactions. Sums are taken in Go with decimal arithmetic rather than in
// SQL, so the result is exact regardless of how the driver stores decimals.
func (r *Reader) ComputeBalance(customerID uint) (Balance, error) {
	var customer Models.Customer
	if err := r.db.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Balance{}, &NotFoundError{Entity: "customer", ID: customerID}
		}
		return Balance{}, &StorageError{Op: "load customer", Err: err}
	}

	var records []Models.Transaction
	if err := r.db.Where("customer_id = ?", customerID).Find(&records).Error; err != nil {
		return Balance{}, &StorageError{Op: "load transactions", Err: err}
	}

	balance := Balance{Financial: decimal.Zero}
	for _, record := range records {
		balance.Financial = balance.Financial.Add(record.FinancialBalance)
		balance.Cylinders.Kg6 += record.CylinderBalance6kg
		balance.Cylinders.Kg13 += record.CylinderBalance13kg
		balance.Cylinders.Kg50 += record.CylinderBalance50kg
	}
	balance.Cylinders.Total = balance.Cylinders.Kg6 + balance.Cylinders.Kg13 + balance.Cylinders.Kg50

	return balance, nil
}

// DriftReport compares a customer's cached balances against the recomputed
// truth.
type DriftReport struct {
	CustomerID uint    `json:"customer_id"`
	Name       string  `json:"name"`
	Cached     Balance `json:"cached"`
	Computed   Balance `json:"computed"`
	InSync     bool    `json:"in_sync"`
}

// CheckDrift recomputes one customer's balance and compares it with the
// cached fields.
func (r *Reader) CheckDrift(customerID uint) (DriftReport, error) {
	var customer Models.Customer
	if err := r.db.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DriftReport{}, &NotFoundError{Entity: "customer", ID: customerID}
		}
		return DriftReport{}, &StorageError{Op: "load customer", Err: err}
	}

	computed, err := r.ComputeBalance(customerID)
	if err != nil {
		return DriftReport{}, err
	}

	cached := Balance{
		Financial: customer.FinancialBalance,
		Cylinders: CylinderTotals{
			Kg6:   customer.CylinderBalance6kg,
			Kg13:  customer.CylinderBalance13kg,
			Kg50:  customer.CylinderBalance50kg,
			Total: customer.CylinderBalance,
		},
	}

	return DriftReport{
		CustomerID: customer.ID,
		Name:       customer.Name,
		Cached:     cached,
		Computed:   computed,
		InSync: cached.Financial.Equal(computed.Financial) &&
			cached.Cylinders == computed.Cylinders,
	}, nil
}

// CheckAll runs the drift check across every customer and returns only the
// ones whose cache disagrees with the ledger.
func (r *Reader) CheckAll() ([]DriftReport, error) {
	var customers []Models.Customer
	if err := r.db.Find(&customers).Error; err != nil {
		return nil, &StorageError{Op: "load customers", Err: err}
	}

	var drifted []DriftReport
	for _, customer := range customers {
		report, err := r.CheckDrift(customer.ID)
		if err != nil {
			return nil, err
		}
		if !report.InSync {
			drifted = append(drifted, report)
		}
	}
	return drifted, nil
}
