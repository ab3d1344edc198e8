package Models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoadBreakdown counts the full cylinders a customer took out, per size.
type LoadBreakdown struct {
	Kg6  int `json:"kg6" validate:"min=0"`
	Kg13 int `json:"kg13" validate:"min=0"`
	Kg50 int `json:"kg50" validate:"min=0"`
}

// PricedCounts is a per-size count with its unit prices. For max_empty and
// swap_empty returns the price is per kg; for outright sales it is per
// cylinder. A zero price means "use the default price table".
type PricedCounts struct {
	Kg6     int             `json:"kg6" validate:"min=0"`
	Kg13    int             `json:"kg13" validate:"min=0"`
	Kg50    int             `json:"kg50" validate:"min=0"`
	Price6  decimal.Decimal `json:"price6"`
	Price13 decimal.Decimal `json:"price13"`
	Price50 decimal.Decimal `json:"price50"`
}

// UnpricedCounts is used for return_full entries, which carry no refill
// charge but still count toward the physical cylinder balance.
type UnpricedCounts struct {
	Kg6  int `json:"kg6" validate:"min=0"`
	Kg13 int `json:"kg13" validate:"min=0"`
	Kg50 int `json:"kg50" validate:"min=0"`
}

// ReturnsBreakdown details the cylinders a customer brought in.
type ReturnsBreakdown struct {
	MaxEmpty   PricedCounts   `json:"max_empty"`
	SwapEmpty  PricedCounts   `json:"swap_empty"`
	ReturnFull UnpricedCounts `json:"return_full"`
}

// Transaction is one ledger entry: a customer visit/order. The raw breakdowns
// are immutable once validated; the derived fields are computed at creation by
// the ledger writer and never re-derived implicitly.
type Transaction struct {
	gorm.Model
	TransactionNumber string `json:"transaction_number" gorm:"size:20;uniqueIndex;not null"`
	CustomerID        uint   `json:"customer_id" gorm:"not null;index"`
	UserID            uint   `json:"user_id" gorm:"not null;index"`
	BranchID          *uint  `json:"branch_id" gorm:"index"`

	Date time.Time `json:"date" gorm:"not null;index"`

	// Raw inputs, kept both as typed structs and JSON columns
	Load     LoadBreakdown     `json:"load_breakdown" gorm:"-"`
	Returns  ReturnsBreakdown  `json:"returns_breakdown" gorm:"-"`
	Outright PricedCounts      `json:"outright_breakdown" gorm:"-"`

	JSONLoad     datatypes.JSON `json:"-" gorm:"column:load_breakdown"`
	JSONReturns  datatypes.JSON `json:"-" gorm:"column:returns_breakdown"`
	JSONOutright datatypes.JSON `json:"-" gorm:"column:outright_breakdown"`

	// Derived fields
	TotalLoad           int             `json:"total_load" gorm:"not null;default:0"`
	TotalReturns        int             `json:"total_returns" gorm:"not null;default:0"`
	CylinderBalance6kg  int             `json:"cylinder_balance_6kg" gorm:"column:cylinder_balance_6kg;not null;default:0"`
	CylinderBalance13kg int             `json:"cylinder_balance_13kg" gorm:"column:cylinder_balance_13kg;not null;default:0"`
	CylinderBalance50kg int             `json:"cylinder_balance_50kg" gorm:"column:cylinder_balance_50kg;not null;default:0"`
	CylinderBalance     int             `json:"cylinder_balance" gorm:"not null;default:0"`
	TotalBill           decimal.Decimal `json:"total_bill" gorm:"type:decimal(10,2);not null"`
	AmountPaid          decimal.Decimal `json:"amount_paid" gorm:"type:decimal(10,2);not null"`
	FinancialBalance    decimal.Decimal `json:"financial_balance" gorm:"type:decimal(10,2);not null"`

	PaymentMethod string `json:"payment_method" gorm:"size:20;default:credit"` // cash, mpesa, card, transfer, credit
	Status        string `json:"status" gorm:"size:20;default:completed"`
	Notes         string `json:"notes" gorm:"type:text"`

	// Relationships
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Branch   *Branch   `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}

// BeforeSave mirrors the typed breakdowns into their JSON columns.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	load, err := json.Marshal(t.Load)
	if err != nil {
		return err
	}
	returns, err := json.Marshal(t.Returns)
	if err != nil {
		return err
	}
	outright, err := json.Marshal(t.Outright)
	if err != nil {
		return err
	}
	t.JSONLoad = load
	t.JSONReturns = returns
	t.JSONOutright = outright
	return nil
}

// AfterFind restores the typed breakdowns from the JSON columns.
func (t *Transaction) AfterFind(tx *gorm.DB) error {
	if len(t.JSONLoad) > 0 {
		if err := json.Unmarshal(t.JSONLoad, &t.Load); err != nil {
			return err
		}
	}
	if len(t.JSONReturns) > 0 {
		if err := json.Unmarshal(t.JSONReturns, &t.Returns); err != nil {
			return err
		}
	}
	if len(t.JSONOutright) > 0 {
		if err := json.Unmarshal(t.JSONOutright, &t.Outright); err != nil {
			return err
		}
	}
	return nil
}

// Outstanding returns the unpaid portion of this transaction.
func (t *Transaction) Outstanding() decimal.Decimal {
	return t.TotalBill.Sub(t.AmountPaid)
}
