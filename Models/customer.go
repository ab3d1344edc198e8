package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer represents a billing account. The balance fields are a cached fold
// over the customer's transactions and are only ever written by the ledger
// writer, inside the same database transaction as the ledger row itself.
// Positive financial balance means the customer owes money; positive cylinder
// balance means the customer holds more cylinders than they returned.
type Customer struct {
	gorm.Model
	Name        string          `json:"name" gorm:"size:100;not null;index"`
	Phone       string          `json:"phone" gorm:"size:20;not null;uniqueIndex"`
	Email       string          `json:"email" gorm:"size:100"`
	Address     string          `json:"address" gorm:"type:text"`
	Category    string          `json:"category" gorm:"size:20;default:regular"` // regular, premium, wholesale
	CreditLimit decimal.Decimal `json:"credit_limit" gorm:"type:decimal(10,2)"`
	Status      string          `json:"status" gorm:"size:20;default:active"`
	Notes       string          `json:"notes" gorm:"type:text"`
	BranchID    *uint           `json:"branch_id" gorm:"index"`

	FinancialBalance    decimal.Decimal `json:"financial_balance" gorm:"type:decimal(10,2);not null"`
	CylinderBalance     int             `json:"cylinder_balance" gorm:"not null;default:0"`
	CylinderBalance6kg  int             `json:"cylinder_balance_6kg" gorm:"column:cylinder_balance_6kg;not null;default:0"`
	CylinderBalance13kg int             `json:"cylinder_balance_13kg" gorm:"column:cylinder_balance_13kg;not null;default:0"`
	CylinderBalance50kg int             `json:"cylinder_balance_50kg" gorm:"column:cylinder_balance_50kg;not null;default:0"`

	// Version guards the read-modify-write of the cached balances. Every
	// balance write is conditional on the version it read.
	Version int `json:"-" gorm:"not null;default:0"`

	LastTransactionDate *time.Time `json:"last_transaction_date"`

	Branch *Branch `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}
