package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is one recorded payment against a transaction. Payments are only
// created through the ledger writer so the transaction's amount_paid and the
// customer's cached financial balance move together.
type Payment struct {
	gorm.Model
	ReceiptNumber string          `json:"receipt_number" gorm:"size:20;uniqueIndex;not null"`
	TransactionID uint            `json:"transaction_id" gorm:"not null;index"`
	CustomerID    uint            `json:"customer_id" gorm:"not null;index"`
	ProcessedBy   uint            `json:"processed_by" gorm:"not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Method        string          `json:"method" gorm:"size:20;not null"` // cash, mpesa, card, transfer
	PaymentDate   time.Time       `json:"payment_date" gorm:"not null;index"`
	Notes         string          `json:"notes" gorm:"type:text"`
	Status        string          `json:"status" gorm:"size:20;default:completed"`

	Transaction *Transaction `json:"transaction,omitempty" gorm:"foreignKey:TransactionID"`
	Customer    *Customer    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}
