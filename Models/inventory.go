package Models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Inventory tracks bulk gas stock held per branch and cylinder type. Stock is
// bought by weight from a supplier; the tons figure and the stock's value at
// the current cost are derived, never entered.
type Inventory struct {
	gorm.Model
	CylinderType       string          `json:"cylinder_type" gorm:"size:50;not null;index"`
	AvailableStockKg   decimal.Decimal `json:"available_stock_kg" gorm:"type:decimal(12,3);not null"`
	AvailableStockTons decimal.Decimal `json:"available_stock_tons" gorm:"type:decimal(12,3);not null"`
	SupplierPlace      string          `json:"supplier_place" gorm:"size:100;not null"`
	CostPerKg          decimal.Decimal `json:"cost_per_kg" gorm:"type:decimal(10,2);not null"`
	TotalAmountPaid    decimal.Decimal `json:"total_amount_paid" gorm:"type:decimal(12,2);not null"`
	BranchID           *uint           `json:"branch_id" gorm:"index"`
	CreatedBy          uint            `json:"created_by" gorm:"not null;index"`

	TotalValue decimal.Decimal `json:"total_value" gorm:"-"`

	Branch *Branch `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}

// BeforeSave keeps the tons column in step with the kg figure.
func (i *Inventory) BeforeSave(tx *gorm.DB) error {
	i.AvailableStockTons = i.AvailableStockKg.Div(decimal.NewFromInt(1000)).Round(3)
	return nil
}

// AfterFind values the stock at the current cost per kg.
func (i *Inventory) AfterFind(tx *gorm.DB) error {
	i.TotalValue = i.AvailableStockKg.Mul(i.CostPerKg).Round(2)
	return nil
}
