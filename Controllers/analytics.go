package Controllers

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"GasTrack/Models"
)

// AnalyticsController handles reporting endpoints.
type AnalyticsController struct {
	DB *gorm.DB
}

func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{DB: db}
}

// Summary returns the overall business position.
func (c *AnalyticsController) Summary(ctx *fiber.Ctx) error {
	var customerCount, transactionCount int64
	c.DB.Model(&Models.Customer{}).Count(&customerCount)
	c.DB.Model(&Models.Transaction{}).Count(&transactionCount)

	// Sum in Go with decimal arithmetic rather than in SQL, so the result is
	// exact regardless of how the driver stores decimals.
	var transactions []Models.Transaction
	if err := c.DB.Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	totalBilled := decimal.Zero
	totalPaid := decimal.Zero
	cylindersOut := 0
	for _, txn := range transactions {
		totalBilled = totalBilled.Add(txn.TotalBill)
		totalPaid = totalPaid.Add(txn.AmountPaid)
		cylindersOut += txn.CylinderBalance
	}

	return ctx.JSON(fiber.Map{
		"customer_count":    customerCount,
		"transaction_count": transactionCount,
		"total_billed":      totalBilled,
		"total_paid":        totalPaid,
		"outstanding":       totalBilled.Sub(totalPaid),
		"cylinders_out":     cylindersOut,
	})
}

// MonthlyTransactions returns billing and collections summed by month for the
// last 12 months.
func (c *AnalyticsController) MonthlyTransactions(ctx *fiber.Ctx) error {
	type MonthlyData struct {
		Month       string          `json:"month"`
		Billed      decimal.Decimal `json:"billed"`
		Paid        decimal.Decimal `json:"paid"`
		Outstanding decimal.Decimal `json:"outstanding"`
		Count       int             `json:"count"`
	}

	endDate := time.Now()
	startDate := endDate.AddDate(-1, 0, 0)

	var transactions []Models.Transaction
	result := c.DB.Where("date BETWEEN ? AND ?", startDate, endDate).Find(&transactions)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	// Group in Go rather than doing date formatting in SQL.
	monthly := make(map[string]*MonthlyData)
	for i := 0; i < 12; i++ {
		date := endDate.AddDate(0, -i, 0)
		monthly[date.Format("2006-01")] = &MonthlyData{
			Month:       date.Format("Jan 2006"),
			Billed:      decimal.Zero,
			Paid:        decimal.Zero,
			Outstanding: decimal.Zero,
		}
	}

	for _, txn := range transactions {
		key := txn.Date.Format("2006-01")
		if data, exists := monthly[key]; exists {
			data.Billed = data.Billed.Add(txn.TotalBill)
			data.Paid = data.Paid.Add(txn.AmountPaid)
			data.Outstanding = data.Billed.Sub(data.Paid)
			data.Count++
		}
	}

	var response []MonthlyData
	for i := 11; i >= 0; i-- {
		date := endDate.AddDate(0, -i, 0)
		if data, exists := monthly[date.Format("2006-01")]; exists {
			response = append(response, *data)
		}
	}
	return ctx.JSON(response)
}

// TopCustomers returns the customers with the largest outstanding balances.
func (c *AnalyticsController) TopCustomers(ctx *fiber.Ctx) error {
	type CustomerSummary struct {
		ID           uint            `json:"id"`
		Name         string          `json:"name"`
		Financial    decimal.Decimal `json:"financial_balance"`
		Cylinders    int             `json:"cylinder_balance"`
		Transactions int64           `json:"transaction_count"`
	}

	var customers []Models.Customer
	if err := c.DB.Find(&customers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customers"})
	}

	summaries := make([]CustomerSummary, 0, len(customers))
	for _, customer := range customers {
		var count int64
		c.DB.Model(&Models.Transaction{}).Where("customer_id = ?", customer.ID).Count(&count)
		summaries = append(summaries, CustomerSummary{
			ID:           customer.ID,
			Name:         customer.Name,
			Financial:    customer.FinancialBalance,
			Cylinders:    customer.CylinderBalance,
			Transactions: count,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Financial.Abs().GreaterThan(summaries[j].Financial.Abs())
	})
	if len(summaries) > 10 {
		summaries = summaries[:10]
	}
	return ctx.JSON(summaries)
}

// RecentActivity returns the most recent ledger entries.
func (c *AnalyticsController) RecentActivity(ctx *fiber.Ctx) error {
	var transactions []Models.Transaction
	result := c.DB.Preload("Customer").
		Order("date DESC, id DESC").
		Limit(10).
		Find(&transactions)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}
	return ctx.JSON(transactions)
}
