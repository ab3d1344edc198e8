package Reports

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"GasTrack/Models"
)

// DailySummary renders the server-side summary page for one business day.
// Defaults to today; pass ?date=YYYY-MM-DD for another day.
func (c *ReportController) DailySummary(ctx *fiber.Ctx) error {
	day := time.Now()
	if q := ctx.Query("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
		}
		day = parsed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var transactions []Models.Transaction
	if err := c.DB.Preload("Customer").
		Where("date >= ? AND date < ?", start, end).
		Order("id ASC").
		Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	totalBilled := decimal.Zero
	totalPaid := decimal.Zero
	cylindersLoaded := 0
	cylindersReturned := 0
	for _, txn := range transactions {
		totalBilled = totalBilled.Add(txn.TotalBill)
		totalPaid = totalPaid.Add(txn.AmountPaid)
		cylindersLoaded += txn.TotalLoad
		cylindersReturned += txn.TotalReturns
	}

	type row struct {
		Number   string
		Customer string
		Load     int
		Returns  int
		Bill     string
		Paid     string
	}
	rows := make([]row, 0, len(transactions))
	for _, txn := range transactions {
		name := ""
		if txn.Customer != nil {
			name = txn.Customer.Name
		}
		rows = append(rows, row{
			Number:   txn.TransactionNumber,
			Customer: name,
			Load:     txn.TotalLoad,
			Returns:  txn.TotalReturns,
			Bill:     txn.TotalBill.StringFixed(2),
			Paid:     txn.AmountPaid.StringFixed(2),
		})
	}

	return ctx.Render("summary", fiber.Map{
		"Date":              start.Format("Monday, 02 Jan 2006"),
		"Count":             len(transactions),
		"TotalBilled":       totalBilled.StringFixed(2),
		"TotalPaid":         totalPaid.StringFixed(2),
		"Outstanding":       totalBilled.Sub(totalPaid).StringFixed(2),
		"CylindersLoaded":   cylindersLoaded,
		"CylindersReturned": cylindersReturned,
		"Transactions":      rows,
	})
}
