package Reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"GasTrack/Models"
)

// ReportController serves report downloads and the daily summary page.
type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// ExportTransactions streams the (optionally filtered) transaction ledger as
// an Excel workbook.
func (c *ReportController) ExportTransactions(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Transaction{}).Preload("Customer").Preload("Branch")
	if customerID := ctx.Query("customerId"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if from := ctx.Query("from"); from != "" {
		if date, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("date >= ?", date)
		}
	}
	if to := ctx.Query("to"); to != "" {
		if date, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("date < ?", date.AddDate(0, 0, 1))
		}
	}

	var transactions []Models.Transaction
	if err := query.Order("date ASC, id ASC").Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	buf, err := transactionsToExcel(transactions)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.SendStream(buf)
}

func transactionsToExcel(transactions []Models.Transaction) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Transaction No", "Date", "Customer", "Branch",
		"Load 6kg", "Load 13kg", "Load 50kg",
		"Returns", "Cylinder Delta", "Total Bill", "Amount Paid",
		"Outstanding", "Payment Method", "Status", "Notes",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, txn := range transactions {
		row := rowIndex + 2

		customerName := ""
		if txn.Customer != nil {
			customerName = txn.Customer.Name
		}
		branchName := ""
		if txn.Branch != nil {
			branchName = txn.Branch.Name
		}

		values := []interface{}{
			txn.TransactionNumber,
			txn.Date.Format("2006-01-02"),
			customerName,
			branchName,
			txn.Load.Kg6,
			txn.Load.Kg13,
			txn.Load.Kg50,
			txn.TotalReturns,
			txn.CylinderBalance,
			txn.TotalBill.InexactFloat64(),
			txn.AmountPaid.InexactFloat64(),
			txn.Outstanding().InexactFloat64(),
			txn.PaymentMethod,
			txn.Status,
			txn.Notes,
		}
		for colIndex, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := 1; i <= len(headers); i++ {
		col, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheetName, col, col, 15)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}
