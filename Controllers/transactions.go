package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"GasTrack/Ledger"
	"GasTrack/Models"
)

// TransactionController exposes the ledger over HTTP. All mutations go
// through the ledger writer so the customer balance cache stays consistent.
type TransactionController struct {
	DB     *gorm.DB
	Writer *Ledger.Writer
}

func NewTransactionController(db *gorm.DB, writer *Ledger.Writer) *TransactionController {
	return &TransactionController{DB: db, Writer: writer}
}

type transactionInput struct {
	CustomerID    uint                    `json:"customerId"`
	BranchID      *uint                   `json:"branchId"`
	Date          string                  `json:"date"`
	Load          Models.LoadBreakdown    `json:"loadBreakdown"`
	Returns       Models.ReturnsBreakdown `json:"returnsBreakdown"`
	Outright      Models.PricedCounts     `json:"outrightBreakdown"`
	AmountPaid    decimal.Decimal         `json:"amountPaid"`
	PaymentMethod string                  `json:"paymentMethod"`
	Notes         string                  `json:"notes"`
}

func (in *transactionInput) toLedgerInput(user Models.User) (Ledger.TransactionInput, error) {
	input := Ledger.TransactionInput{
		CustomerID:    in.CustomerID,
		UserID:        user.ID,
		BranchID:      in.BranchID,
		Load:          in.Load,
		Returns:       in.Returns,
		Outright:      in.Outright,
		AmountPaid:    in.AmountPaid,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}
	if input.BranchID == nil {
		input.BranchID = user.BranchID
	}
	if in.Date != "" {
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			date, err = time.Parse(time.RFC3339, in.Date)
			if err != nil {
				return input, err
			}
		}
		input.Date = date
	}
	return input, nil
}

// CreateTransaction records a new ledger entry.
func (c *TransactionController) CreateTransaction(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not Logged In."})
	}

	var in transactionInput
	if err := ctx.BodyParser(&in); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	input, err := in.toLedgerInput(user)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	record, err := c.Writer.RecordTransaction(input)
	if err != nil {
		return ledgerError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(record)
}

// GetTransactions lists ledger entries with filters and pagination.
func (c *TransactionController) GetTransactions(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := c.DB.Model(&Models.Transaction{})
	if customerID := ctx.Query("customerId"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if branchID := ctx.Query("branchId"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if method := ctx.Query("paymentMethod"); method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
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

	var total int64
	query.Count(&total)

	var transactions []Models.Transaction
	result := query.Preload("Customer").Preload("User").Preload("Branch").
		Order("date DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&transactions)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	return ctx.JSON(fiber.Map{
		"transactions": transactions,
		"pagination": fiber.Map{
			"currentPage": page,
			"totalItems":  total,
			"totalPages":  (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetTransaction retrieves one ledger entry with its payments.
func (c *TransactionController) GetTransaction(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var transaction Models.Transaction
	if err := c.DB.Preload("Customer").Preload("User").Preload("Branch").First(&transaction, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}

	var payments []Models.Payment
	c.DB.Where("transaction_id = ?", id).Order("payment_date ASC").Find(&payments)

	return ctx.JSON(fiber.Map{
		"transaction": transaction,
		"payments":    payments,
	})
}

// UpdateTransaction re-derives all computed fields from the edited breakdowns
// and adjusts the customer's balances by the difference.
func (c *TransactionController) UpdateTransaction(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not Logged In."})
	}

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var in transactionInput
	if err := ctx.BodyParser(&in); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// The owning customer never changes on edit.
	var record Models.Transaction
	if err := c.DB.First(&record, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}
	in.CustomerID = record.CustomerID

	input, err := in.toLedgerInput(user)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}
	if in.Date == "" {
		input.Date = record.Date
	}
	input.UserID = record.UserID

	updated, err := c.Writer.UpdateTransaction(uint(id), input)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(updated)
}

// DeleteTransaction removes a ledger entry and reverses its balance effects.
func (c *TransactionController) DeleteTransaction(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	if err := c.Writer.DeleteTransaction(uint(id)); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}

type paymentInput struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  string          `json:"notes"`
}

// RecordPayment registers a payment against a transaction.
func (c *TransactionController) RecordPayment(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not Logged In."})
	}

	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var in paymentInput
	if err := ctx.BodyParser(&in); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if in.Method == "" {
		in.Method = "cash"
	}

	payment, err := c.Writer.RecordPayment(uint(id), in.Amount, in.Method, in.Notes, user.ID)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(payment)
}

type bulkPaymentInput struct {
	CustomerID uint            `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
}

// BulkCustomerPayment spreads a lump payment across a customer's outstanding
// transactions, oldest first.
func (c *TransactionController) BulkCustomerPayment(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not Logged In."})
	}

	var in bulkPaymentInput
	if err := ctx.BodyParser(&in); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if in.CustomerID == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "customerId is required"})
	}

	result, err := c.Writer.ApplyBulkPayment(in.CustomerID, in.Amount, in.Notes, user.ID)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(result)
}

// GetPrices returns the active price table.
func (c *TransactionController) GetPrices(ctx *fiber.Ctx) error {
	return ctx.JSON(c.Writer.Prices())
}
