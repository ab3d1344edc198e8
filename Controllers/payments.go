package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"GasTrack/Models"
)

// PaymentController serves the read side of payments. Payments are only ever
// created through the ledger writer.
type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// GetPayments lists payments with optional filters and pagination.
func (c *PaymentController) GetPayments(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := c.DB.Model(&Models.Payment{})
	if customerID := ctx.Query("customerId"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if method := ctx.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}
	if from := ctx.Query("from"); from != "" {
		if date, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("payment_date >= ?", date)
		}
	}
	if to := ctx.Query("to"); to != "" {
		if date, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("payment_date < ?", date.AddDate(0, 0, 1))
		}
	}

	var total int64
	query.Count(&total)

	var payments []Models.Payment
	result := query.Preload("Customer").Preload("Transaction").
		Order("payment_date DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}

	return ctx.JSON(fiber.Map{
		"payments": payments,
		"pagination": fiber.Map{
			"currentPage": page,
			"totalItems":  total,
			"totalPages":  (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetPayment retrieves a single payment by ID.
func (c *PaymentController) GetPayment(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}

	var payment Models.Payment
	if err := c.DB.Preload("Customer").Preload("Transaction").First(&payment, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}
	return ctx.JSON(payment)
}
