package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"GasTrack/Ledger"
	"GasTrack/Models"
)

// CustomerController handles customer-related API endpoints.
type CustomerController struct {
	DB     *gorm.DB
	Reader *Ledger.Reader
}

func NewCustomerController(db *gorm.DB, reader *Ledger.Reader) *CustomerController {
	return &CustomerController{DB: db, Reader: reader}
}

// GetCustomers lists customers with optional search and pagination.
func (c *CustomerController) GetCustomers(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := c.DB.Model(&Models.Customer{})
	if search := ctx.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if branchID := ctx.Query("branchId"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	var total int64
	query.Count(&total)

	var customers []Models.Customer
	result := query.Order("name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&customers)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customers"})
	}

	return ctx.JSON(fiber.Map{
		"customers": customers,
		"pagination": fiber.Map{
			"currentPage": page,
			"totalItems":  total,
			"totalPages":  (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetCustomer retrieves a single customer by ID.
func (c *CustomerController) GetCustomer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if err := c.DB.Preload("Branch").First(&customer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}
	return ctx.JSON(customer)
}

// CreateCustomer registers a new customer with zeroed balances.
func (c *CustomerController) CreateCustomer(ctx *fiber.Ctx) error {
	var input Models.Customer
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if len(input.Name) < 2 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name must be at least 2 characters"})
	}
	if len(input.Phone) < 10 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Phone must be at least 10 characters"})
	}

	customer := Models.Customer{
		Name:        input.Name,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		Category:    input.Category,
		CreditLimit: input.CreditLimit,
		Status:      input.Status,
		Notes:       input.Notes,
		BranchID:    input.BranchID,
	}

	if err := c.DB.Create(&customer).Error; err != nil {
		if isDuplicateError(err) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A customer with this phone already exists"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create customer"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(customer)
}

// UpdateCustomer edits profile fields. Balance fields are owned by the
// ledger writer and are never touched here.
func (c *CustomerController) UpdateCustomer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}

	var input Models.Customer
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Phone != "" {
		updates["phone"] = input.Phone
	}
	if input.Email != "" {
		updates["email"] = input.Email
	}
	if input.Address != "" {
		updates["address"] = input.Address
	}
	if input.Category != "" {
		updates["category"] = input.Category
	}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	if input.Notes != "" {
		updates["notes"] = input.Notes
	}
	if input.BranchID != nil {
		updates["branch_id"] = input.BranchID
	}
	if !input.CreditLimit.IsZero() {
		updates["credit_limit"] = input.CreditLimit
	}

	if len(updates) > 0 {
		if err := c.DB.Model(&customer).Updates(updates).Error; err != nil {
			if isDuplicateError(err) {
				return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A customer with this phone already exists"})
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update customer"})
		}
		c.DB.First(&customer, id)
	}

	return ctx.JSON(customer)
}

// DeleteCustomer refuses to delete customers with outstanding balances or
// ledger history unless force=true is passed, in which case the customer's
// transactions and payments go with them.
func (c *CustomerController) DeleteCustomer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}

	force := ctx.Query("force") == "true"

	var transactionCount int64
	c.DB.Model(&Models.Transaction{}).Where("customer_id = ?", id).Count(&transactionCount)

	hasBalance := !customer.FinancialBalance.IsZero() || customer.CylinderBalance != 0

	if (transactionCount > 0 || hasBalance) && !force {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Customer has outstanding balances or transaction history; pass force=true to delete anyway",
		})
	}

	tx := c.DB.Begin()
	if tx.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction error"})
	}
	if err := tx.Where("customer_id = ?", id).Delete(&Models.Payment{}).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete customer payments"})
	}
	if err := tx.Where("customer_id = ?", id).Delete(&Models.Transaction{}).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete customer transactions"})
	}
	if err := tx.Delete(&customer).Error; err != nil {
		tx.Rollback()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete customer"})
	}
	if err := tx.Commit().Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit deletion"})
	}

	return ctx.JSON(fiber.Map{"message": "Customer deleted successfully"})
}

// GetCustomerBalance recomputes the customer's balance from the ledger and
// reports whether the cached fields agree.
func (c *CustomerController) GetCustomerBalance(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	report, err := c.Reader.CheckDrift(uint(id))
	if err != nil {
		return ledgerError(ctx, err)
	}

	return ctx.JSON(report)
}

// GetCustomerTransactions lists a customer's transactions, newest first.
func (c *CustomerController) GetCustomerTransactions(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}

	var transactions []Models.Transaction
	result := c.DB.Where("customer_id = ?", id).Order("date DESC").Find(&transactions)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	return ctx.JSON(transactions)
}
