package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"GasTrack/Models"
)

// InventoryController handles bulk stock purchases per branch.
type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{DB: db}
}

// GetInventory lists stock with optional branch and cylinder type filters.
func (c *InventoryController) GetInventory(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Inventory{})
	if branchID := ctx.Query("branchId"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if cylinderType := ctx.Query("cylinderType"); cylinderType != "" {
		query = query.Where("cylinder_type = ?", cylinderType)
	}

	var items []Models.Inventory
	if err := query.Preload("Branch").Order("cylinder_type ASC").Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve inventory"})
	}
	return ctx.JSON(fiber.Map{
		"inventory": items,
		"count":     len(items),
	})
}

// GetInventoryReport summarizes the stock position across all items.
func (c *InventoryController) GetInventoryReport(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Inventory{})
	if branchID := ctx.Query("branchId"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	var items []Models.Inventory
	if err := query.Order("cylinder_type ASC").Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve inventory"})
	}

	totalKg := decimal.Zero
	totalValue := decimal.Zero
	totalCost := decimal.Zero
	for _, item := range items {
		totalKg = totalKg.Add(item.AvailableStockKg)
		totalValue = totalValue.Add(item.TotalValue)
		totalCost = totalCost.Add(item.CostPerKg)
	}
	averageCost := decimal.Zero
	if len(items) > 0 {
		averageCost = totalCost.Div(decimal.NewFromInt(int64(len(items)))).Round(2)
	}

	return ctx.JSON(fiber.Map{
		"inventory": items,
		"summary": fiber.Map{
			"total_items":         len(items),
			"total_stock_kg":      totalKg,
			"total_stock_tons":    totalKg.Div(decimal.NewFromInt(1000)).Round(3),
			"total_value":         totalValue,
			"average_cost_per_kg": averageCost,
		},
	})
}

type addStockInput struct {
	CylinderType    string          `json:"cylinder_type"`
	QuantityKg      decimal.Decimal `json:"quantity_kg"`
	SupplierPlace   string          `json:"supplier_place"`
	CostPerKg       decimal.Decimal `json:"cost_per_kg"`
	TotalAmountPaid decimal.Decimal `json:"total_amount_paid"`
	BranchID        *uint           `json:"branch_id"`
}

// AddStock records a stock purchase. An existing row for the same cylinder
// type and branch accumulates quantity and amount paid and takes the latest
// supplier and cost; otherwise a new row is created.
func (c *InventoryController) AddStock(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not Logged In."})
	}

	var input addStockInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if input.CylinderType == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cylinder type is required"})
	}
	if input.SupplierPlace == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Supplier place is required"})
	}
	if input.QuantityKg.IsNegative() || input.CostPerKg.IsNegative() || input.TotalAmountPaid.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantities and amounts must not be negative"})
	}

	branchID := input.BranchID
	if branchID == nil {
		branchID = user.BranchID
	}

	query := c.DB.Where("cylinder_type = ?", input.CylinderType)
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	} else {
		query = query.Where("branch_id IS NULL")
	}

	var item Models.Inventory
	err := query.First(&item).Error
	switch {
	case err == nil:
		item.AvailableStockKg = item.AvailableStockKg.Add(input.QuantityKg)
		item.TotalAmountPaid = item.TotalAmountPaid.Add(input.TotalAmountPaid)
		item.SupplierPlace = input.SupplierPlace
		item.CostPerKg = input.CostPerKg
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = Models.Inventory{
			CylinderType:     input.CylinderType,
			AvailableStockKg: input.QuantityKg,
			SupplierPlace:    input.SupplierPlace,
			CostPerKg:        input.CostPerKg,
			TotalAmountPaid:  input.TotalAmountPaid,
			BranchID:         branchID,
			CreatedBy:        user.ID,
		}
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load inventory"})
	}

	if err := c.DB.Save(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save inventory"})
	}
	item.TotalValue = item.AvailableStockKg.Mul(item.CostPerKg).Round(2)

	return ctx.Status(fiber.StatusCreated).JSON(item)
}

// UpdateInventory edits an inventory row directly.
func (c *InventoryController) UpdateInventory(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid inventory ID"})
	}

	var item Models.Inventory
	if err := c.DB.First(&item, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Inventory item not found"})
	}

	var input addStockInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.QuantityKg.IsNegative() || input.CostPerKg.IsNegative() || input.TotalAmountPaid.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantities and amounts must not be negative"})
	}

	if input.CylinderType != "" {
		item.CylinderType = input.CylinderType
	}
	if input.SupplierPlace != "" {
		item.SupplierPlace = input.SupplierPlace
	}
	if input.QuantityKg.IsPositive() {
		item.AvailableStockKg = input.QuantityKg
	}
	if input.CostPerKg.IsPositive() {
		item.CostPerKg = input.CostPerKg
	}
	if input.TotalAmountPaid.IsPositive() {
		item.TotalAmountPaid = input.TotalAmountPaid
	}
	if input.BranchID != nil {
		item.BranchID = input.BranchID
	}

	if err := c.DB.Save(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update inventory"})
	}
	item.TotalValue = item.AvailableStockKg.Mul(item.CostPerKg).Round(2)

	return ctx.JSON(item)
}

// DeleteInventory removes an inventory row. Admin only.
func (c *InventoryController) DeleteInventory(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid inventory ID"})
	}

	var item Models.Inventory
	if err := c.DB.First(&item, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Inventory item not found"})
	}

	c.DB.Delete(&item)
	return ctx.JSON(fiber.Map{"message": "Inventory item deleted successfully"})
}

// GetCylinderTypes lists the distinct cylinder types in stock.
func (c *InventoryController) GetCylinderTypes(ctx *fiber.Ctx) error {
	var types []string
	err := c.DB.Model(&Models.Inventory{}).
		Distinct("cylinder_type").
		Order("cylinder_type ASC").
		Pluck("cylinder_type", &types).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve cylinder types"})
	}
	return ctx.JSON(types)
}

// GetLowStock lists items below a kg threshold, lowest first.
func (c *InventoryController) GetLowStock(ctx *fiber.Ctx) error {
	threshold, err := decimal.NewFromString(ctx.Query("threshold", "100"))
	if err != nil || threshold.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid threshold"})
	}

	var items []Models.Inventory
	result := c.DB.Preload("Branch").
		Where("available_stock_kg < ?", threshold).
		Order("available_stock_kg ASC").
		Find(&items)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve inventory"})
	}

	return ctx.JSON(fiber.Map{
		"inventory": items,
		"count":     len(items),
	})
}
