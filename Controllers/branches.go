package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"GasTrack/Models"
)

// BranchController handles branch CRUD.
type BranchController struct {
	DB *gorm.DB
}

func NewBranchController(db *gorm.DB) *BranchController {
	return &BranchController{DB: db}
}

// GetBranches lists all branches.
func (c *BranchController) GetBranches(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Branch{})
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var branches []Models.Branch
	if err := query.Order("name ASC").Find(&branches).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve branches"})
	}
	return ctx.JSON(branches)
}

// GetBranch retrieves a single branch by ID.
func (c *BranchController) GetBranch(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	var branch Models.Branch
	if err := c.DB.First(&branch, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Branch not found"})
	}
	return ctx.JSON(branch)
}

// CreateBranch registers a new branch. Manager and above.
func (c *BranchController) CreateBranch(ctx *fiber.Ctx) error {
	var branch Models.Branch
	if err := ctx.BodyParser(&branch); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if branch.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Branch name is required"})
	}

	branch.ID = 0
	if err := c.DB.Create(&branch).Error; err != nil {
		if isDuplicateError(err) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A branch with this name already exists"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create branch"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(branch)
}

// UpdateBranch edits an existing branch. Manager and above.
func (c *BranchController) UpdateBranch(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	var branch Models.Branch
	if err := c.DB.First(&branch, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Branch not found"})
	}

	var input Models.Branch
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Type != "" {
		updates["type"] = input.Type
	}
	if input.Address != "" {
		updates["address"] = input.Address
	}
	if input.City != "" {
		updates["city"] = input.City
	}
	if input.State != "" {
		updates["state"] = input.State
	}
	if input.Phone != "" {
		updates["phone"] = input.Phone
	}
	if input.Status != "" {
		updates["status"] = input.Status
	}

	if len(updates) > 0 {
		if err := c.DB.Model(&branch).Updates(updates).Error; err != nil {
			if isDuplicateError(err) {
				return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A branch with this name already exists"})
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update branch"})
		}
		c.DB.First(&branch, id)
	}
	return ctx.JSON(branch)
}

// DeleteBranch removes a branch. Customers and users keep their branch_id
// pointing at the soft-deleted row, so history is preserved. Admin only.
func (c *BranchController) DeleteBranch(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	var branch Models.Branch
	if err := c.DB.First(&branch, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Branch not found"})
	}

	c.DB.Delete(&branch)
	return ctx.JSON(fiber.Map{"message": "Branch deleted successfully"})
}
