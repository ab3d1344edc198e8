package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"GasTrack/Models"
	"GasTrack/middleware"
)

// AuthController handles login, logout, and user management endpoints.
type AuthController struct {
	DB   *gorm.DB
	Auth *middleware.Auth
}

func NewAuthController(db *gorm.DB, auth *middleware.Auth) *AuthController {
	return &AuthController{DB: db, Auth: auth}
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials and sets the JWT cookie.
func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input loginInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user Models.User
	if err := c.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(input.Password)); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Incorrect password"})
	}

	if !user.IsApproved {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Account pending approval"})
	}

	token, err := c.Auth.IssueToken(strconv.Itoa(int(user.ID)))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Could not login"})
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(time.Hour * 24),
		HTTPOnly: true,
	})

	return ctx.JSON(fiber.Map{
		"message": "success",
		"user":    user,
	})
}

// Logout expires the JWT cookie.
func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "success"})
}

// User returns the authenticated user.
func (c *AuthController) User(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not Logged In."})
	}
	return ctx.JSON(user)
}

// ValidateToken confirms the cookie still resolves to a user.
func (c *AuthController) ValidateToken(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"valid": false})
	}
	return ctx.JSON(fiber.Map{"valid": true, "user": user})
}

type registerUserInput struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Permission int    `json:"permission"`
	BranchID   *uint  `json:"branch_id"`
}

// RegisterUser creates a new user account. Admin only.
func (c *AuthController) RegisterUser(ctx *fiber.Ctx) error {
	var input registerUserInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if input.Username == "" || input.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
	}
	if input.Permission < Models.PermissionOperator || input.Permission > Models.PermissionAdmin {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid permission level"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := Models.User{
		Username:   input.Username,
		Password:   hash,
		FullName:   input.FullName,
		Permission: input.Permission,
		BranchID:   input.BranchID,
		IsApproved: true,
	}
	if err := c.DB.Create(&user).Error; err != nil {
		if isDuplicateError(err) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A user with this username already exists"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(user)
}

// FetchUsers lists all users. Admin only.
func (c *AuthController) FetchUsers(ctx *fiber.Ctx) error {
	var users []Models.User
	if err := c.DB.Preload("Branch").Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve users"})
	}
	return ctx.JSON(users)
}

type updateUserInput struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Permission int    `json:"permission"`
	BranchID   *uint  `json:"branch_id"`
	IsApproved *bool  `json:"is_approved"`
}

// UpdateUser edits an existing account. Admin only.
func (c *AuthController) UpdateUser(ctx *fiber.Ctx) error {
	var input updateUserInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user Models.User
	if err := c.DB.First(&user, input.ID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Permission >= Models.PermissionOperator && input.Permission <= Models.PermissionAdmin {
		user.Permission = input.Permission
	}
	if input.BranchID != nil {
		user.BranchID = input.BranchID
	}
	if input.IsApproved != nil {
		user.IsApproved = *input.IsApproved
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
		}
		user.Password = hash
	}

	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}
	return ctx.JSON(user)
}

// DeleteUser removes an account. Admin only.
func (c *AuthController) DeleteUser(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Query("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user Models.User
	if err := c.DB.First(&user, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	c.DB.Delete(&user)
	return ctx.JSON(fiber.Map{"message": "User deleted successfully"})
}
