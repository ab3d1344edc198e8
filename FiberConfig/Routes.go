package FiberConfig

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html"
	"gorm.io/gorm"

	"GasTrack/Controllers"
	"GasTrack/Ledger"
	"GasTrack/Models"
	"GasTrack/Reports"
	"GasTrack/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, writer *Ledger.Writer, reader *Ledger.Reader, auth *middleware.Auth) {
	// Initialize handlers
	authController := Controllers.NewAuthController(db, auth)
	customerController := Controllers.NewCustomerController(db, reader)
	transactionController := Controllers.NewTransactionController(db, writer)
	paymentController := Controllers.NewPaymentController(db)
	branchController := Controllers.NewBranchController(db)
	inventoryController := Controllers.NewInventoryController(db)
	analyticsController := Controllers.NewAnalyticsController(db)
	reportController := Reports.NewReportController(db)

	// Auth routes
	app.Post("/api/Login", authController.Login)
	app.Post("/api/Logout", authController.Logout)
	app.Get("/api/User", auth.Verify(Models.PermissionOperator), authController.User)
	app.Get("/api/validate-token", auth.Verify(Models.PermissionOperator), authController.ValidateToken)

	// User management, admin only
	app.Post("/api/RegisterUser", auth.Verify(Models.PermissionAdmin), authController.RegisterUser)
	app.Patch("/api/UpdateUser", auth.Verify(Models.PermissionAdmin), authController.UpdateUser)
	app.Get("/api/FetchUsers", auth.Verify(Models.PermissionAdmin), authController.FetchUsers)
	app.Delete("/api/DeleteUser", auth.Verify(Models.PermissionAdmin), authController.DeleteUser)

	// API group
	api := app.Group("/api")

	// Customer routes
	customers := api.Group("/customers", auth.Verify(Models.PermissionOperator))
	customers.Get("/", customerController.GetCustomers)
	customers.Post("/", customerController.CreateCustomer)
	customers.Get("/:id", customerController.GetCustomer)
	customers.Put("/:id", auth.Verify(Models.PermissionManager), customerController.UpdateCustomer)
	customers.Delete("/:id", auth.Verify(Models.PermissionAdmin), customerController.DeleteCustomer)
	customers.Get("/:id/balance", customerController.GetCustomerBalance)
	customers.Get("/:id/transactions", customerController.GetCustomerTransactions)

	// Transaction routes
	transactions := api.Group("/transactions", auth.Verify(Models.PermissionOperator))
	transactions.Get("/", transactionController.GetTransactions)
	transactions.Post("/", transactionController.CreateTransaction)
	transactions.Get("/prices", transactionController.GetPrices)
	transactions.Get("/stats/summary", analyticsController.Summary)
	transactions.Put("/bulk-customer-payment", transactionController.BulkCustomerPayment)
	transactions.Get("/:id", transactionController.GetTransaction)
	transactions.Put("/:id", auth.Verify(Models.PermissionManager), transactionController.UpdateTransaction)
	transactions.Delete("/:id", auth.Verify(Models.PermissionManager), transactionController.DeleteTransaction)
	transactions.Post("/:id/payment", transactionController.RecordPayment)

	// Payment routes, read only
	payments := api.Group("/payments", auth.Verify(Models.PermissionOperator))
	payments.Get("/", paymentController.GetPayments)
	payments.Get("/:id", paymentController.GetPayment)

	// Branch routes
	branches := api.Group("/branches", auth.Verify(Models.PermissionOperator))
	branches.Get("/", branchController.GetBranches)
	branches.Get("/:id", branchController.GetBranch)
	branches.Post("/", auth.Verify(Models.PermissionManager), branchController.CreateBranch)
	branches.Put("/:id", auth.Verify(Models.PermissionManager), branchController.UpdateBranch)
	branches.Delete("/:id", auth.Verify(Models.PermissionAdmin), branchController.DeleteBranch)

	// Inventory routes, manager and above
	inventory := api.Group("/inventory", auth.Verify(Models.PermissionManager))
	inventory.Get("/", inventoryController.GetInventory)
	inventory.Get("/report", inventoryController.GetInventoryReport)
	inventory.Get("/cylinder-types", inventoryController.GetCylinderTypes)
	inventory.Get("/low-stock", inventoryController.GetLowStock)
	inventory.Post("/add", inventoryController.AddStock)
	inventory.Put("/update/:id", inventoryController.UpdateInventory)
	inventory.Delete("/:id", auth.Verify(Models.PermissionAdmin), inventoryController.DeleteInventory)

	// Analytics routes, manager and above
	analytics := api.Group("/analytics", auth.Verify(Models.PermissionManager))
	analytics.Get("/summary", analyticsController.Summary)
	analytics.Get("/monthly", analyticsController.MonthlyTransactions)
	analytics.Get("/top-customers", analyticsController.TopCustomers)
	analytics.Get("/recent-activity", analyticsController.RecentActivity)

	// Request log API, admin only
	app.Get("/api/logs", auth.Verify(Models.PermissionAdmin), Controllers.GetLogs)
	app.Get("/api/logs/stats", auth.Verify(Models.PermissionAdmin), Controllers.GetLogStats)

	// Report routes
	reports := api.Group("/reports", auth.Verify(Models.PermissionManager))
	reports.Get("/transactions/export", reportController.ExportTransactions)

	// Server-rendered daily summary page
	app.Get("/summary", auth.Verify(Models.PermissionManager), reportController.DailySummary)
}

func FiberConfig(cfg Models.Config, db *gorm.DB, writer *Ledger.Writer, reader *Ledger.Reader, auth *middleware.Auth) {
	fmt.Println("Server Up...")
	engine := html.New("./Templates", ".html")
	// Html Template engine
	app := fiber.New(fiber.Config{
		Views: engine,
	})
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,
	}))

	SetupRoutes(app, db, writer, reader, auth)
	app.Static("/static", "static/")

	app.Listen(":" + cfg.Port)
}
