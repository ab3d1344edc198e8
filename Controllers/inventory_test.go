package Controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"GasTrack/Models"
)

func newInventoryApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// SQLite allows a single writer; one connection avoids lock errors.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Models.Migrate(db))

	user := Models.User{Username: "stock-clerk", Password: []byte("test-password"), Permission: Models.PermissionManager}
	require.NoError(t, db.Create(&user).Error)

	app := fiber.New()
	app.Use(func(ctx *fiber.Ctx) error {
		ctx.Locals("user", user)
		return ctx.Next()
	})

	controller := NewInventoryController(db)
	app.Get("/inventory", controller.GetInventory)
	app.Get("/inventory/report", controller.GetInventoryReport)
	app.Get("/inventory/cylinder-types", controller.GetCylinderTypes)
	app.Get("/inventory/low-stock", controller.GetLowStock)
	app.Post("/inventory/add", controller.AddStock)
	app.Put("/inventory/update/:id", controller.UpdateInventory)
	app.Delete("/inventory/:id", controller.DeleteInventory)

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func TestAddStockCreatesAndDerivesFields(t *testing.T) {
	app, db := newInventoryApp(t)

	resp := postJSON(t, app, "/inventory/add", map[string]interface{}{
		"cylinder_type":     "6kg",
		"quantity_kg":       "2500",
		"supplier_place":    "Mombasa Depot",
		"cost_per_kg":       "95.50",
		"total_amount_paid": "238750",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var item Models.Inventory
	require.NoError(t, db.First(&item).Error)
	assert.Equal(t, "6kg", item.CylinderType)
	assert.Equal(t, "2500.000", item.AvailableStockKg.StringFixed(3))
	assert.Equal(t, "2.500", item.AvailableStockTons.StringFixed(3))
	assert.Equal(t, "238750.00", item.AvailableStockKg.Mul(item.CostPerKg).Round(2).StringFixed(2))
	assert.Equal(t, "238750.00", item.TotalValue.StringFixed(2))
}

func TestAddStockAccumulatesExistingRow(t *testing.T) {
	app, db := newInventoryApp(t)

	resp := postJSON(t, app, "/inventory/add", map[string]interface{}{
		"cylinder_type":     "13kg",
		"quantity_kg":       "1000",
		"supplier_place":    "Nairobi Depot",
		"cost_per_kg":       "90",
		"total_amount_paid": "90000",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// A second purchase of the same type folds into the same row, replacing
	// the supplier and cost with the latest ones.
	resp = postJSON(t, app, "/inventory/add", map[string]interface{}{
		"cylinder_type":     "13kg",
		"quantity_kg":       "500",
		"supplier_place":    "Mombasa Depot",
		"cost_per_kg":       "92",
		"total_amount_paid": "46000",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var items []Models.Inventory
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "1500.000", items[0].AvailableStockKg.StringFixed(3))
	assert.Equal(t, "1.500", items[0].AvailableStockTons.StringFixed(3))
	assert.Equal(t, "136000.00", items[0].TotalAmountPaid.StringFixed(2))
	assert.Equal(t, "Mombasa Depot", items[0].SupplierPlace)
	assert.Equal(t, "92.00", items[0].CostPerKg.StringFixed(2))
}

func TestAddStockValidation(t *testing.T) {
	app, _ := newInventoryApp(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "missing cylinder type",
			body: map[string]interface{}{
				"quantity_kg":    "100",
				"supplier_place": "Depot",
			},
		},
		{
			name: "missing supplier",
			body: map[string]interface{}{
				"cylinder_type": "6kg",
				"quantity_kg":   "100",
			},
		},
		{
			name: "negative quantity",
			body: map[string]interface{}{
				"cylinder_type":  "6kg",
				"quantity_kg":    "-5",
				"supplier_place": "Depot",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/inventory/add", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetLowStock(t *testing.T) {
	app, _ := newInventoryApp(t)

	for _, seed := range []map[string]interface{}{
		{"cylinder_type": "6kg", "quantity_kg": "40", "supplier_place": "Depot", "cost_per_kg": "95", "total_amount_paid": "3800"},
		{"cylinder_type": "13kg", "quantity_kg": "900", "supplier_place": "Depot", "cost_per_kg": "90", "total_amount_paid": "81000"},
		{"cylinder_type": "50kg", "quantity_kg": "75", "supplier_place": "Depot", "cost_per_kg": "88", "total_amount_paid": "6600"},
	} {
		resp := postJSON(t, app, "/inventory/add", seed)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	// Default threshold of 100kg catches the two small rows, lowest first.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/inventory/low-stock", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["count"])
	items := body["inventory"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "6kg", first["cylinder_type"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/inventory/low-stock?threshold=50", nil), -1)
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(1), body["count"])
}

func TestInventoryReportSummary(t *testing.T) {
	app, _ := newInventoryApp(t)

	for _, seed := range []map[string]interface{}{
		{"cylinder_type": "6kg", "quantity_kg": "1000", "supplier_place": "Depot", "cost_per_kg": "100", "total_amount_paid": "100000"},
		{"cylinder_type": "13kg", "quantity_kg": "500", "supplier_place": "Depot", "cost_per_kg": "90", "total_amount_paid": "45000"},
	} {
		resp := postJSON(t, app, "/inventory/add", seed)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/inventory/report", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(2), summary["total_items"])
	assert.Equal(t, "1500", summary["total_stock_kg"])
	assert.Equal(t, "1.5", summary["total_stock_tons"])
	// 1000 x 100 + 500 x 90
	assert.Equal(t, "145000", summary["total_value"])
	assert.Equal(t, "95", summary["average_cost_per_kg"])
}

func TestGetCylinderTypes(t *testing.T) {
	app, _ := newInventoryApp(t)

	for _, seed := range []map[string]interface{}{
		{"cylinder_type": "13kg", "quantity_kg": "100", "supplier_place": "Depot"},
		{"cylinder_type": "6kg", "quantity_kg": "100", "supplier_place": "Depot"},
		{"cylinder_type": "6kg", "quantity_kg": "50", "supplier_place": "Depot"},
	} {
		resp := postJSON(t, app, "/inventory/add", seed)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/inventory/cylinder-types", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var types []string
	require.NoError(t, json.Unmarshal(raw, &types))
	assert.Equal(t, []string{"13kg", "6kg"}, types)
}
