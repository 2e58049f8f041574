package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"gudang/internal/handlers"
	"gudang/internal/models"
	"gudang/internal/repositories"
	"gudang/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over a per-test in-memory SQLite database
// with all handlers and services wired, the same way main does.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}))

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productService, nil) // nil publisher: no broker in tests

	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)

	return app
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func createProduct(t *testing.T, app *fiber.App, name, price string, stock int) map[string]interface{} {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/products/", map[string]interface{}{
		"name":           name,
		"price":          price,
		"stock_quantity": stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body
}

func TestProductCRUD(t *testing.T) {
	app := setupApp(t)

	created := createProduct(t, app, "Widget", "10.00", 5)
	assert.Equal(t, "Widget", created["name"])
	assert.Equal(t, "10.00", created["price"])
	assert.Equal(t, float64(5), created["stock_quantity"])
	id := created["id"].(string)

	// list envelope echoes the pagination window
	resp, list := doJSON(t, app, http.MethodGet, "/api/v1/products/?skip=0&limit=10", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), list["total"])
	assert.Equal(t, float64(0), list["skip"])
	assert.Equal(t, float64(10), list["limit"])
	assert.Len(t, list["items"], 1)

	// partial update changes only the supplied field
	resp, updated := doJSON(t, app, http.MethodPatch, "/api/v1/products/"+id, map[string]interface{}{
		"price": "12.50",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "12.50", updated["price"])
	assert.Equal(t, "Widget", updated["name"])
	assert.Equal(t, float64(5), updated["stock_quantity"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, errBody := doJSON(t, app, http.MethodGet, "/api/v1/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, errBody["detail"], "not found")
}

func TestProductValidationErrorsCarryDetailList(t *testing.T) {
	app := setupApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/products/", map[string]interface{}{
		"name":           "",
		"price":          "0",
		"stock_quantity": -1,
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	entries, ok := body["detail"].([]interface{})
	require.True(t, ok, "detail should be a list of validation entries")
	assert.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Contains(t, entry.(map[string]interface{}), "msg")
	}
}

func TestOrderLifecycleScenario(t *testing.T) {
	app := setupApp(t)

	product := createProduct(t, app, "Widget", "10.00", 5)
	productID := product["id"].(string)

	// create order: Pending, snapshot price, stock drops to 2
	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": productID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Pending", order["status"])
	items := order["order_items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "10.00", item["price_at_time"])
	assert.Equal(t, float64(3), item["quantity_ordered"])
	assert.Equal(t, "Widget", item["product_name"])
	orderID := order["id"].(string)

	resp, reloaded := doJSON(t, app, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), reloaded["stock_quantity"])

	// ship it
	resp, shipped := doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", map[string]interface{}{
		"status": "Shipped",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Shipped", shipped["status"])

	// cancelling a shipped order is rejected and stock stays consumed
	resp, errBody := doJSON(t, app, http.MethodDelete, "/api/v1/orders/"+orderID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody["detail"], "Shipped")

	resp, reloaded = doJSON(t, app, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), reloaded["stock_quantity"])
}

func TestOrderInsufficientStock(t *testing.T) {
	app := setupApp(t)

	product := createProduct(t, app, "Widget", "10.00", 2)
	productID := product["id"].(string)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": productID, "quantity": 10}},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["detail"], "insufficient stock")

	resp, reloaded := doJSON(t, app, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), reloaded["stock_quantity"])
}

func TestCancelPendingOrderRestoresStock(t *testing.T) {
	app := setupApp(t)

	product := createProduct(t, app, "Widget", "10.00", 5)
	productID := product["id"].(string)

	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": productID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := order["id"].(string)

	resp, cancelled := doJSON(t, app, http.MethodDelete, "/api/v1/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cancelled", cancelled["status"])

	resp, reloaded := doJSON(t, app, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), reloaded["stock_quantity"])
}

func TestAddItemsEndpoint(t *testing.T) {
	app := setupApp(t)

	widget := createProduct(t, app, "Widget", "10.00", 5)
	gadget := createProduct(t, app, "Gadget", "4.50", 8)

	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": widget["id"], "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := order["id"].(string)

	resp, updated := doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/items", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": gadget["id"], "quantity": 4}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := updated["order_items"].([]interface{})
	require.Len(t, items, 2)
	// existing items stay first and unchanged
	first := items[0].(map[string]interface{})
	assert.Equal(t, widget["id"], first["product_id"])
	second := items[1].(map[string]interface{})
	assert.Equal(t, "4.50", second["price_at_time"])

	// item addition is Pending-only
	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", map[string]interface{}{
		"status": "Shipped",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, errBody := doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/items", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": gadget["id"], "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody["detail"], "Pending")
}

func TestBulkDeleteSkipsUnknownIDs(t *testing.T) {
	app := setupApp(t)

	first := createProduct(t, app, "Widget", "10.00", 1)
	second := createProduct(t, app, "Gadget", "4.50", 1)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/products/bulk-delete",
		[]string{first["id"].(string), second["id"].(string), "999"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["deleted"])

	resp, list := doJSON(t, app, http.MethodGet, "/api/v1/products/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), list["total"])
}

func TestInvalidTransitionAndUnknownOrder(t *testing.T) {
	app := setupApp(t)

	resp, body := doJSON(t, app, http.MethodPatch, "/api/v1/orders/missing/status", map[string]interface{}{
		"status": "Shipped",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["detail"], "not found")

	resp, body = doJSON(t, app, http.MethodPatch, "/api/v1/orders/missing/status", map[string]interface{}{
		"status": "Delivered",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	entries, ok := body["detail"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, entries[0].(map[string]interface{})["msg"], "status")
}
