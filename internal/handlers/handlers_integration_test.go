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
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"produk/internal/handlers"
	"produk/internal/middleware"
	"produk/internal/models"
	"produk/internal/repositories"
	"produk/internal/services"
)

// setupApp builds a Fiber app backed by a fresh in-memory SQLite database.
// Each test gets its own named database so state never leaks between tests.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory database")

	require.NoError(t, db.AutoMigrate(&models.Product{}), "failed to auto-migrate database")

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, nil) // nil publisher: events disabled
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.GatewayIdentity())
	productHandler.RegisterRoutes(apiV1)

	return app
}

// gatewayToken builds a bearer token like the one the gateway forwards after
// verifying the caller. The service only decodes it, so any signature works.
func gatewayToken(t *testing.T) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": "test-caller",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("gateway-secret"))
	require.NoError(t, err)
	return token
}

func newRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		jsonBody, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+gatewayToken(t))
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	resp.Body.Close()
}

func validProductBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "A",
		"category":    "x",
		"description": "d",
		"price":       1,
		"isActive":    true,
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestListProductsEmptyTable(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodGet, "/api/v1/products", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	// An empty table is an empty JSON array, never null.
	assert.Equal(t, "[]", string(body))
}

func TestCreateAndGetProductRoundTrip(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodPost, "/api/v1/product", validProductBody())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var createResp struct {
		Message string         `json:"message"`
		Product models.Product `json:"product"`
	}
	decodeBody(t, resp, &createResp)
	assert.NotEmpty(t, createResp.Message)
	assert.NotEmpty(t, createResp.Product.ProductID)

	// Every field echoes the input except category, which is overridden with
	// the server-fixed constant.
	assert.Equal(t, "A", createResp.Product.Name)
	assert.Equal(t, "d", createResp.Product.Description)
	assert.Equal(t, 1.0, createResp.Product.Price)
	assert.True(t, createResp.Product.IsActive)
	assert.Equal(t, services.DefaultCategory, createResp.Product.Category)

	req = newRequest(t, http.MethodGet, "/api/v1/product/"+createResp.Product.ProductID, nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Product
	decodeBody(t, resp, &fetched)
	assert.Equal(t, createResp.Product, fetched)
}

func TestCreateProductIDsAreUnique(t *testing.T) {
	app := setupApp(t)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		req := newRequest(t, http.MethodPost, "/api/v1/product", validProductBody())
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var createResp struct {
			Product models.Product `json:"product"`
		}
		decodeBody(t, resp, &createResp)
		assert.False(t, seen[createResp.Product.ProductID], "duplicate product ID generated")
		seen[createResp.Product.ProductID] = true
	}
}

func TestCreateProductMissingFields(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodPost, "/api/v1/product", map[string]interface{}{"name": "A"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp struct {
		Errors []string `json:"errors"`
	}
	decodeBody(t, resp, &errResp)

	// One message per missing field, all collected in a single response.
	assert.Len(t, errResp.Errors, 4)
	for _, field := range []string{"category", "description", "price", "isActive"} {
		assert.Contains(t, strings.Join(errResp.Errors, "; "), field)
	}

	// Nothing was written.
	req = newRequest(t, http.MethodGet, "/api/v1/products", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	var products []models.Product
	decodeBody(t, resp, &products)
	assert.Empty(t, products)
}

func TestCreateProductMalformedJSON(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodPost, "/api/v1/product", `{bad`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &errResp)
	assert.Contains(t, errResp.Error, "invalid request body format")
}

func TestCreateProductTypeMismatch(t *testing.T) {
	app := setupApp(t)

	body := validProductBody()
	body["price"] = "cheap"
	req := newRequest(t, http.MethodPost, "/api/v1/product", body)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp struct {
		Errors []string `json:"errors"`
	}
	decodeBody(t, resp, &errResp)
	require.NotEmpty(t, errResp.Errors)
	assert.Contains(t, errResp.Errors[0], "price")
}

func TestGetProductNotFound(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodGet, "/api/v1/product/does-not-exist", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.JSONEq(t, `{"error":"not found"}`, string(body))
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodPost, "/api/v1/product", validProductBody())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var createResp struct {
		Product models.Product `json:"product"`
	}
	decodeBody(t, resp, &createResp)
	id := createResp.Product.ProductID

	update := map[string]interface{}{
		"name":        "A2",
		"category":    services.DefaultCategory,
		"description": "d2",
		"price":       2.5,
		"isActive":    false,
	}
	req = newRequest(t, http.MethodPut, "/api/v1/product/"+id, update)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Product
	decodeBody(t, resp, &updated)
	assert.Equal(t, id, updated.ProductID)
	assert.Equal(t, "A2", updated.Name)
	assert.Equal(t, "d2", updated.Description)
	assert.Equal(t, 2.5, updated.Price)
	assert.False(t, updated.IsActive)

	// The replacement is what a subsequent read observes.
	req = newRequest(t, http.MethodGet, "/api/v1/product/"+id, nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Product
	decodeBody(t, resp, &fetched)
	assert.Equal(t, updated, fetched)
}

func TestUpdateProductTakesCategoryFromBody(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodPost, "/api/v1/product", validProductBody())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var createResp struct {
		Product models.Product `json:"product"`
	}
	decodeBody(t, resp, &createResp)

	// Unlike create, update does not pin the category: the body value is
	// written verbatim, even though that moves the item's composite key.
	update := validProductBody()
	update["category"] = "seafood"
	req = newRequest(t, http.MethodPut, "/api/v1/product/"+createResp.Product.ProductID, update)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Product
	decodeBody(t, resp, &updated)
	assert.Equal(t, "seafood", updated.Category)
}

func TestUpdateProductNotFoundShortCircuits(t *testing.T) {
	app := setupApp(t)

	// The body is malformed on purpose: the 404 must win because the
	// existence check runs before the body is even parsed.
	req := newRequest(t, http.MethodPut, "/api/v1/product/does-not-exist", `{bad`)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// No write happened.
	req = newRequest(t, http.MethodGet, "/api/v1/products", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	var products []models.Product
	decodeBody(t, resp, &products)
	assert.Empty(t, products)
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodPost, "/api/v1/product", validProductBody())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var createResp struct {
		Product models.Product `json:"product"`
	}
	decodeBody(t, resp, &createResp)
	id := createResp.Product.ProductID

	req = newRequest(t, http.MethodDelete, "/api/v1/product/"+id, nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, body)

	// The delete is effective: a follow-up read misses.
	req = newRequest(t, http.MethodGet, "/api/v1/product/"+id, nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteProductNotFound(t *testing.T) {
	app := setupApp(t)

	req := newRequest(t, http.MethodDelete, "/api/v1/product/does-not-exist", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.JSONEq(t, `{"error":"not found"}`, string(body))
}

func TestRequestsWithoutBearerToken(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
