package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"produk/internal/errs"
	"produk/internal/models"
	"produk/internal/services"
	"produk/internal/validation"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Post("/product", h.HandleCreateProduct)
	router.Get("/product/:productId", h.HandleGetProduct)
	router.Put("/product/:productId", h.HandleUpdateProduct)
	router.Delete("/product/:productId", h.HandleDeleteProduct)
}

// respondError funnels recognized error kinds (validation, syntax, not-found)
// through the classifier. Anything unrecognized is returned to Fiber's error
// handler instead of being swallowed, so it surfaces as an opaque 500 and
// platform error reporting stays intact.
func respondError(c *fiber.Ctx, err error) error {
	if status, body, ok := errs.Classify(err); ok {
		return c.Status(status).JSON(body)
	}
	return err
}

// asBodyError distinguishes a JSON type mismatch (a per-field validation
// problem) from a body that is not parseable JSON at all.
func asBodyError(err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return validation.TypeMismatch(ute)
	}
	return &errs.SyntaxError{Cause: err}
}

// HandleListProducts retrieves all products via an unfiltered scan.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id := c.Params("productId")
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		log.Printf("Error getting product %s: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct validates the request body and stores a new product
// under a freshly generated ID.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var payload models.ProductPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing create product body: %v", err)
		return respondError(c, asBodyError(err))
	}

	if err := validation.ProductPayload(&payload); err != nil {
		return respondError(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), &payload)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": product,
	})
}

// HandleUpdateProduct replaces an existing product in full. The existence
// check runs before body validation, so an unknown ID returns 404 without any
// write; the category is taken from the new body, not preserved from the old
// record.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("productId")
	if _, err := h.service.GetProductByID(c.UserContext(), id); err != nil {
		log.Printf("Error looking up product %s for update: %v", id, err)
		return respondError(c, err)
	}

	var payload models.ProductPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing update product body: %v", err)
		return respondError(c, asBodyError(err))
	}

	if err := validation.ProductPayload(&payload); err != nil {
		return respondError(c, err)
	}

	product, err := h.service.ReplaceProduct(c.UserContext(), id, &payload)
	if err != nil {
		log.Printf("Error updating product %s: %v", id, err)
		return respondError(c, err)
	}

	return c.JSON(product)
}

// HandleDeleteProduct deletes an existing product. The existence check runs
// first so an unknown ID returns 404; the delete itself is idempotent.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("productId")
	if _, err := h.service.GetProductByID(c.UserContext(), id); err != nil {
		log.Printf("Error looking up product %s for deletion: %v", id, err)
		return respondError(c, err)
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		log.Printf("Error deleting product %s: %v", id, err)
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusNoContent).Send(nil)
}
