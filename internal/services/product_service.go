package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"produk/internal/models"
	"produk/internal/repositories"
)

// DefaultCategory is stamped onto every newly created product, regardless of
// what the client sent. Updates take the category from the request body
// verbatim, so a later update can move an item out of this category; the
// asymmetry is inherited behavior and kept as-is because category is part of
// the item key.
const DefaultCategory = "general"

// Routing keys for product lifecycle events.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher is the subset of the message-queue client the service needs.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ProductService handles business logic related to products: server-side ID
// assignment, category pinning on create, repository access and lifecycle
// event publishing.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
}

// NewProductService creates a new ProductService. A nil events client disables
// event publishing.
func NewProductService(repo repositories.ProductRepository, events EventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new product from a validated payload. The product ID
// is generated here, never taken from the client, and the category is pinned
// to DefaultCategory.
func (s *ProductService) CreateProduct(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	product := &models.Product{
		ProductID:   uuid.New().String(),
		Category:    DefaultCategory,
		Name:        *payload.Name,
		Description: *payload.Description,
		Price:       *payload.Price,
		IsActive:    *payload.IsActive,
	}

	if err := s.repo.Put(ctx, product); err != nil {
		return nil, err
	}

	s.publish(EventProductCreated, product)
	return product, nil
}

// ReplaceProduct writes a full replacement of the product under an existing
// ID. Callers check existence first; this method only performs the write.
func (s *ProductService) ReplaceProduct(ctx context.Context, id string, payload *models.ProductPayload) (*models.Product, error) {
	product := &models.Product{
		ProductID:   id,
		Category:    *payload.Category,
		Name:        *payload.Name,
		Description: *payload.Description,
		Price:       *payload.Price,
		IsActive:    *payload.IsActive,
	}

	if err := s.repo.Put(ctx, product); err != nil {
		return nil, err
	}

	s.publish(EventProductUpdated, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(EventProductDeleted, &models.Product{ProductID: id})
	return nil
}

// publish emits a product lifecycle event. Publishing is best-effort: a
// failure is logged and never fails the request that triggered it.
func (s *ProductService) publish(routingKey string, product *models.Product) {
	if s.events == nil {
		return
	}

	body, err := json.Marshal(product)
	if err != nil {
		log.Printf("Failed to marshal product %s for event %s: %v", product.ProductID, routingKey, err)
		return
	}

	if err := s.events.Publish("products", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for product %s: %v", routingKey, product.ProductID, err)
	}
}
