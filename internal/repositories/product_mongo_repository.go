package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"produk/internal/errs"
	"produk/internal/models"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository,
// storing products as documents in a single collection.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		coll: db.Collection("products"),
	}
}

// GetAll retrieves every product document in the collection.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.coll.FindOne(ctx, bson.D{{Key: "productID", Value: id}}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// Put replaces the document with the same (productID, category) key, inserting
// it when absent.
func (r *MongoProductRepository) Put(ctx context.Context, product *models.Product) error {
	filter := bson.D{
		{Key: "productID", Value: product.ProductID},
		{Key: "category", Value: product.Category},
	}
	_, err := r.coll.ReplaceOne(ctx, filter, product, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put product %s: %w", product.ProductID, err)
	}
	return nil
}

// Delete removes every document stored under the given product ID. A zero
// delete count is not an error.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteMany(ctx, bson.D{{Key: "productID", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}
