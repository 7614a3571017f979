package store

import (
	"context"

	"ecommerce-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProductStore persists products and their embedded reviews.
type ProductStore struct {
	Collection *mongo.Collection
}

// NewProductStore creates a new ProductStore
func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{Collection: db.Collection(productsCollection)}
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	_, err := s.Collection.InsertOne(ctx, product)
	return err
}

func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var product models.Product
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

// Find returns one page of products matching q.
func (s *ProductStore) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.Collection.Find(ctx, q.Filter, q.FindOptions())
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Product](ctx, cursor)
}

// Count returns the number of products in the catalog, ignoring any filter.
func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.Collection.CountDocuments(ctx, bson.M{})
}

// Replace overwrites the whole product document.
func (s *ProductStore) Replace(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveReviews writes the review list and its derived fields without touching
// the rest of the document.
func (s *ProductStore) SaveReviews(ctx context.Context, id primitive.ObjectID, reviews []models.Review, rating float64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"reviews":      reviews,
		"rating":       rating,
		"numOfReviews": len(reviews),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock adds delta to the product's stock.
func (s *ProductStore) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"stock": delta},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
