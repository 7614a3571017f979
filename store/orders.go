package store

import (
	"context"
	"time"

	"ecommerce-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderStore persists orders in the "orders" collection.
type OrderStore struct {
	Collection *mongo.Collection
}

// NewOrderStore creates a new OrderStore
func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{Collection: db.Collection(ordersCollection)}
}

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	_, err := s.Collection.InsertOne(ctx, order)
	return err
}

func (s *OrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *OrderStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.find(ctx, bson.M{"user": userID})
}

func (s *OrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

// SetStatus records a new status, and the delivery time when one is given.
func (s *OrderStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, deliveredAt *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"orderStatus": status}
	if deliveredAt != nil {
		set["deliveredAt"] = *deliveredAt
	}
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
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

func (s *OrderStore) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Order](ctx, cursor)
}
