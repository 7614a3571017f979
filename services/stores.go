package services

import (
	"context"
	"errors"
	"time"

	"ecommerce-backend/models"
	"ecommerce-backend/store"
	"ecommerce-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is the persistence the account service needs.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error)
	EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expiry time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductRepository is the persistence the catalog and order services need.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Find(ctx context.Context, q store.ProductQuery) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	Replace(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SaveReviews(ctx context.Context, id primitive.ObjectID, reviews []models.Review, rating float64) error
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error
}

// OrderRepository is the persistence the order service needs.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, deliveredAt *time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ParseID converts a path or query id into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, &utils.AppError{Kind: utils.KindValidation, Message: "Resource not found. Invalid id", Err: err}
	}
	return id, nil
}

// orNotFound maps store.ErrNotFound to a NotFound error carrying msg.
func orNotFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFound(msg)
	}
	return err
}
