package store

import (
	"context"
	"time"

	"ecommerce-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore persists users in the "users" collection.
type UserStore struct {
	Collection *mongo.Collection
}

// NewUserStore creates a new UserStore
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{Collection: db.Collection(usersCollection)}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.Collection.InsertOne(ctx, user)
	return err
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindByResetToken matches the token digest and an unexpired expiry in one
// query, so callers cannot tell which of the two failed.
func (s *UserStore) FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	return s.findOne(ctx, bson.M{
		"resetPasswordToken":  digest,
		"resetPasswordExpiry": bson.M{"$gt": now},
	})
}

// EmailTaken reports whether another user than exclude already owns email.
func (s *UserStore) EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"email": email}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := s.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.User](ctx, cursor)
}

func (s *UserStore) SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expiry time.Time) error {
	return s.update(ctx, id, bson.M{"$set": bson.M{
		"resetPasswordToken":  digest,
		"resetPasswordExpiry": expiry,
	}})
}

func (s *UserStore) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{"$unset": bson.M{
		"resetPasswordToken":  "",
		"resetPasswordExpiry": "",
	}})
}

// SetPassword replaces the credential hash and drops any pending reset token.
func (s *UserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.update(ctx, id, bson.M{
		"$set":   bson.M{"password": hash},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpiry": ""},
	})
}

func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) error {
	return s.update(ctx, id, bson.M{"$set": bson.M{"name": name, "email": email}})
}

func (s *UserStore) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	return s.update(ctx, id, bson.M{"$set": bson.M{"role": role}})
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
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

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user models.User
	if err := s.Collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserStore) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
