package services

import (
	"context"
	"math"
	"net/url"
	"testing"

	"ecommerce-backend/models"
	"ecommerce-backend/services/servicestest"
	"ecommerce-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr[T any](v T) *T { return &v }

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.False(t, math.IsNaN(AverageRating([]models.Review{})))

	reviews := []models.Review{{Rating: 5}, {Rating: 4}, {Rating: 2}}
	assert.InDelta(t, 11.0/3.0, AverageRating(reviews), 1e-9)
	assert.Equal(t, 3.0, AverageRating([]models.Review{{Rating: 3}}))
}

func newCatalog(t *testing.T) (*ProductService, *servicestest.Products, *models.Product) {
	t.Helper()
	products := servicestest.NewProducts()
	s := NewProductService(products, 5)
	p, err := s.Create(context.Background(), primitive.NewObjectID(), models.ProductInput{
		Name:        ptr("Phone"),
		Description: ptr("A phone"),
		Price:       ptr(100.0),
		Category:    ptr("Electronics"),
		Stock:       ptr(10),
		Images:      []models.Image{{PublicID: "p1", URL: "http://img/p1"}},
	})
	require.NoError(t, err)
	return s, products, p
}

func reviewer(name string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: name, Role: models.RoleUser}
}

func TestCreateProductValidation(t *testing.T) {
	s := NewProductService(servicestest.NewProducts(), 5)
	_, err := s.Create(context.Background(), primitive.NewObjectID(), models.ProductInput{
		Name: ptr("Phone"), Description: ptr("A phone"), Category: ptr("Electronics"), Price: ptr(-1.0),
	})
	requireKind(t, err, utils.KindValidation)
}

func TestCreateProductDefaults(t *testing.T) {
	_, _, p := newCatalog(t)
	assert.False(t, p.ID.IsZero())
	assert.False(t, p.User.IsZero())
	assert.Equal(t, 0.0, p.Rating)
	assert.Equal(t, 0, p.NumOfReviews)
	assert.Empty(t, p.Reviews)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	s, _, p := newCatalog(t)
	ctx := context.Background()

	updated, err := s.Update(ctx, p.ID, models.ProductInput{Price: ptr(120.0)})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, "Phone", updated.Name)

	_, err = s.Update(ctx, p.ID, models.ProductInput{Stock: ptr(-5)})
	requireKind(t, err, utils.KindValidation)

	require.NoError(t, s.Delete(ctx, p.ID))
	requireKind(t, s.Delete(ctx, p.ID), utils.KindNotFound)
	_, err = s.Get(ctx, p.ID)
	requireKind(t, err, utils.KindNotFound)
}

func TestListUsesQueryBuilderAndUnfilteredCount(t *testing.T) {
	s, products, _ := newCatalog(t)
	ctx := context.Background()

	params, err := url.ParseQuery("price[gte]=50&price[lte]=200&category=Electronics&page=2")
	require.NoError(t, err)

	page, err := s.List(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.ProductCount)
	assert.Equal(t, 5, page.ResultPerPage)
	assert.Empty(t, page.Products)
	assert.Equal(t, int64(5), products.LastQuery.Skip)
	assert.Equal(t, "Electronics", products.LastQuery.Filter["category"])
}

func TestUpsertReviewReplacesSameUser(t *testing.T) {
	s, products, p := newCatalog(t)
	ctx := context.Background()
	alice, bob := reviewer("Alice"), reviewer("Bob")

	require.NoError(t, s.UpsertReview(ctx, alice, models.ReviewInput{ProductID: p.ID.Hex(), Rating: 4, Comment: "good"}))
	stored, _ := products.FindByID(ctx, p.ID)
	assert.Equal(t, 1, stored.NumOfReviews)
	assert.Equal(t, 4.0, stored.Rating)

	require.NoError(t, s.UpsertReview(ctx, alice, models.ReviewInput{ProductID: p.ID.Hex(), Rating: 2, Comment: "meh"}))
	stored, _ = products.FindByID(ctx, p.ID)
	require.Len(t, stored.Reviews, 1)
	assert.Equal(t, 1, stored.NumOfReviews)
	assert.Equal(t, 2.0, stored.Rating)
	assert.Equal(t, "meh", stored.Reviews[0].Comment)

	require.NoError(t, s.UpsertReview(ctx, bob, models.ReviewInput{ProductID: p.ID.Hex(), Rating: 5, Comment: "great"}))
	stored, _ = products.FindByID(ctx, p.ID)
	assert.Equal(t, 2, stored.NumOfReviews)
	assert.Equal(t, 3.5, stored.Rating)

	reviews, err := s.Reviews(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestUpsertReviewErrors(t *testing.T) {
	s, _, p := newCatalog(t)
	ctx := context.Background()
	alice := reviewer("Alice")

	requireKind(t, s.UpsertReview(ctx, alice, models.ReviewInput{ProductID: p.ID.Hex(), Rating: 6, Comment: "x"}), utils.KindValidation)
	requireKind(t, s.UpsertReview(ctx, alice, models.ReviewInput{ProductID: "nope", Rating: 3, Comment: "x"}), utils.KindValidation)
	requireKind(t, s.UpsertReview(ctx, alice, models.ReviewInput{ProductID: primitive.NewObjectID().Hex(), Rating: 3, Comment: "x"}), utils.KindNotFound)
}

func TestDeleteReviewRecomputes(t *testing.T) {
	s, products, p := newCatalog(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertReview(ctx, reviewer("Alice"), models.ReviewInput{ProductID: p.ID.Hex(), Rating: 4, Comment: "good"}))
	require.NoError(t, s.UpsertReview(ctx, reviewer("Bob"), models.ReviewInput{ProductID: p.ID.Hex(), Rating: 2, Comment: "bad"}))
	stored, _ := products.FindByID(ctx, p.ID)
	require.Len(t, stored.Reviews, 2)

	var bobsReview primitive.ObjectID
	for _, r := range stored.Reviews {
		if r.Name == "Bob" {
			bobsReview = r.ID
		}
	}
	require.NoError(t, s.DeleteReview(ctx, p.ID, bobsReview))

	stored, _ = products.FindByID(ctx, p.ID)
	assert.Equal(t, 1, stored.NumOfReviews)
	assert.Equal(t, 4.0, stored.Rating)

	requireKind(t, s.DeleteReview(ctx, p.ID, bobsReview), utils.KindNotFound)

	for _, r := range stored.Reviews {
		require.NoError(t, s.DeleteReview(ctx, p.ID, r.ID))
	}
	stored, _ = products.FindByID(ctx, p.ID)
	assert.Equal(t, 0, stored.NumOfReviews)
	assert.Equal(t, 0.0, stored.Rating)
}
