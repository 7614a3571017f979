package services

import (
	"context"
	"net/url"
	"time"

	"ecommerce-backend/models"
	"ecommerce-backend/store"
	"ecommerce-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const productNotFound = "Product not found."

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products      []models.Product
	ProductCount  int64
	ResultPerPage int
}

// ProductService manages the catalog and the reviews embedded in it.
type ProductService struct {
	products ProductRepository
	pageSize int
	now      func() time.Time
}

// NewProductService creates a new ProductService
func NewProductService(products ProductRepository, pageSize int) *ProductService {
	return &ProductService{products: products, pageSize: pageSize, now: time.Now}
}

// List returns the page selected by params along with the size of the whole
// catalog.
func (s *ProductService) List(ctx context.Context, params url.Values) (*ProductPage, error) {
	total, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Find(ctx, store.BuildProductQuery(params, s.pageSize))
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, ProductCount: total, ResultPerPage: s.pageSize}, nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, productNotFound)
	}
	return product, nil
}

// Create adds a product owned by the calling admin.
func (s *ProductService) Create(ctx context.Context, owner primitive.ObjectID, in models.ProductInput) (*models.Product, error) {
	product := &models.Product{
		Images:    []models.Image{},
		Stock:     1,
		Reviews:   []models.Review{},
		User:      owner,
		CreatedAt: s.now(),
	}
	in.Apply(product)
	if err := models.Validate(product); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies the set fields of in and validates the resulting document.
func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, in models.ProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(product)
	if err := models.Validate(product); err != nil {
		return nil, err
	}
	if err := s.products.Replace(ctx, product); err != nil {
		return nil, orNotFound(err, productNotFound)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return orNotFound(s.products.Delete(ctx, id), productNotFound)
}

// UpsertReview adds the reviewer's review, or replaces the rating and comment
// of the one they already left.
func (s *ProductService) UpsertReview(ctx context.Context, reviewer *models.User, in models.ReviewInput) error {
	if err := models.Validate(in); err != nil {
		return err
	}
	id, err := ParseID(in.ProductID)
	if err != nil {
		return err
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	reviews := product.Reviews
	replaced := false
	for i := range reviews {
		if reviews[i].User == reviewer.ID {
			reviews[i].Rating = in.Rating
			reviews[i].Comment = in.Comment
			replaced = true
		}
	}
	if !replaced {
		reviews = append(reviews, models.Review{
			ID:      primitive.NewObjectID(),
			User:    reviewer.ID,
			Name:    reviewer.Name,
			Rating:  in.Rating,
			Comment: in.Comment,
		})
	}

	return orNotFound(s.products.SaveReviews(ctx, id, reviews, AverageRating(reviews)), productNotFound)
}

func (s *ProductService) Reviews(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Reviews == nil {
		return []models.Review{}, nil
	}
	return product.Reviews, nil
}

// DeleteReview removes one review and recomputes the product's rating.
func (s *ProductService) DeleteReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}

	reviews := make([]models.Review, 0, len(product.Reviews))
	for _, r := range product.Reviews {
		if r.ID != reviewID {
			reviews = append(reviews, r)
		}
	}
	if len(reviews) == len(product.Reviews) {
		return utils.NotFound("Review not found.")
	}

	return orNotFound(s.products.SaveReviews(ctx, productID, reviews, AverageRating(reviews)), productNotFound)
}
