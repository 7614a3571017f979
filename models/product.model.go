package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a single user's rating of a product, embedded in the product.
type Review struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	User    primitive.ObjectID `bson:"user" json:"user"`
	Name    string             `bson:"name" json:"name"`
	Rating  float64            `bson:"rating" json:"rating"`
	Comment string             `bson:"comment" json:"comment"`
}

// Product represents an item in the catalog
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Description  string             `bson:"description" json:"description" validate:"required"`
	Price        float64            `bson:"price" json:"price" validate:"gt=0,lt=100000000"`
	Rating       float64            `bson:"rating" json:"rating"`
	Images       []Image            `bson:"images" json:"images" validate:"dive"`
	Category     string             `bson:"category" json:"category" validate:"required"`
	Stock        int                `bson:"stock" json:"stock" validate:"gte=0,lte=99999"`
	NumOfReviews int                `bson:"numOfReviews" json:"numOfReviews"`
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// ProductInput is the admin payload for creating or updating a product. Nil
// fields are left untouched on update.
type ProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Images      []Image  `json:"images"`
}

// Apply copies the set fields of in onto p.
func (in ProductInput) Apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Images != nil {
		p.Images = in.Images
	}
}

// ReviewInput is the payload for creating or replacing the caller's review.
type ReviewInput struct {
	ProductID string  `json:"productId" validate:"required"`
	Rating    float64 `json:"rating" validate:"gte=1,lte=5"`
	Comment   string  `json:"comment" validate:"required"`
}
