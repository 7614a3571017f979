package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment stage of an order.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
)

var statusSequence = []OrderStatus{StatusProcessing, StatusShipped, StatusDelivered}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	return s.position() >= 0
}

// Next returns the status that follows s, and false if s is terminal or unknown.
func (s OrderStatus) Next() (OrderStatus, bool) {
	i := s.position()
	if i < 0 || i == len(statusSequence)-1 {
		return "", false
	}
	return statusSequence[i+1], true
}

func (s OrderStatus) position() int {
	for i, st := range statusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// ShippingInfo is the delivery address of an order.
type ShippingInfo struct {
	Address    string `bson:"address" json:"address" validate:"required"`
	City       string `bson:"city" json:"city" validate:"required"`
	State      string `bson:"state" json:"state" validate:"required"`
	Country    string `bson:"country" json:"country" validate:"required"`
	PostalCode string `bson:"postalCode" json:"postalCode" validate:"required"`
	Phone      string `bson:"phone" json:"phone" validate:"required"`
}

// OrderItem is a snapshot of a product taken when the order was placed.
type OrderItem struct {
	Name     string             `bson:"name" json:"name" validate:"required"`
	Price    float64            `bson:"price" json:"price" validate:"gte=0"`
	Quantity int                `bson:"quantity" json:"quantity" validate:"gte=1"`
	Image    string             `bson:"image" json:"image" validate:"required"`
	Product  primitive.ObjectID `bson:"product" json:"product" validate:"required"`
}

// Order represents a user's order
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ShippingInfo  ShippingInfo       `bson:"shippingInfo" json:"shippingInfo"`
	OrderItems    []OrderItem        `bson:"orderItems" json:"orderItems" validate:"required,min=1,dive"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	PaymentInfo   PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
	PaidAt        time.Time          `bson:"paidAt" json:"paidAt"`
	ItemsPrice    float64            `bson:"itemsPrice" json:"itemsPrice" validate:"gte=0"`
	TaxPrice      float64            `bson:"taxPrice" json:"taxPrice" validate:"gte=0"`
	ShippingPrice float64            `bson:"shippingPrice" json:"shippingPrice" validate:"gte=0"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice" validate:"gte=0"`
	OrderStatus   OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	DeliveredAt   *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// OrderInput is the payload for placing an order.
type OrderInput struct {
	ShippingInfo  ShippingInfo `json:"shippingInfo"`
	OrderItems    []OrderItem  `json:"orderItems"`
	PaymentInfo   PaymentInfo  `json:"paymentInfo"`
	ItemsPrice    float64      `json:"itemsPrice"`
	TaxPrice      float64      `json:"taxPrice"`
	ShippingPrice float64      `json:"shippingPrice"`
	TotalPrice    float64      `json:"totalPrice"`
}

// OrderWithUser is an order whose owner reference is expanded.
type OrderWithUser struct {
	Order
	User *UserSummary `json:"user"`
}

// StatusInput is the admin payload for moving an order along.
type StatusInput struct {
	Status OrderStatus `json:"status" validate:"required"`
}
