package models

// PaymentInfo is the confirmation returned by the payment provider for an order.
type PaymentInfo struct {
	ID     string `bson:"id" json:"id" validate:"required"`
	Status string `bson:"status" json:"status" validate:"required"` // provider status, e.g. "succeeded"
}
