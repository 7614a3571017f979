package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce-backend/models"
	"ecommerce-backend/store"
	"ecommerce-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const orderNotFound = "Order not found."

// OrderService places orders and moves them through fulfilment.
type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	users    UserRepository
	now      func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(orders OrderRepository, products ProductRepository, users UserRepository) *OrderService {
	return &OrderService{orders: orders, products: products, users: users, now: time.Now}
}

// Create records an order for owner. Payment has already happened, so the
// order is stamped as paid now. Stock is not touched until shipment.
func (s *OrderService) Create(ctx context.Context, owner primitive.ObjectID, in models.OrderInput) (*models.Order, error) {
	now := s.now()
	order := &models.Order{
		ShippingInfo:  in.ShippingInfo,
		OrderItems:    in.OrderItems,
		User:          owner,
		PaymentInfo:   in.PaymentInfo,
		PaidAt:        now,
		ItemsPrice:    in.ItemsPrice,
		TaxPrice:      in.TaxPrice,
		ShippingPrice: in.ShippingPrice,
		TotalPrice:    in.TotalPrice,
		OrderStatus:   models.StatusProcessing,
		CreatedAt:     now,
	}
	if err := models.Validate(order); err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns an order with its owner expanded. Only the owner and admins may
// read it.
func (s *OrderService) Get(ctx context.Context, caller *models.User, id primitive.ObjectID) (*models.OrderWithUser, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, orderNotFound)
	}
	if order.User != caller.ID && !caller.IsAdmin() {
		return nil, utils.Forbidden("You are not allowed to access this order.")
	}

	view := &models.OrderWithUser{Order: *order}
	owner, err := s.users.FindByID(ctx, order.User)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if owner != nil {
		summary := owner.Summary()
		view.User = &summary
	}
	return view, nil
}

func (s *OrderService) Mine(ctx context.Context, caller primitive.ObjectID) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, caller)
}

// All returns every order and the sum of their totals.
func (s *OrderService) All(ctx context.Context) ([]models.Order, float64, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	totals := make([]float64, len(orders))
	for i, o := range orders {
		totals[i] = o.TotalPrice
	}
	return orders, utils.SumPrices(totals...), nil
}

// UpdateStatus moves an order exactly one step along
// Processing -> Shipped -> Delivered. Shipping takes the ordered quantities
// out of stock; the decrements run concurrently and are not atomic as a group.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, in models.StatusInput) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, orderNotFound)
	}
	if order.OrderStatus == models.StatusDelivered {
		return nil, utils.Conflict("The order has already been delivered.")
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, utils.BadRequest(fmt.Sprintf("Unknown order status %q.", in.Status))
	}
	if next, ok := order.OrderStatus.Next(); !ok || next != in.Status {
		return nil, utils.Conflict(fmt.Sprintf("The order cannot move from %s to %s.", order.OrderStatus, in.Status))
	}

	if in.Status == models.StatusShipped {
		if err := s.decrementStock(ctx, order.OrderItems); err != nil {
			return nil, err
		}
	}

	var deliveredAt *time.Time
	if in.Status == models.StatusDelivered {
		now := s.now()
		deliveredAt = &now
	}
	if err := s.orders.SetStatus(ctx, id, in.Status, deliveredAt); err != nil {
		return nil, orNotFound(err, orderNotFound)
	}
	order.OrderStatus = in.Status
	order.DeliveredAt = deliveredAt
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id primitive.ObjectID) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return orNotFound(err, orderNotFound)
	}
	if order.OrderStatus == models.StatusDelivered {
		return utils.Conflict("The order cannot be removed, it has already been delivered.")
	}
	return orNotFound(s.orders.Delete(ctx, id), orderNotFound)
}

func (s *OrderService) decrementStock(ctx context.Context, items []models.OrderItem) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, item := range items {
		item := item
		g.Go(func() error {
			err := s.products.AdjustStock(ctx, item.Product, -item.Quantity)
			return orNotFound(err, fmt.Sprintf("Product %s in this order no longer exists.", item.Product.Hex()))
		})
	}
	return g.Wait()
}
