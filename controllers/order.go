package controllers

import (
	"net/http"

	"ecommerce-backend/models"
	"ecommerce-backend/services"
	"ecommerce-backend/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders *services.OrderService
	View   *Presenter
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService, view *Presenter) *OrderController {
	return &OrderController{Orders: orders, View: view}
}

// CreateOrder places an order for the caller
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var in models.OrderInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.Create(ctx, user.ID, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	oc.sendOrder(w, http.StatusCreated, order)
}

// GetOrder retrieves one order with its owner's name and email
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.Get(ctx, user, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	oc.sendOrder(w, http.StatusOK, order)
}

// MyOrders lists the caller's orders
func (oc *OrderController) MyOrders(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.Orders.Mine(ctx, user.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	body, err := oc.View.Orders(orders)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"orders": body})
}

// GetAllOrders lists every order with the summed total (Admin only)
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	orders, total, err := oc.Orders.All(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	body, err := oc.View.Orders(orders)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"totalAmount": total, "orders": body})
}

// UpdateOrderStatus moves an order to its next status (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var in models.StatusInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.UpdateStatus(ctx, id, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	oc.sendOrder(w, http.StatusOK, order)
}

// DeleteOrder removes an undelivered order (Admin only)
func (oc *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := oc.Orders.Delete(ctx, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (oc *OrderController) sendOrder(w http.ResponseWriter, status int, order any) {
	body, err := oc.View.Order(order)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, status, map[string]any{"order": body})
}
