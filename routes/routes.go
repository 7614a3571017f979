package routes

import (
	"net/http"

	"ecommerce-backend/controllers"
	"ecommerce-backend/middleware"
	"ecommerce-backend/utils"

	"github.com/gorilla/mux"
)

// APIPrefix is the base path of every API route.
const APIPrefix = "/api/v1"

// NewRouter builds the application router with its request middleware.
func NewRouter(auth middleware.Authenticator, userController *controllers.UserController, productController *controllers.ProductController, orderController *controllers.OrderController) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger, middleware.Recover)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, utils.NotFound("Route "+r.URL.Path+" not found."))
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
	}).Methods("GET")

	RegisterRoutes(router.PathPrefix(APIPrefix).Subrouter(), auth, userController, productController, orderController)
	return router
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, auth middleware.Authenticator, userController *controllers.UserController, productController *controllers.ProductController, orderController *controllers.OrderController) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/logout", userController.Logout).Methods("GET")
	router.HandleFunc("/password/forgot", userController.ForgotPassword).Methods("POST")
	router.HandleFunc("/password/reset/{token}", userController.ResetPassword).Methods("PUT")

	// Product routes
	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")
	router.HandleFunc("/reviews", productController.GetReviews).Methods("GET")

	// Protected routes
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.Authenticate(auth))
	protected.HandleFunc("/me", userController.GetProfile).Methods("GET")
	protected.HandleFunc("/me/update", userController.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/password/update", userController.UpdatePassword).Methods("PUT")
	protected.HandleFunc("/review", productController.CreateReview).Methods("PUT")
	protected.HandleFunc("/orders", orderController.CreateOrder).Methods("POST")
	protected.HandleFunc("/orders/me", orderController.MyOrders).Methods("GET")
	protected.HandleFunc("/orders/{id}", orderController.GetOrder).Methods("GET")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Authenticate(auth))
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/users", userController.GetAllUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", userController.GetUser).Methods("GET")
	admin.HandleFunc("/users/{id}", userController.UpdateUserRole).Methods("PUT")
	admin.HandleFunc("/users/{id}", userController.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", productController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/orders", orderController.GetAllOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}", orderController.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/orders/{id}", orderController.DeleteOrder).Methods("DELETE")

	// Admin review moderation lives outside /admin
	moderation := router.NewRoute().Subrouter()
	moderation.Use(middleware.Authenticate(auth))
	moderation.Use(middleware.AdminMiddleware)
	moderation.HandleFunc("/reviews", productController.DeleteReview).Methods("DELETE")
}
