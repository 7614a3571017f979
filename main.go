// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce-backend/config"
	"ecommerce-backend/controllers"
	"ecommerce-backend/routes"
	"ecommerce-backend/services"
	"ecommerce-backend/store"
	"ecommerce-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := client.Database(cfg.DatabaseName)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Error creating indexes: %v", err)
	}

	mailer, err := utils.NewMailer(cfg.Mail)
	if err != nil {
		log.Fatalf("Error configuring email transport: %v", err)
	}

	// Initialize services and controllers
	users := store.NewUserStore(db)
	products := store.NewProductStore(db)
	accounts := services.NewAccountService(users, utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry), mailer)
	catalog := services.NewProductService(products, cfg.ProductsPerPage)
	orders := services.NewOrderService(store.NewOrderStore(db), products, users)

	view := controllers.NewPresenter(cfg.Redaction, cfg.CookieExpiry)
	router := routes.NewRouter(accounts,
		controllers.NewUserController(accounts, view),
		controllers.NewProductController(catalog, view),
		controllers.NewOrderController(orders, view))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
