package controllers

import (
	"net/http"

	"ecommerce-backend/models"
	"ecommerce-backend/services"
	"ecommerce-backend/utils"
)

// ProductController handles product and review requests
type ProductController struct {
	Catalog *services.ProductService
	View    *Presenter
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.ProductService, view *Presenter) *ProductController {
	return &ProductController{Catalog: catalog, View: view}
}

// GetProducts lists one page of products matching the query string
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	page, err := pc.Catalog.List(ctx, r.URL.Query())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	products, err := pc.View.Products(page.Products)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"products":      products,
		"productCount":  page.ProductCount,
		"resultPerPage": page.ResultPerPage,
	})
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.Catalog.Get(ctx, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	pc.sendProduct(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var in models.ProductInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.Catalog.Create(ctx, user.ID, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	pc.sendProduct(w, http.StatusCreated, product)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var in models.ProductInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.Catalog.Update(ctx, id, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	pc.sendProduct(w, http.StatusOK, product)
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.Catalog.Delete(ctx, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"message": "Product deleted successfully."})
}

// CreateReview adds or replaces the caller's review of a product
func (pc *ProductController) CreateReview(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var in models.ReviewInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.Catalog.UpsertReview(ctx, user, in); err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// GetReviews lists the reviews of the product named by ?productId=
func (pc *ProductController) GetReviews(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseID(r.URL.Query().Get("productId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	reviews, err := pc.Catalog.Reviews(ctx, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// DeleteReview removes the review ?id= from the product ?productId= (Admin only)
func (pc *ProductController) DeleteReview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	productID, err := services.ParseID(query.Get("productId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	reviewID, err := services.ParseID(query.Get("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.Catalog.DeleteReview(ctx, productID, reviewID); err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (pc *ProductController) sendProduct(w http.ResponseWriter, status int, product *models.Product) {
	body, err := pc.View.Product(product)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, status, map[string]any{"product": body})
}
