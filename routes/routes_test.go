package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"ecommerce-backend/config"
	"ecommerce-backend/controllers"
	"ecommerce-backend/models"
	"ecommerce-backend/services"
	"ecommerce-backend/services/servicestest"
	"ecommerce-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	utils.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testApp struct {
	handler http.Handler
	users   *servicestest.Users
	mailer  *servicestest.Mailer
}

func newTestApp() *testApp {
	users := servicestest.NewUsers()
	products := servicestest.NewProducts()
	mailer := &servicestest.Mailer{}

	accounts := services.NewAccountService(users, utils.NewTokenManager("test-secret", time.Hour), mailer)
	catalog := services.NewProductService(products, 5)
	orders := services.NewOrderService(servicestest.NewOrders(), products, users)
	view := controllers.NewPresenter(config.DefaultRedaction(), time.Hour)

	router := NewRouter(accounts,
		controllers.NewUserController(accounts, view),
		controllers.NewProductController(catalog, view),
		controllers.NewOrderController(orders, view))
	return &testApp{handler: router, users: users, mailer: mailer}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

// register creates an account and returns its token and id.
func (a *testApp) register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	rec, out := a.do(t, http.MethodPost, "/api/v1/register", "", map[string]any{
		"name": name, "email": email, "password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, out)
	user := out["user"].(map[string]any)
	return out["token"].(string), user["id"].(string)
}

func (a *testApp) registerAdmin(t *testing.T) string {
	t.Helper()
	token, id := a.register(t, "Admin", "admin@x.com")
	oid, err := primitive.ObjectIDFromHex(id)
	require.NoError(t, err)
	require.NoError(t, a.users.UpdateRole(context.Background(), oid, models.RoleAdmin))
	return token
}

func (a *testApp) createProduct(t *testing.T, adminToken string) string {
	t.Helper()
	rec, out := a.do(t, http.MethodPost, "/api/v1/admin/products", adminToken, map[string]any{
		"name": "Phone", "description": "A phone", "price": 100, "category": "Electronics", "stock": 10,
		"images": []map[string]string{{"public_id": "p1", "url": "http://img/p1"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, out)
	return out["product"].(map[string]any)["id"].(string)
}

func orderBody(productID string, quantity int) map[string]any {
	return map[string]any{
		"shippingInfo": map[string]any{
			"address": "1 Main St", "city": "Springfield", "state": "IL", "country": "US", "postalCode": "62701", "phone": "5550100",
		},
		"orderItems": []map[string]any{{
			"name": "Phone", "price": 100, "quantity": quantity, "image": "http://img/p1", "product": productID,
		}},
		"paymentInfo":   map[string]any{"id": "pi_123", "status": "succeeded"},
		"itemsPrice":    200,
		"taxPrice":      36,
		"shippingPrice": 0,
		"totalPrice":    236,
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	app := newTestApp()

	rec, out := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, out = app.do(t, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])

	rec, out = app.do(t, http.MethodPatch, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route /api/v1/products not found.", out["message"])
}

func TestRegisterSetsCookieAndHidesSecrets(t *testing.T) {
	app := newTestApp()
	rec, out := app.do(t, http.MethodPost, "/api/v1/register", "", map[string]any{
		"name": "Alice", "email": "a@x.com", "password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, out["success"])

	user := out["user"].(map[string]any)
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "resetPasswordToken")
	assert.Equal(t, "user", user["role"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, out["token"], cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rec, out = app.do(t, http.MethodPost, "/api/v1/register", "", map[string]any{
		"name": "Alice", "email": "a@x.com", "password": "password1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, out["success"])

	rec, _ = app.do(t, http.MethodPost, "/api/v1/register", "", map[string]any{"name": "Al"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body.")
}

func TestSessionRoutes(t *testing.T) {
	app := newTestApp()
	token, _ := app.register(t, "Alice", "a@x.com")

	rec, out := app.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please login to access this resource.", out["message"])

	rec, out = app.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", out["user"].(map[string]any)["email"])

	rec, out = app.do(t, http.MethodPost, "/api/v1/login", "", map[string]any{"email": "a@x.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email address or password.", out["message"])

	rec, out = app.do(t, http.MethodPut, "/api/v1/me/update", token, map[string]any{"name": "Alice Smith", "email": "alice@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice Smith", out["user"].(map[string]any)["name"])

	rec, out = app.do(t, http.MethodPut, "/api/v1/password/update", token, map[string]any{
		"oldPassword": "password1", "newPassword": "password2", "confirmPassword": "password2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["token"])

	rec, _ = app.do(t, http.MethodPost, "/api/v1/login", "", map[string]any{"email": "alice@x.com", "password": "password2"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestForgotAndResetPassword(t *testing.T) {
	app := newTestApp()
	app.register(t, "Alice", "a@x.com")

	rec, out := app.do(t, http.MethodPost, "/api/v1/password/forgot", "", map[string]any{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code, out)
	assert.Equal(t, "Email sent to a@x.com successfully.", out["message"])

	require.Len(t, app.mailer.Body, 1)
	const prefix = "http://example.com/api/v1/password/reset/"
	body := app.mailer.Body[0]
	i := strings.Index(body, prefix)
	require.GreaterOrEqual(t, i, 0, body)
	resetToken := strings.Fields(body[i+len(prefix):])[0]

	rec, out = app.do(t, http.MethodPut, "/api/v1/password/reset/"+resetToken, "", map[string]any{
		"password": "password9", "confirmPassword": "password9",
	})
	require.Equal(t, http.StatusOK, rec.Code, out)
	assert.NotEmpty(t, out["token"])

	rec, _ = app.do(t, http.MethodPut, "/api/v1/password/reset/"+resetToken, "", map[string]any{
		"password": "password8", "confirmPassword": "password8",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/password/forgot", "", map[string]any{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	app := newTestApp()
	userToken, userID := app.register(t, "Alice", "a@x.com")
	adminToken := app.registerAdmin(t)

	rec, out := app.do(t, http.MethodGet, "/api/v1/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "The requested resource is not accessible by the role: user.", out["message"])

	rec, out = app.do(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["users"], 2)

	rec, _ = app.do(t, http.MethodPut, "/api/v1/admin/users/"+userID, adminToken, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, out = app.do(t, http.MethodGet, "/api/v1/admin/users/"+userID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", out["user"].(map[string]any)["role"])

	rec, _ = app.do(t, http.MethodDelete, "/api/v1/admin/users/"+userID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, out = app.do(t, http.MethodGet, "/api/v1/me", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "The user for this session no longer exists.", out["message"])
}

func TestInvalidID(t *testing.T) {
	app := newTestApp()
	rec, out := app.do(t, http.MethodGet, "/api/v1/products/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Resource not found. Invalid id", out["message"])

	rec, _ = app.do(t, http.MethodGet, "/api/v1/products/"+primitive.NewObjectID().Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductListing(t *testing.T) {
	app := newTestApp()
	adminToken := app.registerAdmin(t)
	app.createProduct(t, adminToken)

	rec, out := app.do(t, http.MethodGet, "/api/v1/products?keyword=phone&price[gte]=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, out["productCount"])
	assert.Equal(t, 5.0, out["resultPerPage"])
	assert.Len(t, out["products"], 1)

	userToken, _ := app.register(t, "Alice", "a@x.com")
	rec, _ = app.do(t, http.MethodPost, "/api/v1/admin/products", userToken, map[string]any{"name": "X"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewRoutes(t *testing.T) {
	app := newTestApp()
	adminToken := app.registerAdmin(t)
	productID := app.createProduct(t, adminToken)
	userToken, _ := app.register(t, "Alice", "a@x.com")

	rec, _ := app.do(t, http.MethodPut, "/api/v1/review", "", map[string]any{"productId": productID, "rating": 4, "comment": "good"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = app.do(t, http.MethodPut, "/api/v1/review", userToken, map[string]any{"productId": productID, "rating": 4, "comment": "good"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out := app.do(t, http.MethodGet, "/api/v1/reviews?productId="+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := out["reviews"].([]any)
	require.Len(t, reviews, 1)
	reviewID := reviews[0].(map[string]any)["id"].(string)

	rec, out = app.do(t, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.0, out["product"].(map[string]any)["rating"])

	path := "/api/v1/reviews?productId=" + productID + "&id=" + reviewID
	rec, _ = app.do(t, http.MethodDelete, path, userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(t, http.MethodDelete, path, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out = app.do(t, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	product := out["product"].(map[string]any)
	assert.Equal(t, 0.0, product["rating"])
	assert.Equal(t, 0.0, product["numOfReviews"])
}

func TestOrderFulfilment(t *testing.T) {
	app := newTestApp()
	adminToken := app.registerAdmin(t)
	productID := app.createProduct(t, adminToken)
	userToken, _ := app.register(t, "Alice", "a@x.com")
	strangerToken, _ := app.register(t, "Mallory", "m@x.com")

	rec, out := app.do(t, http.MethodPost, "/api/v1/orders", userToken, orderBody(productID, 2))
	require.Equal(t, http.StatusCreated, rec.Code, out)
	order := out["order"].(map[string]any)
	assert.Equal(t, "Processing", order["orderStatus"])
	orderID := order["id"].(string)

	rec, out = app.do(t, http.MethodGet, "/api/v1/orders/"+orderID, userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	owner := out["order"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "Alice", owner["name"])
	assert.Equal(t, "a@x.com", owner["email"])

	rec, _ = app.do(t, http.MethodGet, "/api/v1/orders/"+orderID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, out = app.do(t, http.MethodGet, "/api/v1/orders/me", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["orders"], 1)

	rec, out = app.do(t, http.MethodGet, "/api/v1/admin/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 236.0, out["totalAmount"])

	rec, _ = app.do(t, http.MethodPut, "/api/v1/admin/orders/"+orderID, adminToken, map[string]any{"status": "Shipped"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out = app.do(t, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8.0, out["product"].(map[string]any)["stock"])

	rec, out = app.do(t, http.MethodPut, "/api/v1/admin/orders/"+orderID, adminToken, map[string]any{"status": "Delivered"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["order"].(map[string]any)["deliveredAt"])

	rec, _ = app.do(t, http.MethodPut, "/api/v1/admin/orders/"+orderID, adminToken, map[string]any{"status": "Shipped"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = app.do(t, http.MethodDelete, "/api/v1/admin/orders/"+orderID, adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
