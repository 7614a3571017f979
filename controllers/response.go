package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ecommerce-backend/config"
	"ecommerce-backend/middleware"
	"ecommerce-backend/models"
	"ecommerce-backend/services"
	"ecommerce-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const requestTimeout = 5 * time.Second

// Presenter shapes documents and session cookies for responses.
type Presenter struct {
	redaction config.Redaction
	cookieTTL time.Duration
}

// NewPresenter creates a new Presenter
func NewPresenter(redaction config.Redaction, cookieTTL time.Duration) *Presenter {
	return &Presenter{redaction: redaction, cookieTTL: cookieTTL}
}

// respond writes {success: true} merged with fields.
func respond(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	utils.WriteJSON(w, status, body)
}

// decode reads a JSON request body into v. Failures are left to
// utils.Translate.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", utils.ErrInvalidBody, err)
	}
	return nil
}

func pathID(r *http.Request, key string) (primitive.ObjectID, error) {
	return services.ParseID(mux.Vars(r)[key])
}

// caller returns the user Authenticate attached to the request.
func caller(r *http.Request) (*models.User, error) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		return nil, utils.Unauthorized("Please login to access this resource.")
	}
	return user, nil
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// User renders one user without the configured user fields.
func (p *Presenter) User(u *models.User) (any, error) {
	return redact(u, p.redaction.User)
}

func (p *Presenter) Users(users []models.User) (any, error) {
	return redact(users, p.redaction.User)
}

func (p *Presenter) Product(product *models.Product) (any, error) {
	return redact(product, p.redaction.Product)
}

func (p *Presenter) Products(products []models.Product) (any, error) {
	return redact(products, p.redaction.Product)
}

func (p *Presenter) Order(order any) (any, error) {
	return redact(order, p.redaction.Order)
}

func (p *Presenter) Orders(orders []models.Order) (any, error) {
	return redact(orders, p.redaction.Order)
}

// SetToken stores the session token in an HTTP-only cookie.
func (p *Presenter) SetToken(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(p.cookieTTL),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearToken expires the session cookie immediately.
func (p *Presenter) ClearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// redact round-trips v through JSON and drops fields from every top-level
// object, or from every element when v is a list.
func redact(v any, fields []string) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	if len(fields) == 0 {
		return json.RawMessage(raw), nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	switch d := doc.(type) {
	case map[string]any:
		dropFields(d, fields)
	case []any:
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				dropFields(m, fields)
			}
		}
	}
	return doc, nil
}

func dropFields(m map[string]any, fields []string) {
	for _, f := range fields {
		delete(m, f)
	}
}

// resetURLPrefix builds the public reset link prefix from the incoming request.
func resetURLPrefix(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s/api/v1/password/reset/", scheme, r.Host)
}
