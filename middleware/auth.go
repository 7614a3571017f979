package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ecommerce-backend/models"
	"ecommerce-backend/utils"

	"github.com/gorilla/mux"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// TokenCookie is the cookie the session token travels in.
const TokenCookie = "token"

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticate verifies the session token and attaches the user to the context.
// The token is read from the cookie first, then from an Authorization: Bearer
// header.
func Authenticate(auth Authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				utils.WriteError(w, utils.Unauthorized("Please login to access this resource."))
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				utils.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// AuthorizeRoles rejects callers whose role is not in roles. It must run after
// Authenticate.
func AuthorizeRoles(roles ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				utils.WriteError(w, utils.Unauthorized("Please login to access this resource."))
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.WriteError(w, utils.Forbidden(fmt.Sprintf("The requested resource is not accessible by the role: %s.", user.Role)))
		})
	}
}

// AdminMiddleware ensures that the user has admin privileges
func AdminMiddleware(next http.Handler) http.Handler {
	return AuthorizeRoles(models.RoleAdmin)(next)
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
