package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/frckbrice/auth-service/internal/models"
	pkghttp "github.com/frckbrice/auth-service/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing access claims in context
	UserContextKey contextKey = "user"
)

// UserFetcher loads the current user record for guard checks.
type UserFetcher interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Middleware extracts and verifies the bearer access token and injects its
// claims into the request context. Missing or malformed credentials are
// unauthorized (401); a token that is present but expired or forged is
// forbidden (403).
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing credentials")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				pkghttp.WriteUnauthorized(w, "missing credentials")
				return
			}

			claims, err := tm.ValidateAccessToken(parts[1])
			if err != nil {
				switch {
				case errors.Is(err, ErrTokenExpired):
					pkghttp.WriteError(w, http.StatusForbidden, "token_expired", "not authorized")
				case errors.Is(err, ErrTokenSignatureInvalid):
					pkghttp.WriteError(w, http.StatusForbidden, "invalid_signature", "not authorized")
				default:
					pkghttp.WriteError(w, http.StatusForbidden, "invalid_token", "not authorized")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces role-based access. The current user record is
// re-fetched so role changes apply immediately, even against a still-valid
// access token.
func RequireRole(users UserFetcher, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "missing credentials")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "missing credentials")
					return
				}
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			if !user.HasRole(role) {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireNotBlocked rejects requests from blocked accounts. Block state is
// read from the user record, not the token snapshot, so an admin block
// takes effect before the token expires.
func RequireNotBlocked(users UserFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "missing credentials")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "missing credentials")
					return
				}
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			if user.IsBlocked {
				pkghttp.WriteForbidden(w, "account is blocked")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts access claims from the request context
func GetUserFromContext(r *http.Request) *AccessClaims {
	claims, ok := r.Context().Value(UserContextKey).(*AccessClaims)
	if !ok {
		return nil
	}
	return claims
}
