package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HillyAttic/cadence-api/internal/api/shared"
	"github.com/HillyAttic/cadence-api/internal/platform/logger"
	"github.com/HillyAttic/cadence-api/internal/service/auth"
)

// AuthMiddleware authenticates requests by validating the bearer token
// and placing the viewer's identity into the request context. Identity
// resolution itself belongs to the external identity provider; this
// middleware only trusts its signatures.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given JWT service.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	if jwtService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jwtService cannot be nil for AuthMiddleware")
	}
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate validates the Authorization header and stores the viewer
// ID and privileged flag in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header must be a bearer token")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), tokenString)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token expired"
			}
			log.Debug("token validation failed", "error", err.Error())
			shared.RespondWithError(w, r, http.StatusUnauthorized, message)
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, claims.UserID)
		ctx = context.WithValue(ctx, shared.PrivilegedContextKey, claims.Privileged)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
