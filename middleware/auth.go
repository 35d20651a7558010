package middleware

import (
	"context"
	"net/http"
	"strings"

	"nfl-playoff-pickem/interfaces"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/services"
)

// ClaimsContextKey is the key used to store admin claims in request context
type ClaimsContextKey string

const ClaimsKey ClaimsContextKey = "admin_claims"

// AuthMiddleware guards the admin routes with a bearer JWT
type AuthMiddleware struct {
	tokens interfaces.TokenValidator
	logger *logging.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokens interfaces.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		logger: logging.WithPrefix("Auth"),
	}
}

// RequireAdmin rejects requests without a valid admin token
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			m.logger.Warnw("rejected admin token", "path", r.URL.Path, "remote", r.RemoteAddr, "err", err)
			writeUnauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}

// GetClaimsFromContext retrieves the admin claims from request context
func GetClaimsFromContext(r *http.Request) *services.AdminClaims {
	if claims, ok := r.Context().Value(ClaimsKey).(*services.AdminClaims); ok {
		return claims
	}
	return nil
}

// ActorFromRequest returns the authenticated admin's name, or "" if none
func ActorFromRequest(r *http.Request) string {
	if claims := GetClaimsFromContext(r); claims != nil {
		return claims.Actor
	}
	return ""
}
