package middleware

import (
	"context"
	"net/http"
	"strings"

	"attire-store/internal/auth"
	"attire-store/internal/model"

	"github.com/rs/zerolog"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// ClaimsFromContext returns the authenticated claims set by Authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// Authenticate validates the Bearer token and injects its claims into the
// request context.
func Authenticate(tokens *auth.TokenProvider, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorised(w, "missing authorization header")
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				unauthorised(w, "authorization header must be 'Bearer <token>'")
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid token")
				unauthorised(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose claims do not carry the admin role.
// It must run after Authenticate.
func RequireAdmin(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				unauthorised(w, "authentication required")
				return
			}

			if claims.Role != model.RoleAdmin {
				logger.Warn().
					Str("user_id", claims.UserID.String()).
					Str("path", r.URL.Path).
					Msg("admin access denied")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "forbidden"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorised(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorised: ` + message + `"}`))
}
