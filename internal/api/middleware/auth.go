package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/syslvlup/syslvlup/internal/api/apierr"
	"github.com/syslvlup/syslvlup/internal/services/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
		})
	}
}

// OptionalAuth attaches claims when a bearer token is sent. A token that is
// sent but fails verification is rejected rather than ignored.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token != "" {
				claims, err := verifier.Verify(token)
				if err != nil {
					apierr.WriteError(w, err)
					return
				}
				r = r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// GetClaims returns the verified token claims from the request context
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// MustGetClaims returns the verified claims or panics
func MustGetClaims(ctx context.Context) *auth.Claims {
	claims := GetClaims(ctx)
	if claims == nil {
		panic("no claims in context - auth middleware not applied?")
	}
	return claims
}
