package middleware

import (
	"context"
	"net/http"
	"strings"

	"digit-recognizer/internal/auth"
	"digit-recognizer/models"
)

type contextKey string

const claimsKey contextKey = "claims"

type Middleware struct {
	Tokens *auth.TokenIssuer
}

func NewMiddleware(tokens *auth.TokenIssuer) *Middleware {
	return &Middleware{Tokens: tokens}
}

// AuthMiddleware requires a valid bearer token and stores its claims on the
// request context.
func (m *Middleware) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeUnauthorized(w, "Missing authorization header")
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			writeUnauthorized(w, "Malformed authorization header")
			return
		}

		claims, err := m.Tokens.Parse(tokenStr)
		if err != nil {
			writeUnauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	WriteJSON(w, http.StatusUnauthorized, models.RecognitionError{Error: msg})
}
