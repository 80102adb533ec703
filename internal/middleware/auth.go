package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"whisperbox/pkg/auth"
)

type contextKey struct{}

var accountIDKey = contextKey{}

// AccountID returns the authenticated account id resolved by RequireAuth.
func AccountID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok
}

// RequireAuth validates the Authorization bearer token and injects the
// resolved account id into the request context. Requests without a valid
// token get a 401 with the standard response envelope.
func RequireAuth(jwtAuth auth.JWTAuthenticator, accessSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				unauthorized(w, "invalid authorization header format")
				return
			}

			claims := &auth.SessionClaims{}
			if _, err := jwtAuth.ValidateTokenWithClaims(parts[1], accessSecret, claims); err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
