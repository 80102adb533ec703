package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisperbox/internal/middleware"
	"whisperbox/pkg/auth"
)

const (
	testIssuer = "whisperbox-test"
	testSecret = "middleware-test-secret"
)

func newProtectedHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var seenID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.AccountID(r.Context())
		require.True(t, ok)
		seenID = id
		w.WriteHeader(http.StatusNoContent)
	})

	jwtAuth := auth.NewJWTAuthenticator(testIssuer, testIssuer)

	return middleware.RequireAuth(jwtAuth, testSecret)(next), &seenID
}

func signToken(t *testing.T, userID, secret string, expiresAt time.Time) string {
	t.Helper()

	jwtAuth := auth.NewJWTAuthenticator(testIssuer, testIssuer)
	token, err := jwtAuth.GenerateToken(&auth.SessionClaims{
		UserID:    userID,
		SessionID: "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testIssuer},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}, secret)
	require.NoError(t, err)

	return token
}

func TestRequireAuth(t *testing.T) {
	t.Run("valid token passes account id through", func(t *testing.T) {
		h, seenID := newProtectedHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "acct-7", testSecret, time.Now().Add(time.Minute)))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "acct-7", *seenID)
	})

	t.Run("missing header", func(t *testing.T) {
		h, _ := newProtectedHandler(t)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		h, _ := newProtectedHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		h, _ := newProtectedHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "acct-7", testSecret, time.Now().Add(-time.Minute)))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		h, _ := newProtectedHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "acct-7", "other-secret", time.Now().Add(time.Minute)))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("account id absent without middleware", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		_, ok := middleware.AccountID(req.Context())
		assert.False(t, ok)
	})
}
