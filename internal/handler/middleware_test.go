package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendbook/internal/auth"
	"lendbook/internal/domain"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	user := &domain.User{ID: uuid.New(), Email: "owner@example.com"}

	var captured auth.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	wrapped := RequireAuth(jwtManager)(next)

	t.Run("valid token passes session through", func(t *testing.T) {
		token, err := jwtManager.Generate(user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/members", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()

		wrapped.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, user.ID, captured.UserID)
		assert.Equal(t, user.Email, captured.Email)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/members", nil)
		recorder := httptest.NewRecorder()

		wrapped.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/members", nil)
		req.Header.Set("Authorization", "Token abcdef")
		recorder := httptest.NewRecorder()

		wrapped.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/members", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		recorder := httptest.NewRecorder()

		wrapped.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestSessionFrom_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	sess := SessionFrom(req.Context())
	assert.False(t, sess.Valid())
}
