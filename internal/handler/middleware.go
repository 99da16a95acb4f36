package handler

import (
	"context"
	"net/http"
	"strings"

	"lendbook/internal/auth"
	"lendbook/pkg/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionKey contextKey = "session"

// SessionFrom extracts the authenticated session from the request context.
// Returns a zero session if the request was not authenticated.
func SessionFrom(ctx context.Context) auth.Session {
	sess, _ := ctx.Value(sessionKey).(auth.Session)
	return sess
}

// RequireAuth validates the bearer token and stores the session it encodes
// in the request context. Requests without a valid token are rejected.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			sess, err := jwtManager.Validate(parts[1])
			if err != nil {
				response.Unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
