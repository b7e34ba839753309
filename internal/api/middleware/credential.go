package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const credentialContextKey contextKey = "credential"

// TokenCookie is the cookie consulted when no Authorization header is sent
const TokenCookie = "token"

// Credential stores the caller's bearer credential, if any, in the request context.
// It never rejects a request: whether a credential is required is decided per operation.
func Credential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := extractToken(r); token != "" {
			r = r.WithContext(context.WithValue(r.Context(), credentialContextKey, token))
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	// Fall back to cookie
	cookie, err := r.Cookie(TokenCookie)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetCredential returns the bearer credential from the request context, or ""
func GetCredential(ctx context.Context) string {
	token, _ := ctx.Value(credentialContextKey).(string)
	return token
}
