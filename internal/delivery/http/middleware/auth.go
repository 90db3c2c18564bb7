package middleware

import (
	"context"
	"net/http"
	"strings"

	h "eventsnap/internal/delivery/http/helpers"
	"eventsnap/internal/domain"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	isRootKey contextKey = "isRoot"
)

// SetIdentity returns a context carrying the authenticated user id and root
// flag. Used by auth middleware and by tests.
func SetIdentity(ctx context.Context, userID string, isRoot bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, isRootKey, isRoot)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// IsRootFromContext reports whether the authenticated user carries the root role.
func IsRootFromContext(ctx context.Context) bool {
	isRoot, _ := ctx.Value(isRootKey).(bool)
	return isRoot
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// identity in the request context. If the token is missing or invalid, it
// responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			userID, isRoot, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetIdentity(r.Context(), userID, isRoot))
			next(w, r)
		}
	}
}

// RequireRoot wraps a handler that only root users may call. It must run
// inside RequireAuth.
func RequireRoot(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !IsRootFromContext(r.Context()) {
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "root role required")
			return
		}
		next(w, r)
	}
}
