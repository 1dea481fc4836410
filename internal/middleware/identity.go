package middleware

import (
	"context"
	"net/http"
	"strings"

	"stylecore/internal/model"

	"github.com/rs/zerolog"
)

// UserIDHeader carries the caller's user id. It is set by the authentication
// proxy in front of this service.
const UserIDHeader = "X-User-ID"

type contextKey int

const (
	userIDKey contextKey = iota
	ownerKey
)

// RequireUser rejects requests without a caller identity and stores the id in
// the request context.
func RequireUser(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing user identity")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

// IdentifyOwner marks requests carrying the owner's API key without
// rejecting the others.
func IdentifyOwner(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyMatches(r.Header.Get("X-API-Key"), apiKey) {
				r = r.WithContext(withOwner(r.Context()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserID returns the caller identity stored by RequireUser.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// IsOwner reports whether the request was authenticated with the owner's key.
func IsOwner(ctx context.Context) bool {
	owner, _ := ctx.Value(ownerKey).(bool)
	return owner
}

func withOwner(ctx context.Context) context.Context {
	return context.WithValue(ctx, ownerKey, true)
}
