package middleware

import (
	"context"
	"net/http"

	"horizon/internal/domain/user"
	"horizon/internal/shared/session"
)

type ContextKey string

const (
	// UserKey holds the resolved *user.User for the request.
	UserKey ContextKey = "user"
)

// UserLoader resolves an authenticated identity to its user document.
type UserLoader interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Auth resolves the session cookie to a user document and rejects the
// request when no valid session exists.
func Auth(sessions *session.Manager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := sessions.Current(r.Context(), r)
			if err != nil || identity == nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			u, err := users.GetByEmail(r.Context(), identity.Email)
			if err != nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user stored by Auth, or nil.
func UserFrom(ctx context.Context) *user.User {
	u, _ := ctx.Value(UserKey).(*user.User)
	return u
}
