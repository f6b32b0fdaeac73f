package session

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// Identity is the account a session secret resolves to.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Store resolves and invalidates sessions in the identity store.
type Store interface {
	Get(ctx context.Context, secret string) (*Identity, error)
	Delete(ctx context.Context, secret string) error
}

// Manager owns the session cookie: it is always HTTP-only and
// same-site-strict, and marked secure in production.
type Manager struct {
	store      Store
	cookieName string
	secure     bool
	log        zerolog.Logger
}

func NewManager(store Store, cookieName string, production bool, baseLogger *zerolog.Logger) *Manager {
	log := baseLogger.With().Str("component", "session_manager").Logger()
	return &Manager{
		store:      store,
		cookieName: cookieName,
		secure:     production,
		log:        log,
	}
}

// Establish stores the session secret in the cookie.
func (m *Manager) Establish(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   m.secure,
	})
}

// Clear deletes the cookie and invalidates the session server-side. A
// store failure is swallowed: the user is treated as already logged out.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   m.secure,
		MaxAge:   -1,
	})

	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	if err := m.store.Delete(ctx, cookie.Value); err != nil {
		m.log.Warn().Err(err).Msg("failed to invalidate session server-side")
	}
}

// Current resolves the request's session cookie to an identity. A
// missing or invalid session returns (nil, nil), never an error.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	identity, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		m.log.Debug().Err(err).Msg("session did not resolve to an identity")
		return nil, nil
	}
	return identity, nil
}

// Secret returns the raw session secret from the request cookie, or ""
// when absent.
func (m *Manager) Secret(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
