package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"horizon/internal/domain/user"
	"horizon/internal/shared/session"
)

// AuthHandler serves sign-up, sign-in and sign-out.
type AuthHandler struct {
	users    *user.Service
	sessions *session.Manager
	log      zerolog.Logger
}

func NewAuthHandler(users *user.Service, sessions *session.Manager, baseLogger *zerolog.Logger) *AuthHandler {
	log := baseLogger.With().Str("component", "auth_handler").Logger()
	return &AuthHandler{users: users, sessions: sessions, log: log}
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignUp creates the identity account, the user document and a
// session, and sets the session cookie.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req user.SignUpParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "Email, password, first name and last name are required")
		return
	}

	created, secret, err := h.users.SignUp(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("email", req.Email).Msg("sign-up failed")
		writeError(w, http.StatusBadGateway, "Failed to create account")
		return
	}

	h.sessions.Establish(w, secret)
	writeJSON(w, http.StatusCreated, created)
}

// HandleSignIn authenticates against the identity store and sets the
// session cookie.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, secret, err := h.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Debug().Err(err).Str("email", req.Email).Msg("sign-in rejected")
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.sessions.Establish(w, secret)
	writeJSON(w, http.StatusOK, u)
}

// HandleSignOut clears the cookie and invalidates the session.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.sessions.Clear(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}
