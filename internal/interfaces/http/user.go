package http

import (
	"net/http"

	"horizon/internal/shared/middleware"
)

// UserHandler serves the authenticated user's own document.
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// HandleMe returns the user resolved by the auth middleware.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u := middleware.UserFrom(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	writeJSON(w, http.StatusOK, u)
}
