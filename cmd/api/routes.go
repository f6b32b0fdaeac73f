package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"horizon/internal/shared/config"
	"horizon/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler
// with middleware applied.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/sign-up", deps.AuthHandler.HandleSignUp)
	mux.HandleFunc("/api/auth/sign-in", deps.AuthHandler.HandleSignIn)
	mux.HandleFunc("/api/auth/sign-out", deps.AuthHandler.HandleSignOut)

	// Protected routes
	authMiddleware := middleware.Auth(deps.Sessions, deps.UserService)

	mux.Handle("/api/users/me", authMiddleware(http.HandlerFunc(deps.UserHandler.HandleMe)))
	mux.Handle("/api/plaid/link-token", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleCreateLinkToken)))
	mux.Handle("/api/plaid/exchange", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleExchange)))
	mux.Handle("/api/banks", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleListBanks)))
	mux.Handle("/api/banks/{id}", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleGetBank)))
	mux.Handle("/api/banks/by-account/{accountId}", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleGetBankByAccount)))
	mux.Handle("/api/transfers", authMiddleware(http.HandlerFunc(deps.TransferHandler.HandleCreateTransfer)))

	// Apply global middleware
	handler := middleware.Logging(log)(mux)
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}
	if cfg.IsProduction() {
		handler = middleware.HSTS(handler)
	}

	return handler
}

// HandleHealth reports process liveness.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
