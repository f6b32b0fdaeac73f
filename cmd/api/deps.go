package main

import (
	"time"

	"github.com/rs/zerolog"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/linking"
	"horizon/internal/domain/transfer"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/appwrite"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/dwolla"
	"horizon/internal/infrastructure/plaid"
	httphandlers "horizon/internal/interfaces/http"
	"horizon/internal/shared/cache"
	"horizon/internal/shared/config"
	"horizon/internal/shared/session"
)

const homeCacheTTL = 30 * time.Second

// Dependencies holds all initialized application components.
type Dependencies struct {
	// Handlers
	AuthHandler     *httphandlers.AuthHandler
	UserHandler     *httphandlers.UserHandler
	BankHandler     *httphandlers.BankHandler
	TransferHandler *httphandlers.TransferHandler

	// Session
	Sessions *session.Manager

	// Repositories (for the auth middleware)
	UserService *user.Service
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	appwriteClient := appwrite.NewClient(cfg.Appwrite.Endpoint, cfg.Appwrite.ProjectID, cfg.Appwrite.APIKey)
	identityStore := appwrite.NewIdentityStore(appwriteClient)
	userRepo := appwrite.NewUserRepository(appwriteClient, cfg.Appwrite.DatabaseID, cfg.Appwrite.UserCollectionID)
	bankRepo := appwrite.NewBankRepository(appwriteClient, cfg.Appwrite.DatabaseID, cfg.Appwrite.BankCollectionID)

	plaidClient := plaid.NewClient(cfg.Plaid.ClientID, cfg.Plaid.Secret, cfg.Plaid.Env)

	dwollaEnv, fellBack := cfg.ResolveDwollaEnvironment()
	if fellBack {
		log.Warn().Str("configured", cfg.Dwolla.Env).
			Msg("payment network environment not recognized, falling back to sandbox")
	}
	dwollaClient := dwolla.NewClient(cfg.Dwolla.Key, cfg.Dwolla.Secret, dwollaEnv)

	homeCache := cache.New(homeCacheTTL)
	sessions := session.NewManager(identityStore, cfg.Session.CookieName, cfg.IsProduction(), &log)

	userService := user.NewService(identityStore, userRepo, &log)
	bankService := bank.NewService(bankRepo, &log)
	linkingService := linking.NewService(plaidClient, dwollaClient, bankRepo, encryptor, homeCache, &log)
	transferService := transfer.NewService(dwollaClient, bankService, userRepo, linkingService, encryptor, &log)

	return &Dependencies{
		AuthHandler:     httphandlers.NewAuthHandler(userService, sessions, &log),
		UserHandler:     httphandlers.NewUserHandler(),
		BankHandler:     httphandlers.NewBankHandler(linkingService, bankService, homeCache, &log),
		TransferHandler: httphandlers.NewTransferHandler(transferService, &log),
		Sessions:        sessions,
		UserService:     userService,
	}, nil
}
