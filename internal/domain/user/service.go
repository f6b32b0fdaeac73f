package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"horizon/internal/shared/auth"
	"horizon/internal/shared/errs"
)

// Service implements user provisioning: sign-up, sign-in and the lazy
// back-fill of user documents for identity accounts that predate them.
type Service struct {
	identity IdentityStore
	repo     Repository
	log      zerolog.Logger
}

func NewService(identity IdentityStore, repo Repository, baseLogger *zerolog.Logger) *Service {
	log := baseLogger.With().Str("component", "user_service").Logger()
	return &Service{identity: identity, repo: repo, log: log}
}

// SignUp creates an identity account, the matching user document and a
// session. Partial creation is not rolled back: an account without a
// document is repaired by the sign-in back-fill.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*User, string, error) {
	name := strings.TrimSpace(params.FirstName + " " + params.LastName)

	accountID, err := s.identity.CreateAccount(ctx, params.Email, params.Password, name)
	if err != nil {
		return nil, "", &errs.ExternalServiceError{Service: "appwrite", Op: "create account", Err: err}
	}
	s.log.Info().Str("account_id", accountID).Msg("identity account created")

	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, CreateUserParams{
		Email:        params.Email,
		Username:     usernameFromEmail(params.Email),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Address1:     params.Address1,
		City:         params.City,
		State:        params.State,
		PostalCode:   params.PostalCode,
		DateOfBirth:  params.DateOfBirth,
		SSN:          params.SSN,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, "", err
	}

	secret, err := s.identity.CreateSession(ctx, params.Email, params.Password)
	if err != nil {
		return nil, "", &errs.ExternalServiceError{Service: "appwrite", Op: "create session", Err: err}
	}

	s.log.Info().Str("user_id", created.ID).Msg("user signed up")
	return created, secret, nil
}

// SignIn authenticates against the identity store and resolves the user
// document, creating it when an older account has none.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, string, error) {
	secret, err := s.identity.CreateSession(ctx, email, password)
	if err != nil {
		return nil, "", &errs.ExternalServiceError{Service: "appwrite", Op: "create session", Err: err}
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		u, err = s.backfillUser(ctx, secret, email, password)
	}
	if err != nil {
		return nil, "", err
	}

	return u, secret, nil
}

// backfillUser creates a user document for an identity account that
// predates document creation.
func (s *Service) backfillUser(ctx context.Context, secret, email, password string) (*User, error) {
	name, accountEmail, err := s.identity.GetAccountName(ctx, secret)
	if err != nil {
		return nil, &errs.ExternalServiceError{Service: "appwrite", Op: "get account", Err: err}
	}
	if accountEmail != "" {
		email = accountEmail
	}

	firstName, lastName := splitName(name)

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.log.Info().Str("email", email).Msg("back-filling missing user document")

	return s.repo.Create(ctx, CreateUserParams{
		Email:        email,
		Username:     usernameFromEmail(email),
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
	})
}

// GetByEmail resolves a user document for an authenticated identity.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
