package user

import "context"

// Repository defines data access for user documents.
type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	// GetByEmail returns errs.ErrNotFound when no document matches.
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, params UpdateUserParams) (*User, error)
}

// IdentityStore defines the identity-provider operations the provisioning
// flow needs: account registration and credential-based session creation.
type IdentityStore interface {
	// CreateAccount registers an identity account and returns its store-
	// generated identifier.
	CreateAccount(ctx context.Context, email, password, name string) (accountID string, err error)
	// CreateSession authenticates and returns the opaque session secret
	// plus the account snapshot it belongs to.
	CreateSession(ctx context.Context, email, password string) (secret string, err error)
	// GetAccountName returns the display name and email of the account a
	// session secret belongs to.
	GetAccountName(ctx context.Context, sessionSecret string) (name, email string, err error)
}
