package bank

import "context"

// Repository defines data access for bank-account documents.
type Repository interface {
	Create(ctx context.Context, params CreateAccountParams) (*Account, error)
	// ListByUserID returns all bank accounts for a user; zero matches is
	// an empty slice, not an error.
	ListByUserID(ctx context.Context, userID string) ([]*Account, error)
	// GetByID returns errs.ErrNotFound when the document is absent.
	GetByID(ctx context.Context, documentID string) (*Account, error)
	// ListByAccountID returns every document whose accountId matches;
	// callers decide how to treat ambiguity.
	ListByAccountID(ctx context.Context, accountID string) ([]*Account, error)
	// FindByUserAndItem returns the existing link of an aggregator item
	// for a user, or errs.ErrNotFound.
	FindByUserAndItem(ctx context.Context, userID, itemID string) (*Account, error)
	Update(ctx context.Context, documentID string, params UpdateAccountParams) (*Account, error)
}
