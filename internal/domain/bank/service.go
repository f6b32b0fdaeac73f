package bank

import (
	"context"

	"github.com/rs/zerolog"

	"horizon/internal/shared/errs"
)

// Service exposes the bank-account read paths used by the UI.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, baseLogger *zerolog.Logger) *Service {
	log := baseLogger.With().Str("component", "bank_service").Logger()
	return &Service{repo: repo, log: log}
}

// GetBanks lists all linked bank accounts for a user. Zero matches is an
// empty slice, not an error.
func (s *Service) GetBanks(ctx context.Context, userID string) ([]*Account, error) {
	accounts, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*Account{}
	}
	return accounts, nil
}

// GetBank returns a single bank account by document id.
func (s *Service) GetBank(ctx context.Context, documentID string) (*Account, error) {
	return s.repo.GetByID(ctx, documentID)
}

// GetBankByAccountID returns the bank account with the given aggregator
// account id. The account id is expected to be unique; zero or several
// matches both resolve to not found rather than an arbitrary pick.
func (s *Service) GetBankByAccountID(ctx context.Context, accountID string) (*Account, error) {
	accounts, err := s.repo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(accounts) != 1 {
		s.log.Debug().Str("account_id", accountID).Int("matches", len(accounts)).
			Msg("bank lookup did not resolve to exactly one document")
		return nil, errs.ErrNotFound
	}
	return accounts[0], nil
}
