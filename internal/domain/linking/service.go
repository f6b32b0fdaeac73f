package linking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/dwolla"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/shared/errs"
)

// HomeCache is the read cache for the home view; the linking flow
// invalidates a user's entry after persisting a new bank account.
type HomeCache interface {
	Invalidate(userID string)
}

// Service orchestrates the account-linking flow: one-time public token in,
// persisted bank-account document out. The steps are strictly sequential
// with no retries; each failure propagates as a typed error.
type Service struct {
	aggregator plaid.ClientInterface
	payments   dwolla.ClientInterface
	banks      bank.Repository
	encryptor  *crypto.Encryptor
	cache      HomeCache
	log        zerolog.Logger
}

func NewService(
	aggregator plaid.ClientInterface,
	payments dwolla.ClientInterface,
	banks bank.Repository,
	encryptor *crypto.Encryptor,
	cache HomeCache,
	baseLogger *zerolog.Logger,
) *Service {
	log := baseLogger.With().Str("component", "linking_service").Logger()
	return &Service{
		aggregator: aggregator,
		payments:   payments,
		banks:      banks,
		encryptor:  encryptor,
		cache:      cache,
		log:        log,
	}
}

// CreateLinkToken issues a one-time link token for the UI linking widget.
func (s *Service) CreateLinkToken(ctx context.Context, u *user.User) (string, error) {
	resp, err := s.aggregator.LinkTokenCreate(ctx, plaid.LinkTokenCreateRequest{
		ClientUserID: u.ID,
		ClientName:   strings.TrimSpace(u.FirstName + " " + u.LastName),
	})
	if err != nil {
		return "", &errs.ExternalServiceError{Service: "plaid", Op: "link token create", Err: err}
	}
	return resp.LinkToken, nil
}

// ExchangePublicToken converts a one-time public token into a persisted
// bank-account document for the user and returns it.
//
// Relinking the same aggregator item returns the existing document
// instead of inserting a duplicate.
func (s *Service) ExchangePublicToken(ctx context.Context, publicToken string, u *user.User) (*bank.Account, error) {
	exchange, err := s.aggregator.ItemPublicTokenExchange(ctx, publicToken)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", u.ID).Msg("public token exchange failed")
		return nil, &errs.AggregatorExchangeError{Err: err}
	}

	accounts, err := s.aggregator.AccountsGet(ctx, exchange.AccessToken)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", u.ID).Msg("accounts fetch failed")
		return nil, &errs.AggregatorFetchError{Err: err}
	}
	if len(accounts.Accounts) == 0 {
		return nil, &errs.AggregatorFetchError{Err: errors.New("aggregator returned no accounts for item")}
	}

	// One item can expose several accounts; only the first in the
	// aggregator's order is linked.
	linked := accounts.Accounts[0]

	if existing, err := s.banks.FindByUserAndItem(ctx, u.ID, exchange.ItemID); err == nil {
		s.log.Info().Str("user_id", u.ID).Str("item_id", exchange.ItemID).
			Msg("item already linked, returning existing bank account")
		return existing, nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	shareableID, err := s.encryptor.Encrypt(linked.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive shareable id: %w", err)
	}

	created, err := s.banks.Create(ctx, bank.CreateAccountParams{
		UserID:           u.ID,
		BankID:           exchange.ItemID,
		AccountID:        linked.AccountID,
		AccessToken:      exchange.AccessToken,
		FundingSourceURL: "",
		ShareableID:      shareableID,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(u.ID)

	s.log.Info().Str("user_id", u.ID).Str("bank_account_id", created.ID).Msg("bank account linked")
	return created, nil
}

// AddFundingSource attaches a payment-network funding source to a linked
// bank account and persists the resulting URL on the document.
func (s *Service) AddFundingSource(ctx context.Context, dwollaCustomerURL string, acct *bank.Account, bankName string) (string, error) {
	processorToken, err := s.aggregator.ProcessorTokenCreate(ctx, acct.AccessToken, acct.AccountID, "dwolla")
	if err != nil {
		return "", &errs.ExternalServiceError{Service: "plaid", Op: "processor token create", Err: err}
	}

	authLinks, err := s.payments.CreateOnDemandAuthorization(ctx)
	if err != nil {
		return "", &errs.ExternalServiceError{Service: "dwolla", Op: "on-demand authorization", Err: err}
	}

	fundingSourceURL, err := s.payments.CreateFundingSource(ctx, dwolla.FundingSourceParams{
		CustomerID: customerIDFromURL(dwollaCustomerURL),
		Name:       bankName,
		PlaidToken: processorToken.ProcessorToken,
		Links:      authLinks,
	})
	if err != nil {
		return "", &errs.ExternalServiceError{Service: "dwolla", Op: "create funding source", Err: err}
	}

	if _, err := s.banks.Update(ctx, acct.ID, bank.UpdateAccountParams{FundingSourceURL: &fundingSourceURL}); err != nil {
		return "", err
	}

	s.cache.Invalidate(acct.UserID)
	return fundingSourceURL, nil
}

// customerIDFromURL extracts the customer identifier from its resource URL.
func customerIDFromURL(customerURL string) string {
	trimmed := strings.TrimRight(customerURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
