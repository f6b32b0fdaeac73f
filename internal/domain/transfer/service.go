package transfer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/linking"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/dwolla"
	"horizon/internal/shared/errs"
)

// ErrNoFundingSource is returned when the receiving bank account has no
// payment-network funding source attached yet.
var ErrNoFundingSource = errors.New("receiving bank account has no funding source")

// Params describes a requested transfer. ReceiverShareableID is the
// encrypted account identifier shared by the receiving user.
type Params struct {
	SenderBankID        string `json:"senderBankId"`
	ReceiverShareableID string `json:"receiverShareableId"`
	Amount              string `json:"amount"`
}

// Service moves money between two linked bank accounts through the
// payment network.
type Service struct {
	payments  dwolla.ClientInterface
	banks     *bank.Service
	users     user.Repository
	linking   *linking.Service
	encryptor *crypto.Encryptor
	log       zerolog.Logger
}

func NewService(
	payments dwolla.ClientInterface,
	banks *bank.Service,
	users user.Repository,
	linkingSvc *linking.Service,
	encryptor *crypto.Encryptor,
	baseLogger *zerolog.Logger,
) *Service {
	log := baseLogger.With().Str("component", "transfer_service").Logger()
	return &Service{
		payments:  payments,
		banks:     banks,
		users:     users,
		linking:   linkingSvc,
		encryptor: encryptor,
		log:       log,
	}
}

// Transfer resolves both funding sources and initiates the payment. The
// sender's customer and funding source are created on demand; the
// receiver must already have one.
func (s *Service) Transfer(ctx context.Context, sender *user.User, params Params) (string, error) {
	receiverAccountID, err := s.encryptor.Decrypt(params.ReceiverShareableID)
	if err != nil {
		return "", errs.ErrNotFound
	}

	receiverBank, err := s.banks.GetBankByAccountID(ctx, receiverAccountID)
	if err != nil {
		return "", err
	}
	if receiverBank.FundingSourceURL == "" {
		return "", ErrNoFundingSource
	}

	senderBank, err := s.banks.GetBank(ctx, params.SenderBankID)
	if err != nil {
		return "", err
	}

	sourceURL := senderBank.FundingSourceURL
	if sourceURL == "" {
		customerURL, err := s.ensureCustomer(ctx, sender)
		if err != nil {
			return "", err
		}
		sourceURL, err = s.linking.AddFundingSource(ctx, customerURL, senderBank, senderBank.AccountID)
		if err != nil {
			return "", err
		}
	}

	transferURL, err := s.payments.CreateTransfer(ctx, dwolla.TransferParams{
		SourceFundingSourceURL:      sourceURL,
		DestinationFundingSourceURL: receiverBank.FundingSourceURL,
		Amount:                      params.Amount,
	})
	if err != nil {
		return "", &errs.ExternalServiceError{Service: "dwolla", Op: "create transfer", Err: err}
	}

	s.log.Info().Str("sender_id", sender.ID).Str("transfer_url", transferURL).Msg("transfer created")
	return transferURL, nil
}

// ensureCustomer returns the sender's payment-network customer URL,
// creating the customer and persisting the URL on first use.
func (s *Service) ensureCustomer(ctx context.Context, u *user.User) (string, error) {
	if u.DwollaCustomerURL != "" {
		return u.DwollaCustomerURL, nil
	}

	customerURL, err := s.payments.CreateCustomer(ctx, dwolla.NewCustomerParams{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Type:        "personal",
		Address1:    u.Address1,
		City:        u.City,
		State:       u.State,
		PostalCode:  u.PostalCode,
		DateOfBirth: u.DateOfBirth,
		SSN:         u.SSN,
	})
	if err != nil {
		return "", &errs.ExternalServiceError{Service: "dwolla", Op: "create customer", Err: err}
	}

	if _, err := s.users.Update(ctx, u.ID, user.UpdateUserParams{DwollaCustomerURL: &customerURL}); err != nil {
		return "", err
	}

	u.DwollaCustomerURL = customerURL
	return customerURL, nil
}
