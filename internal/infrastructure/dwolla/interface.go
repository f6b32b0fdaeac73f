package dwolla

import (
	"context"
)

// ClientInterface defines the methods required from the payment-network client
type ClientInterface interface {
	CreateCustomer(ctx context.Context, params NewCustomerParams) (string, error)
	CreateOnDemandAuthorization(ctx context.Context) (map[string]Link, error)
	CreateFundingSource(ctx context.Context, params FundingSourceParams) (string, error)
	CreateTransfer(ctx context.Context, params TransferParams) (string, error)
}
