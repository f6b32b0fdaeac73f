package plaid

import (
	"context"
)

// ClientInterface defines the methods required from the aggregator client
type ClientInterface interface {
	LinkTokenCreate(ctx context.Context, req LinkTokenCreateRequest) (*LinkTokenCreateResponse, error)
	ItemPublicTokenExchange(ctx context.Context, publicToken string) (*ExchangeResponse, error)
	AccountsGet(ctx context.Context, accessToken string) (*AccountsGetResponse, error)
	ProcessorTokenCreate(ctx context.Context, accessToken, accountID, processor string) (*ProcessorTokenCreateResponse, error)
}
