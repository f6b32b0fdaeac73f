package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// hosts maps a Plaid environment name to its API base URL.
var hosts = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// Client handles communication with the Plaid aggregator API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a Plaid client for the given environment. Unknown
// environments resolve to sandbox.
func NewClient(clientID, secret, env string) *Client {
	baseURL, ok := hosts[env]
	if !ok {
		baseURL = hosts["sandbox"]
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
	}
}

// LinkTokenCreateRequest describes the user a link token is issued for.
type LinkTokenCreateRequest struct {
	ClientUserID string
	ClientName   string
}

// LinkTokenCreateResponse is the issued one-time link token.
type LinkTokenCreateResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

// ExchangeResponse is the durable credential pair returned for a public
// token.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

// AccountsGetResponse is the account list for an access token, in the
// order the aggregator returns them.
type AccountsGetResponse struct {
	Accounts  []Account `json:"accounts"`
	RequestID string    `json:"request_id"`
}

// Account is aggregator account metadata.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// Balances is the balance snapshot attached to an account.
type Balances struct {
	Available    *float64 `json:"available"`
	Current      *float64 `json:"current"`
	CurrencyCode string   `json:"iso_currency_code"`
}

// ProcessorTokenCreateResponse is a processor token usable by the payment
// network to attach a funding source.
type ProcessorTokenCreateResponse struct {
	ProcessorToken string `json:"processor_token"`
	RequestID      string `json:"request_id"`
}

type errorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}

// LinkTokenCreate issues a one-time link token for the UI linking widget.
func (c *Client) LinkTokenCreate(ctx context.Context, req LinkTokenCreateRequest) (*LinkTokenCreateResponse, error) {
	body := map[string]any{
		"user":          map[string]string{"client_user_id": req.ClientUserID},
		"client_name":   req.ClientName,
		"products":      []string{"auth"},
		"language":      "en",
		"country_codes": []string{"US"},
	}

	var resp LinkTokenCreateResponse
	if err := c.post(ctx, "/link/token/create", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ItemPublicTokenExchange trades a one-time public token for a durable
// access token and item identifier.
func (c *Client) ItemPublicTokenExchange(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	body := map[string]any{"public_token": publicToken}

	var resp ExchangeResponse
	if err := c.post(ctx, "/item/public_token/exchange", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AccountsGet fetches the accounts available for an access token.
func (c *Client) AccountsGet(ctx context.Context, accessToken string) (*AccountsGetResponse, error) {
	body := map[string]any{"access_token": accessToken}

	var resp AccountsGetResponse
	if err := c.post(ctx, "/accounts/get", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProcessorTokenCreate issues a processor token for the given account,
// consumable by the named processor (e.g. "dwolla").
func (c *Client) ProcessorTokenCreate(ctx context.Context, accessToken, accountID, processor string) (*ProcessorTokenCreateResponse, error) {
	body := map[string]any{
		"access_token": accessToken,
		"account_id":   accountID,
		"processor":    processor,
	}

	var resp ProcessorTokenCreateResponse
	if err := c.post(ctx, "/processor/token/create", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("plaid error (status %d, %s/%s): %s",
			resp.StatusCode, errResp.ErrorType, errResp.ErrorCode, errResp.ErrorMessage)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
