package dwolla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

var hosts = map[string]string{
	"sandbox":    "https://api-sandbox.dwolla.com",
	"production": "https://api.dwolla.com",
}

// Client handles communication with the Dwolla payment-network API. It is
// constructed explicitly and injected; there is no process-wide instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	secret     string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a Dwolla client for the given environment. env must
// be "sandbox" or "production"; callers resolve fallback before this.
func NewClient(key, secret, env string) *Client {
	baseURL, ok := hosts[env]
	if !ok {
		baseURL = hosts["sandbox"]
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		key:        key,
		secret:     secret,
	}
}

// NewCustomerParams identifies a person on the payment network.
type NewCustomerParams struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// FundingSourceParams attaches a verified bank account to a customer via
// an aggregator processor token.
type FundingSourceParams struct {
	CustomerID string
	Name       string
	PlaidToken string
	Links      map[string]Link
}

// TransferParams moves money between two funding source URLs.
type TransferParams struct {
	SourceFundingSourceURL      string
	DestinationFundingSourceURL string
	Amount                      string
}

// Link is a HAL-style resource reference.
type Link struct {
	Href string `json:"href"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type authorizationResponse struct {
	Links map[string]Link `json:"_links"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateCustomer creates a payment-network customer and returns its
// resource URL.
func (c *Client) CreateCustomer(ctx context.Context, params NewCustomerParams) (string, error) {
	if params.Type == "" {
		params.Type = "personal"
	}
	return c.postForLocation(ctx, "/customers", params, "")
}

// CreateOnDemandAuthorization obtains the authorization links required to
// attach a funding source.
func (c *Client) CreateOnDemandAuthorization(ctx context.Context) (map[string]Link, error) {
	var resp authorizationResponse
	if err := c.post(ctx, "/on-demand-authorizations", nil, "", &resp); err != nil {
		return nil, fmt.Errorf("failed to create on-demand authorization: %w", err)
	}
	return resp.Links, nil
}

// CreateFundingSource attaches a funding source to a customer and returns
// its resource URL.
func (c *Client) CreateFundingSource(ctx context.Context, params FundingSourceParams) (string, error) {
	body := map[string]any{
		"name":       params.Name,
		"plaidToken": params.PlaidToken,
	}
	if len(params.Links) > 0 {
		body["_links"] = params.Links
	}

	path := fmt.Sprintf("/customers/%s/funding-sources", params.CustomerID)
	location, err := c.postForLocation(ctx, path, body, "")
	if err != nil {
		return "", fmt.Errorf("failed to create funding source: %w", err)
	}
	return location, nil
}

// CreateTransfer initiates a transfer between two funding sources and
// returns the transfer resource URL. Each call carries a fresh
// idempotency key so a retried request cannot move money twice.
func (c *Client) CreateTransfer(ctx context.Context, params TransferParams) (string, error) {
	body := map[string]any{
		"_links": map[string]Link{
			"source":      {Href: params.SourceFundingSourceURL},
			"destination": {Href: params.DestinationFundingSourceURL},
		},
		"amount": map[string]string{
			"currency": "USD",
			"value":    params.Amount,
		},
	}

	location, err := c.postForLocation(ctx, "/transfers", body, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("failed to create transfer: %w", err)
	}
	return location, nil
}

// token returns a valid OAuth access token, fetching a new one when the
// cached token is missing or about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}

	c.accessToken = tr.AccessToken
	// Refresh one minute early so in-flight requests never race expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}

func (c *Client) post(ctx context.Context, path string, body any, idempotencyKey string, out any) error {
	resp, err := c.doPost(ctx, path, body, idempotencyKey)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) postForLocation(ctx context.Context, path string, body any, idempotencyKey string) (string, error) {
	resp, err := c.doPost(ctx, path, body, idempotencyKey)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", decodeError(resp.StatusCode, respBody)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("response missing Location header (status %d)", resp.StatusCode)
	}
	return location, nil
}

func (c *Client) doPost(ctx context.Context, path string, body any, idempotencyKey string) (*http.Response, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Accept", "application/vnd.dwolla.v1.hal+json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

func decodeError(status int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("request failed with status %d: %s", status, string(body))
	}
	return fmt.Errorf("dwolla error (status %d, %s): %s", status, errResp.Code, errResp.Message)
}
