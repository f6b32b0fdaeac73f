package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// UniqueID asks the store to generate the document identifier server-side.
const UniqueID = "unique()"

// Client communicates with the hosted Appwrite API. An admin client
// carries the project API key; WithSession derives a client scoped to a
// user session secret instead.
type Client struct {
	httpClient *http.Client
	endpoint   string
	projectID  string
	apiKey     string
	session    string
}

// NewClient creates an admin client authenticated with the project API key.
func NewClient(endpoint, projectID, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   endpoint,
		projectID:  projectID,
		apiKey:     apiKey,
	}
}

// WithSession returns a copy of the client scoped to a user session
// secret. The API key is dropped so calls run with the session's
// permissions only.
func (c *Client) WithSession(secret string) *Client {
	return &Client{
		httpClient: c.httpClient,
		endpoint:   c.endpoint,
		projectID:  c.projectID,
		session:    secret,
	}
}

// Account is an identity-store account.
type Account struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is an identity-store session. Secret is only populated on
// creation and becomes the session cookie value.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
	Expire string `json:"expire"`
}

// DocumentList is a page of documents from a collection. Documents are
// kept raw so callers can unmarshal into their own models.
type DocumentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

// CreateAccount registers a new identity-store account.
func (c *Client) CreateAccount(ctx context.Context, userID, email, password, name string) (*Account, error) {
	body := map[string]string{
		"userId":   userID,
		"email":    email,
		"password": password,
		"name":     name,
	}

	var account Account
	if err := c.do(ctx, http.MethodPost, "/account", body, &account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &account, nil
}

// CreateEmailSession authenticates with email and password and returns a
// session whose secret identifies the user on later calls.
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/account/sessions/email", body, &session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// GetAccount returns the account the client's session belongs to.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/account", nil, &account); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// DeleteCurrentSession invalidates the session the client is scoped to.
func (c *Client) DeleteCurrentSession(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/account/sessions/current", nil, nil); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CreateDocument inserts a document into a collection. Pass UniqueID as
// documentID to let the store generate the identifier.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}

	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)

	var doc json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, body, &doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

// UpdateDocument patches fields on an existing document.
func (c *Client) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	body := map[string]any{"data": data}
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)

	var doc json.RawMessage
	if err := c.do(ctx, http.MethodPatch, path, body, &doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns documents matching the given queries. Use Equal
// to build equality filters.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*DocumentList, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	if len(queries) > 0 {
		params := url.Values{}
		for _, q := range queries {
			params.Add("queries[]", q)
		}
		path += "?" + params.Encode()
	}

	var list DocumentList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return &list, nil
}

// Equal builds a single-attribute equality query.
func Equal(attribute string, value string) string {
	q := map[string]any{
		"method":    "equal",
		"attribute": attribute,
		"values":    []string{value},
	}
	encoded, _ := json.Marshal(q)
	return string(encoded)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.projectID)
	if c.session != "" {
		req.Header.Set("X-Appwrite-Session", c.session)
	} else {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("appwrite error (status %d, type %s): %s", resp.StatusCode, errResp.Type, errResp.Message)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
