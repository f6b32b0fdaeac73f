package dwolla

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient serves the token endpoint plus the given handler for
// everything else, and returns a client pointed at the test server.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()

	tokenRequests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			tokenRequests++
			user, pass, ok := r.BasicAuth()
			if !ok || user != "key" || pass != "secret" {
				t.Errorf("token request basic auth = (%q, %q), want (key, secret)", user, pass)
			}
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "token-1", TokenType: "bearer", ExpiresIn: 3600})
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q, want Bearer token-1", got)
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    server.URL,
		key:        "key",
		secret:     "secret",
	}
	return c, &tokenRequests
}

func locationFor(r *http.Request, path string) string {
	return "http://" + r.Host + path
}

func TestCreateCustomer(t *testing.T) {
	var gotBody NewCustomerParams
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers" {
			t.Errorf("path = %q, want /customers", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Location", locationFor(r, "/customers/cust-1"))
		w.WriteHeader(http.StatusCreated)
	})

	url, err := c.CreateCustomer(context.Background(), NewCustomerParams{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCustomer() failed: %v", err)
	}
	if !strings.HasSuffix(url, "/customers/cust-1") {
		t.Errorf("customer URL = %q, want the Location header value", url)
	}
	if gotBody.Type != "personal" {
		t.Errorf("customer type = %q, want personal default", gotBody.Type)
	}
}

func TestCreateTransfer(t *testing.T) {
	var idempotencyKey string
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transfers" {
			t.Errorf("path = %q, want /transfers", r.URL.Path)
		}
		idempotencyKey = r.Header.Get("Idempotency-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Location", locationFor(r, "/transfers/tr-1"))
		w.WriteHeader(http.StatusCreated)
	})

	url, err := c.CreateTransfer(context.Background(), TransferParams{
		SourceFundingSourceURL:      "https://example.com/funding-sources/src",
		DestinationFundingSourceURL: "https://example.com/funding-sources/dst",
		Amount:                      "25.00",
	})
	if err != nil {
		t.Fatalf("CreateTransfer() failed: %v", err)
	}
	if !strings.HasSuffix(url, "/transfers/tr-1") {
		t.Errorf("transfer URL = %q, want the Location header value", url)
	}
	if idempotencyKey == "" {
		t.Error("transfer requests must carry an Idempotency-Key header")
	}

	amount, _ := gotBody["amount"].(map[string]any)
	if amount["currency"] != "USD" || amount["value"] != "25.00" {
		t.Errorf("amount = %v, want USD 25.00", amount)
	}
}

func TestCreateFundingSource(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers/cust-1/funding-sources" {
			t.Errorf("path = %q, want /customers/cust-1/funding-sources", r.URL.Path)
		}
		w.Header().Set("Location", locationFor(r, "/funding-sources/fs-1"))
		w.WriteHeader(http.StatusCreated)
	})

	url, err := c.CreateFundingSource(context.Background(), FundingSourceParams{
		CustomerID: "cust-1",
		Name:       "Checking",
		PlaidToken: "processor-1",
	})
	if err != nil {
		t.Fatalf("CreateFundingSource() failed: %v", err)
	}
	if !strings.HasSuffix(url, "/funding-sources/fs-1") {
		t.Errorf("funding source URL = %q, want the Location header value", url)
	}
}

func TestCreateOnDemandAuthorization(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(authorizationResponse{
			Links: map[string]Link{"self": {Href: "https://example.com/on-demand-authorizations/auth-1"}},
		})
	})

	links, err := c.CreateOnDemandAuthorization(context.Background())
	if err != nil {
		t.Fatalf("CreateOnDemandAuthorization() failed: %v", err)
	}
	if links["self"].Href != "https://example.com/on-demand-authorizations/auth-1" {
		t.Errorf("links = %v, want the self link", links)
	}
}

func TestToken_Cached(t *testing.T) {
	c, tokenRequests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", locationFor(r, "/customers/cust-1"))
		w.WriteHeader(http.StatusCreated)
	})

	for i := 0; i < 3; i++ {
		if _, err := c.CreateCustomer(context.Background(), NewCustomerParams{FirstName: "Jane"}); err != nil {
			t.Fatalf("CreateCustomer() failed: %v", err)
		}
	}

	if *tokenRequests != 1 {
		t.Errorf("token endpoint hit %d times, want 1 (token should be cached)", *tokenRequests)
	}
}

func TestCreateCustomer_ErrorResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Code: "ValidationError", Message: "email is required"})
	})

	_, err := c.CreateCustomer(context.Background(), NewCustomerParams{})
	if err == nil {
		t.Fatal("expected error for validation failure, got nil")
	}
}

func TestNewClient_EnvironmentHosts(t *testing.T) {
	if c := NewClient("k", "s", "production"); c.baseURL != hosts["production"] {
		t.Errorf("production baseURL = %q, want %q", c.baseURL, hosts["production"])
	}
	if c := NewClient("k", "s", "sandbox"); c.baseURL != hosts["sandbox"] {
		t.Errorf("sandbox baseURL = %q, want %q", c.baseURL, hosts["sandbox"])
	}
}
