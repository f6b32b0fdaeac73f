package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/linking"
	"horizon/internal/shared/cache"
	"horizon/internal/shared/errs"
	"horizon/internal/shared/middleware"
)

// BankHandler serves the linking flow and the bank-account read paths.
type BankHandler struct {
	linking   *linking.Service
	banks     *bank.Service
	homeCache *cache.Cache
	log       zerolog.Logger
}

func NewBankHandler(linkingSvc *linking.Service, banks *bank.Service, homeCache *cache.Cache, baseLogger *zerolog.Logger) *BankHandler {
	log := baseLogger.With().Str("component", "bank_handler").Logger()
	return &BankHandler{linking: linkingSvc, banks: banks, homeCache: homeCache, log: log}
}

type LinkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

type ExchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

// HandleCreateLinkToken issues a one-time link token for the UI widget.
func (h *BankHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u := middleware.UserFrom(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	token, err := h.linking.CreateLinkToken(r.Context(), u)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", u.ID).Msg("link token create failed")
		writeError(w, http.StatusBadGateway, "Failed to create link token")
		return
	}

	writeJSON(w, http.StatusOK, LinkTokenResponse{LinkToken: token})
}

// HandleExchange converts a one-time public token into a persisted bank
// account for the authenticated user.
func (h *BankHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u := middleware.UserFrom(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PublicToken == "" {
		writeError(w, http.StatusBadRequest, "Public token is required")
		return
	}

	created, err := h.linking.ExchangePublicToken(r.Context(), req.PublicToken, u)
	if err != nil {
		var exchangeErr *errs.AggregatorExchangeError
		var fetchErr *errs.AggregatorFetchError
		switch {
		case errors.As(err, &exchangeErr):
			writeError(w, http.StatusBadGateway, "Aggregator rejected the public token")
		case errors.As(err, &fetchErr):
			writeError(w, http.StatusBadGateway, "Failed to fetch accounts from aggregator")
		default:
			h.log.Error().Err(err).Str("user_id", u.ID).Msg("token exchange failed")
			writeError(w, http.StatusInternalServerError, "Failed to link bank account")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleListBanks returns all linked bank accounts for the user, served
// from the home cache when fresh.
func (h *BankHandler) HandleListBanks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u := middleware.UserFrom(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if cached, ok := h.homeCache.Get(u.ID); ok {
		if accounts, ok := cached.([]*bank.Account); ok {
			writeJSON(w, http.StatusOK, accounts)
			return
		}
	}

	accounts, err := h.banks.GetBanks(r.Context(), u.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", u.ID).Msg("bank list failed")
		writeError(w, http.StatusInternalServerError, "Failed to list bank accounts")
		return
	}

	h.homeCache.Set(u.ID, accounts)
	writeJSON(w, http.StatusOK, accounts)
}

// HandleGetBank returns a single bank account by document id.
func (h *BankHandler) HandleGetBank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	documentID := r.PathValue("id")
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Bank account ID is required")
		return
	}

	acct, err := h.banks.GetBank(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bank account not found")
			return
		}
		h.log.Error().Err(err).Str("document_id", documentID).Msg("bank lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch bank account")
		return
	}

	writeJSON(w, http.StatusOK, acct)
}

// HandleGetBankByAccount returns the bank account for an aggregator
// account id. Zero or several matches both resolve to not found.
func (h *BankHandler) HandleGetBankByAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("accountId")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "Account ID is required")
		return
	}

	acct, err := h.banks.GetBankByAccountID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bank account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Msg("bank lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch bank account")
		return
	}

	writeJSON(w, http.StatusOK, acct)
}
