package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"horizon/internal/domain/transfer"
	"horizon/internal/shared/errs"
	"horizon/internal/shared/middleware"
)

// TransferHandler serves payment creation between linked bank accounts.
type TransferHandler struct {
	transfers *transfer.Service
	log       zerolog.Logger
}

func NewTransferHandler(transfers *transfer.Service, baseLogger *zerolog.Logger) *TransferHandler {
	log := baseLogger.With().Str("component", "transfer_handler").Logger()
	return &TransferHandler{transfers: transfers, log: log}
}

type TransferResponse struct {
	TransferURL string `json:"transferUrl"`
}

// HandleCreateTransfer initiates a payment from the sender's bank
// account to the account behind the shared id.
func (h *TransferHandler) HandleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u := middleware.UserFrom(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req transfer.Params
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SenderBankID == "" || req.ReceiverShareableID == "" || req.Amount == "" {
		writeError(w, http.StatusBadRequest, "Sender bank, receiver and amount are required")
		return
	}

	transferURL, err := h.transfers.Transfer(r.Context(), u, req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			writeError(w, http.StatusNotFound, "Bank account not found")
		case errors.Is(err, transfer.ErrNoFundingSource):
			writeError(w, http.StatusUnprocessableEntity, "Receiving account cannot accept transfers yet")
		default:
			h.log.Error().Err(err).Str("user_id", u.ID).Msg("transfer failed")
			writeError(w, http.StatusBadGateway, "Failed to create transfer")
		}
		return
	}

	writeJSON(w, http.StatusCreated, TransferResponse{TransferURL: transferURL})
}
