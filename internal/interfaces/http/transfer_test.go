package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/linking"
	"horizon/internal/domain/transfer"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/shared/cache"
	"horizon/internal/shared/errs"
)

func newTransferHandler(t *testing.T, repo *MockBankRepo) (*TransferHandler, *crypto.Encryptor) {
	t.Helper()
	log := testLogger()

	encryptor, err := crypto.NewEncryptor("01234567890123456789012345678901")
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}

	homeCache := cache.New(time.Minute)
	payments := &MockPayments{}
	bankService := bank.NewService(repo, log)
	linkingService := linking.NewService(&MockAggregator{}, payments, repo, encryptor, homeCache, log)
	transferService := transfer.NewService(payments, bankService, &MockUserRepo{}, linkingService, encryptor, log)

	return NewTransferHandler(transferService, log), encryptor
}

func TestHandleCreateTransfer(t *testing.T) {
	receiver := &bank.Account{ID: "bank_recv", AccountID: "acc-recv", FundingSourceURL: "https://api-sandbox.dwolla.com/funding-sources/fs-recv"}
	sender := &bank.Account{ID: "bank_send", AccountID: "acc-send", FundingSourceURL: "https://api-sandbox.dwolla.com/funding-sources/fs-send"}
	repo := &MockBankRepo{
		GetByIDFunc: func(ctx context.Context, documentID string) (*bank.Account, error) {
			if documentID == "bank_send" {
				return sender, nil
			}
			return nil, errs.ErrNotFound
		},
		ListByAccountIDFunc: func(ctx context.Context, accountID string) ([]*bank.Account, error) {
			if accountID == "acc-recv" {
				return []*bank.Account{receiver}, nil
			}
			return nil, nil
		},
	}

	handler, encryptor := newTransferHandler(t, repo)

	shareable, err := encryptor.Encrypt("acc-recv")
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}

	payload, _ := json.Marshal(map[string]string{
		"senderBankId":        "bank_send",
		"receiverShareableId": shareable,
		"amount":              "25.00",
	})
	req := authedRequest(http.MethodPost, "/api/transfers", payload)
	rr := httptest.NewRecorder()

	handler.HandleCreateTransfer(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var resp TransferResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.TransferURL == "" {
		t.Error("expected a transfer URL in the response")
	}
}

func TestHandleCreateTransfer_UnknownReceiver(t *testing.T) {
	handler, encryptor := newTransferHandler(t, &MockBankRepo{})

	shareable, _ := encryptor.Encrypt("acc-unknown")
	payload, _ := json.Marshal(map[string]string{
		"senderBankId":        "bank_send",
		"receiverShareableId": shareable,
		"amount":              "25.00",
	})
	req := authedRequest(http.MethodPost, "/api/transfers", payload)
	rr := httptest.NewRecorder()

	handler.HandleCreateTransfer(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestHandleCreateTransfer_MissingFields(t *testing.T) {
	handler, _ := newTransferHandler(t, &MockBankRepo{})

	payload, _ := json.Marshal(map[string]string{"amount": "25.00"})
	req := authedRequest(http.MethodPost, "/api/transfers", payload)
	rr := httptest.NewRecorder()

	handler.HandleCreateTransfer(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
