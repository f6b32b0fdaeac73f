package appwrite

import (
	"context"
	"encoding/json"
	"fmt"

	"horizon/internal/domain/bank"
	"horizon/internal/shared/errs"
)

// BankRepository implements bank.Repository against the bank collection.
type BankRepository struct {
	client       *Client
	databaseID   string
	collectionID string
}

var _ bank.Repository = (*BankRepository)(nil)

func NewBankRepository(client *Client, databaseID, collectionID string) *BankRepository {
	return &BankRepository{
		client:       client,
		databaseID:   databaseID,
		collectionID: collectionID,
	}
}

func (r *BankRepository) Create(ctx context.Context, params bank.CreateAccountParams) (*bank.Account, error) {
	data := map[string]any{
		"userId":           params.UserID,
		"bankId":           params.BankID,
		"accountId":        params.AccountID,
		"accessToken":      params.AccessToken,
		"fundingSourceUrl": params.FundingSourceURL,
		"shareableId":      params.ShareableID,
	}

	doc, err := r.client.CreateDocument(ctx, r.databaseID, r.collectionID, UniqueID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank account document: %w", err)
	}
	return decodeAccount(doc)
}

func (r *BankRepository) ListByUserID(ctx context.Context, userID string) ([]*bank.Account, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID, Equal("userId", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	return decodeAccounts(list)
}

func (r *BankRepository) GetByID(ctx context.Context, documentID string) (*bank.Account, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID, Equal("$id", documentID))
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	if len(list.Documents) == 0 {
		return nil, errs.ErrNotFound
	}
	return decodeAccount(list.Documents[0])
}

func (r *BankRepository) ListByAccountID(ctx context.Context, accountID string) ([]*bank.Account, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID, Equal("accountId", accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	return decodeAccounts(list)
}

func (r *BankRepository) FindByUserAndItem(ctx context.Context, userID, itemID string) (*bank.Account, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID,
		Equal("userId", userID), Equal("bankId", itemID))
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	if len(list.Documents) == 0 {
		return nil, errs.ErrNotFound
	}
	return decodeAccount(list.Documents[0])
}

func (r *BankRepository) Update(ctx context.Context, documentID string, params bank.UpdateAccountParams) (*bank.Account, error) {
	data := map[string]any{}
	if params.FundingSourceURL != nil {
		data["fundingSourceUrl"] = *params.FundingSourceURL
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	doc, err := r.client.UpdateDocument(ctx, r.databaseID, r.collectionID, documentID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update bank account document: %w", err)
	}
	return decodeAccount(doc)
}

func decodeAccount(doc json.RawMessage) (*bank.Account, error) {
	var acct bank.Account
	if err := json.Unmarshal(doc, &acct); err != nil {
		return nil, fmt.Errorf("failed to decode bank account document: %w", err)
	}
	return &acct, nil
}

func decodeAccounts(list *DocumentList) ([]*bank.Account, error) {
	accounts := make([]*bank.Account, 0, len(list.Documents))
	for _, doc := range list.Documents {
		acct, err := decodeAccount(doc)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}
