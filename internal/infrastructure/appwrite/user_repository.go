package appwrite

import (
	"context"
	"encoding/json"
	"fmt"

	"horizon/internal/domain/user"
	"horizon/internal/shared/errs"
)

// UserRepository implements user.Repository against the user collection.
type UserRepository struct {
	client       *Client
	databaseID   string
	collectionID string
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(client *Client, databaseID, collectionID string) *UserRepository {
	return &UserRepository{
		client:       client,
		databaseID:   databaseID,
		collectionID: collectionID,
	}
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	data := map[string]any{
		"email":        params.Email,
		"username":     params.Username,
		"passwordHash": params.PasswordHash,
		"status":       "active",
		"firstName":    params.FirstName,
		"lastName":     params.LastName,
		"address1":     params.Address1,
		"city":         params.City,
		"state":        params.State,
		"postalCode":   params.PostalCode,
		"dateOfBirth":  params.DateOfBirth,
		"ssn":          params.SSN,
	}

	doc, err := r.client.CreateDocument(ctx, r.databaseID, r.collectionID, UniqueID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create user document: %w", err)
	}

	var u user.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user document: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID, Equal("email", email))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	if len(list.Documents) == 0 {
		return nil, errs.ErrNotFound
	}

	var u user.User
	if err := json.Unmarshal(list.Documents[0], &u); err != nil {
		return nil, fmt.Errorf("failed to decode user document: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, params user.UpdateUserParams) (*user.User, error) {
	data := map[string]any{}
	if params.DwollaCustomerURL != nil {
		data["dwollaCustomerUrl"] = *params.DwollaCustomerURL
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	doc, err := r.client.UpdateDocument(ctx, r.databaseID, r.collectionID, id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update user document: %w", err)
	}

	var u user.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user document: %w", err)
	}
	return &u, nil
}
