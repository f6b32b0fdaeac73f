package appwrite

import (
	"context"
	"fmt"

	"horizon/internal/domain/user"
	"horizon/internal/shared/session"
)

// IdentityStore adapts the Appwrite account API to the identity
// operations the user-provisioning flow and session manager need.
type IdentityStore struct {
	client *Client
}

var (
	_ user.IdentityStore = (*IdentityStore)(nil)
	_ session.Store      = (*IdentityStore)(nil)
)

func NewIdentityStore(client *Client) *IdentityStore {
	return &IdentityStore{client: client}
}

func (s *IdentityStore) CreateAccount(ctx context.Context, email, password, name string) (string, error) {
	account, err := s.client.CreateAccount(ctx, UniqueID, email, password, name)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

func (s *IdentityStore) CreateSession(ctx context.Context, email, password string) (string, error) {
	sess, err := s.client.CreateEmailSession(ctx, email, password)
	if err != nil {
		return "", err
	}
	if sess.Secret == "" {
		return "", fmt.Errorf("session secret missing from response")
	}
	return sess.Secret, nil
}

func (s *IdentityStore) GetAccountName(ctx context.Context, sessionSecret string) (name, email string, err error) {
	account, err := s.client.WithSession(sessionSecret).GetAccount(ctx)
	if err != nil {
		return "", "", err
	}
	return account.Name, account.Email, nil
}

// Get resolves a session secret to the identity it belongs to.
func (s *IdentityStore) Get(ctx context.Context, secret string) (*session.Identity, error) {
	account, err := s.client.WithSession(secret).GetAccount(ctx)
	if err != nil {
		return nil, err
	}
	return &session.Identity{ID: account.ID, Email: account.Email, Name: account.Name}, nil
}

// Delete invalidates the session server-side.
func (s *IdentityStore) Delete(ctx context.Context, secret string) error {
	return s.client.WithSession(secret).DeleteCurrentSession(ctx)
}
