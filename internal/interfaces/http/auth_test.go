package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"horizon/internal/domain/user"
	"horizon/internal/shared/errs"
	"horizon/internal/shared/session"
)

// MockIdentityStore implements user.IdentityStore and session.Store.
type MockIdentityStore struct {
	CreateAccountFunc  func(ctx context.Context, email, password, name string) (string, error)
	CreateSessionFunc  func(ctx context.Context, email, password string) (string, error)
	GetAccountNameFunc func(ctx context.Context, sessionSecret string) (string, string, error)
	GetFunc            func(ctx context.Context, secret string) (*session.Identity, error)
	DeleteFunc         func(ctx context.Context, secret string) error
}

func (m *MockIdentityStore) CreateAccount(ctx context.Context, email, password, name string) (string, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, email, password, name)
	}
	return "acc_1", nil
}

func (m *MockIdentityStore) CreateSession(ctx context.Context, email, password string) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, email, password)
	}
	return "secret-1", nil
}

func (m *MockIdentityStore) GetAccountName(ctx context.Context, sessionSecret string) (string, string, error) {
	if m.GetAccountNameFunc != nil {
		return m.GetAccountNameFunc(ctx, sessionSecret)
	}
	return "", "", nil
}

func (m *MockIdentityStore) Get(ctx context.Context, secret string) (*session.Identity, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, secret)
	}
	return nil, errors.New("unknown session")
}

func (m *MockIdentityStore) Delete(ctx context.Context, secret string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, secret)
	}
	return nil
}

// MockUserRepo implements user.Repository.
type MockUserRepo struct {
	CreateFunc     func(ctx context.Context, params user.CreateUserParams) (*user.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*user.User, error)
	UpdateFunc     func(ctx context.Context, id string, params user.UpdateUserParams) (*user.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &user.User{ID: "doc_1", Email: params.Email}, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, errs.ErrNotFound
}

func (m *MockUserRepo) Update(ctx context.Context, id string, params user.UpdateUserParams) (*user.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func testLogger() *zerolog.Logger {
	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &log
}

func newAuthHandler(identity *MockIdentityStore, repo *MockUserRepo) *AuthHandler {
	log := testLogger()
	users := user.NewService(identity, repo, log)
	sessions := session.NewManager(identity, "appwrite-session", false, log)
	return NewAuthHandler(users, sessions, log)
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "appwrite-session" {
			return c
		}
	}
	return nil
}

func TestHandleSignUp(t *testing.T) {
	body := map[string]string{
		"email":     "jane@example.com",
		"password":  "hunter22",
		"firstName": "Jane",
		"lastName":  "Doe",
	}

	handler := newAuthHandler(&MockIdentityStore{}, &MockUserRepo{})

	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-up", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	handler.HandleSignUp(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	cookie := sessionCookie(t, rr)
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if cookie.Value != "secret-1" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "secret-1")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	var u user.User
	json.NewDecoder(rr.Body).Decode(&u)
	if u.Email != "jane@example.com" {
		t.Errorf("response email = %q, want %q", u.Email, "jane@example.com")
	}
}

func TestHandleSignUp_MissingFields(t *testing.T) {
	handler := newAuthHandler(&MockIdentityStore{}, &MockUserRepo{})

	payload, _ := json.Marshal(map[string]string{"email": "jane@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-up", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	handler.HandleSignUp(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleSignUp_IdentityStoreDown(t *testing.T) {
	identity := &MockIdentityStore{
		CreateAccountFunc: func(ctx context.Context, email, password, name string) (string, error) {
			return "", errors.New("503 service unavailable")
		},
	}
	handler := newAuthHandler(identity, &MockUserRepo{})

	payload, _ := json.Marshal(map[string]string{
		"email": "jane@example.com", "password": "pw", "firstName": "Jane", "lastName": "Doe",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-up", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	handler.HandleSignUp(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
	if sessionCookie(t, rr) != nil {
		t.Error("no session cookie may be set on failure")
	}
}

func TestHandleSignIn(t *testing.T) {
	repo := &MockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{ID: "doc_1", Email: email}, nil
		},
	}
	handler := newAuthHandler(&MockIdentityStore{}, repo)

	payload, _ := json.Marshal(map[string]string{"email": "jane@example.com", "password": "hunter22"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	handler.HandleSignIn(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if sessionCookie(t, rr) == nil {
		t.Error("expected session cookie to be set")
	}
}

func TestHandleSignIn_InvalidCredentials(t *testing.T) {
	identity := &MockIdentityStore{
		CreateSessionFunc: func(ctx context.Context, email, password string) (string, error) {
			return "", errors.New("401 invalid credentials")
		},
	}
	handler := newAuthHandler(identity, &MockUserRepo{})

	payload, _ := json.Marshal(map[string]string{"email": "jane@example.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	handler.HandleSignIn(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestHandleSignOut(t *testing.T) {
	deleted := ""
	identity := &MockIdentityStore{
		DeleteFunc: func(ctx context.Context, secret string) error {
			deleted = secret
			return nil
		},
	}
	handler := newAuthHandler(identity, &MockUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: "appwrite-session", Value: "secret-1"})
	rr := httptest.NewRecorder()

	handler.HandleSignOut(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if deleted != "secret-1" {
		t.Errorf("deleted secret = %q, want %q", deleted, "secret-1")
	}

	cookie := sessionCookie(t, rr)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Error("expected the session cookie to be expired")
	}
}

func TestHandleSignOut_SwallowsStoreFailure(t *testing.T) {
	identity := &MockIdentityStore{
		DeleteFunc: func(ctx context.Context, secret string) error {
			return errors.New("store unavailable")
		},
	}
	handler := newAuthHandler(identity, &MockUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: "appwrite-session", Value: "secret-1"})
	rr := httptest.NewRecorder()

	handler.HandleSignOut(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestHandleSignUp_WrongMethod(t *testing.T) {
	handler := newAuthHandler(&MockIdentityStore{}, &MockUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/sign-up", nil)
	rr := httptest.NewRecorder()

	handler.HandleSignUp(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}
