// Package auth keeps the bearer token in client-local storage and wraps the
// sign-in, sign-up and current-user calls.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/xiaot623/pdfchat/internal/api"
	"github.com/xiaot623/pdfchat/internal/storage"
)

// TokenKey is the storage key holding the bearer token.
const TokenKey = "accessjwt"

// ErrNotAuthenticated is returned when no token is stored.
var ErrNotAuthenticated = errors.New("not signed in")

// Manager owns the persisted bearer token.
type Manager struct {
	store  storage.Store
	client *api.Client
}

// NewManager creates a manager. client is used for auth calls; its own token is ignored.
func NewManager(store storage.Store, client *api.Client) *Manager {
	return &Manager{store: store, client: client}
}

// Token returns the stored bearer token or ErrNotAuthenticated.
func (m *Manager) Token(ctx context.Context) (string, error) {
	token, err := m.store.Get(ctx, TokenKey)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && token == "") {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authenticated reports whether a token is stored.
func (m *Manager) Authenticated(ctx context.Context) bool {
	_, err := m.Token(ctx)
	return err == nil
}

// Client returns an API client authenticated with the stored token.
func (m *Manager) Client(ctx context.Context) (*api.Client, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return nil, err
	}
	return m.client.WithToken(token), nil
}

// SignIn exchanges credentials for a token and stores it.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := m.client.WithToken("").SignIn(ctx, api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := m.save(ctx, resp.JWT); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// SignUp creates an account and stores its token.
func (m *Manager) SignUp(ctx context.Context, name, email, password string) (*api.User, error) {
	resp, err := m.client.WithToken("").SignUp(ctx, api.SignUpRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, err
	}
	if err := m.save(ctx, resp.JWT); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// SignOut removes the stored token.
func (m *Manager) SignOut(ctx context.Context) error {
	return m.store.Delete(ctx, TokenKey)
}

// CurrentUser fetches the user the stored token belongs to.
func (m *Manager) CurrentUser(ctx context.Context) (*api.User, error) {
	client, err := m.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.CurrentUser(ctx)
}

func (m *Manager) save(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("server returned an empty token")
	}
	if err := m.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}
