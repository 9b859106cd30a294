package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/xiaot623/pdfchat/internal/api"
	"github.com/xiaot623/pdfchat/internal/auth"
	"github.com/xiaot623/pdfchat/internal/logging"
	"github.com/xiaot623/pdfchat/internal/storage"
)

// openAuth opens local state and returns the auth manager. The returned
// function releases the store.
func openAuth() (*auth.Manager, func(), error) {
	store, err := storage.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local state: %w", err)
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			logging.Warnf("Failed to close local state: %v", err)
		}
	}
	client := api.NewClient(cfg.APIURL, "", cfg.HTTPTimeout)
	return auth.NewManager(store, client), closeFn, nil
}

// requireClient returns an authenticated API client.
func requireClient(ctx context.Context) (*api.Client, func(), error) {
	mgr, closeFn, err := openAuth()
	if err != nil {
		return nil, nil, err
	}
	client, err := mgr.Client(ctx)
	if err != nil {
		closeFn()
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return nil, nil, fmt.Errorf("%w: run `pdfchat signin` first", err)
		}
		return nil, nil, err
	}
	return client, closeFn, nil
}
