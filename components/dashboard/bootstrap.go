package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// SeedUsers makes sure every user has a persisted settings record. Existing
// records are left as they are. The store ends with the last user active.
func SeedUsers(ctx context.Context, store *Store, userIDs ...string) error {
	if store == nil {
		return errors.New("dashboard: store is required to seed users")
	}
	var seedErr error
	for _, userID := range userIDs {
		if err := store.Initialize(ctx, userID); err != nil {
			seedErr = errors.Join(seedErr, fmt.Errorf("seed user %s: %w", userID, err))
		}
	}
	return seedErr
}

// BootstrapRegistry builds the default registry and, when path is set,
// overlays the contexts declared in a manifest file.
func BootstrapRegistry(path string) (*Registry, error) {
	reg := NewRegistry()
	if path == "" {
		return reg, nil
	}
	if _, err := reg.LoadManifestFile(path); err != nil {
		return nil, err
	}
	return reg, nil
}
