package dashboard

import (
	core "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Store exposes the per-user settings store.
type Store = core.Store

// StoreOptions re-export for convenience.
type StoreOptions = core.StoreOptions

// ViewerContext identifies the acting user.
type ViewerContext = core.ViewerContext

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewStore proxies to the internal constructor.
func NewStore(opts StoreOptions) *Store {
	return core.NewStore(opts)
}
