package goadmin

import (
	"context"
	"errors"
	"fmt"

	core "github.com/goliatone/go-dashboard-prefs/components/dashboard"
	dashboardpkg "github.com/goliatone/go-dashboard-prefs/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the dashboard service into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	DefaultMenuItem MenuItem
	// SettingsMenuItem links to the per-user dashboard settings page. An
	// empty Route skips it.
	SettingsMenuItem MenuItem
	// SeedUsers get a persisted settings record during Bootstrap.
	SeedUsers []string
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Dashboard"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.dashboard"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "home"
	}
	if cfg.SettingsMenuItem.Route != "" {
		if cfg.SettingsMenuItem.Label == "" {
			cfg.SettingsMenuItem.Label = "Dashboard Settings"
		}
		if cfg.SettingsMenuItem.Icon == "" {
			cfg.SettingsMenuItem.Icon = "settings"
		}
		if cfg.SettingsMenuItem.Position == 0 {
			cfg.SettingsMenuItem.Position = cfg.DefaultMenuItem.Position + 1
		}
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds menu entries and user settings when dashboard support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard {
		return nil
	}
	if len(a.cfg.SeedUsers) > 0 {
		if err := core.SeedUsers(ctx, a.cfg.Service.Store(), a.cfg.SeedUsers...); err != nil {
			return fmt.Errorf("goadmin: seed dashboard settings: %w", err)
		}
	}
	if a.cfg.MenuBuilder == nil {
		return nil
	}
	if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem); err != nil {
		return err
	}
	if a.cfg.SettingsMenuItem.Route == "" {
		return nil
	}
	return a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.SettingsMenuItem)
}
