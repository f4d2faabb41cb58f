package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrNotInitialized is returned by read operations that need an active user.
var ErrNotInitialized = errors.New("dashboard: settings store not initialized for user")

// StoreOptions configures a Store.
type StoreOptions struct {
	AppID     string
	Backend   Backend
	Validator SettingsValidator
	Telemetry Telemetry
}

// Store owns the settings record of the single active user. Every mutation is
// written through the backend before it becomes visible in memory; a failed
// save leaves the in-memory record untouched. Operations addressed to a user
// other than the active one are ignored.
type Store struct {
	mu       sync.RWMutex
	opts     StoreOptions
	settings *Settings
}

// NewStore builds a Store with safe defaults.
func NewStore(opts StoreOptions) *Store {
	if opts.AppID == "" {
		opts.AppID = defaultAppID
	}
	if opts.Backend == nil {
		opts.Backend = NewMemoryBackend()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Store{opts: opts}
}

// StorageKey is the backend key holding a user's record.
func StorageKey(appID, userID string) string {
	return appID + ":user-settings:" + userID
}

// Initialize makes userID the active user. The persisted record is loaded when
// present; otherwise defaults are built and persisted. Initializing the
// already-active user is a no-op.
func (s *Store) Initialize(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errMissingUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings != nil && s.settings.UserID == userID {
		return nil
	}
	key := StorageKey(s.opts.AppID, userID)
	data, ok, err := s.opts.Backend.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("dashboard: load settings for %s: %w", userID, err)
	}
	if ok {
		loaded, decodeErr := decodeSettings(data)
		if decodeErr == nil {
			loaded.UserID = userID
			s.settings = &loaded
			s.record(ctx, "dashboard.store.load", map[string]any{"user_id": userID})
			return nil
		}
		s.record(ctx, "dashboard.store.corrupt", map[string]any{
			"user_id": userID,
			"error":   decodeErr.Error(),
		})
	}
	defaults := DefaultSettings(userID)
	if err := s.persist(ctx, defaults); err != nil {
		return err
	}
	s.settings = &defaults
	s.record(ctx, "dashboard.store.seed", map[string]any{"user_id": userID})
	return nil
}

// UserID returns the active user or an empty string.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return ""
	}
	return s.settings.UserID
}

// Snapshot returns a deep copy of the active user's record.
func (s *Store) Snapshot(userID string) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked(userID) {
		return Settings{}, ErrNotInitialized
	}
	return s.settings.Clone(), nil
}

// ToggleModule flips a module toggle.
func (s *Store) ToggleModule(ctx context.Context, userID string, module ModuleName) error {
	return s.mutate(ctx, userID, "toggle_module", func(cur Settings) Settings {
		return toggleModule(cur, module)
	})
}

// SetModules assigns several toggles at once.
func (s *Store) SetModules(ctx context.Context, userID string, modules map[ModuleName]bool) error {
	return s.mutate(ctx, userID, "set_modules", func(cur Settings) Settings {
		return setModules(cur, modules)
	})
}

// SetWidgetOrder replaces the saved order for a context. Ids are stored as given.
func (s *Store) SetWidgetOrder(ctx context.Context, userID string, dashCtx DashboardContext, ids []string) error {
	return s.mutate(ctx, userID, "set_widget_order", func(cur Settings) Settings {
		return setWidgetOrder(cur, dashCtx, ids)
	})
}

// WidgetOrder returns a copy of the saved order, or an empty list.
func (s *Store) WidgetOrder(userID string, dashCtx DashboardContext) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked(userID) {
		return []string{}
	}
	return append([]string{}, s.settings.WidgetOrder[dashCtx]...)
}

// ModuleToggles returns a copy of the active user's module toggles.
func (s *Store) ModuleToggles(userID string) map[ModuleName]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[ModuleName]bool{}
	if !s.activeLocked(userID) {
		return out
	}
	for m, enabled := range s.settings.DashboardModules {
		out[m] = enabled
	}
	return out
}

// ResetWidgetOrder clears the saved order for a context while keeping the key.
func (s *Store) ResetWidgetOrder(ctx context.Context, userID string, dashCtx DashboardContext) error {
	return s.mutate(ctx, userID, "reset_widget_order", func(cur Settings) Settings {
		return resetWidgetOrder(cur, dashCtx)
	})
}

// ResetAll restores default toggles and preferences and clears every order.
func (s *Store) ResetAll(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, "reset_all", resetAll)
}

// UpdatePreferences applies a validated preferences patch.
func (s *Store) UpdatePreferences(ctx context.Context, userID string, patch PreferencesPatch) error {
	if err := ValidatePreferences(patch); err != nil {
		return err
	}
	return s.mutate(ctx, userID, "update_preferences", func(cur Settings) Settings {
		return applyPreferences(cur, patch)
	})
}

// Export serializes the active record as 2-space indented JSON.
func (s *Store) Export(userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked(userID) {
		return "", ErrNotInitialized
	}
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("dashboard: export settings: %w", err)
	}
	return string(data), nil
}

// Import replaces the active record with a previously exported one. The text
// must parse, pass schema validation and belong to userID; otherwise a
// *ValidationError is returned and nothing changes.
func (s *Store) Import(ctx context.Context, userID string, text string) error {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return newValidationError("", "settings are not valid JSON", err)
	}
	if err := s.opts.Validator.ValidateDocument(doc); err != nil {
		return err
	}
	imported, err := decodeSettings([]byte(text))
	if err != nil {
		return newValidationError("", "settings could not be decoded", err)
	}
	if imported.UserID != userID {
		return newValidationError("userId", fmt.Sprintf("record belongs to %q", imported.UserID), nil)
	}
	fillPreferenceDefaults(&imported)
	return s.mutate(ctx, userID, "import", func(Settings) Settings {
		return imported.Clone()
	})
}

// Forget drops the active user's persisted record and clears memory.
func (s *Store) Forget(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked(userID) {
		return nil
	}
	if err := s.opts.Backend.Delete(ctx, StorageKey(s.opts.AppID, userID)); err != nil {
		return fmt.Errorf("dashboard: delete settings for %s: %w", userID, err)
	}
	s.settings = nil
	return nil
}

func (s *Store) mutate(ctx context.Context, userID, reason string, fn func(Settings) Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked(userID) {
		return nil
	}
	next := fn(s.settings.Clone())
	next.UserID = userID
	normalizeSettings(&next)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.settings = &next
	s.record(ctx, "dashboard.store.mutate", map[string]any{
		"user_id": userID,
		"reason":  reason,
	})
	return nil
}

func (s *Store) persist(ctx context.Context, settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("dashboard: encode settings: %w", err)
	}
	started := time.Now()
	err = s.opts.Backend.Save(ctx, StorageKey(s.opts.AppID, settings.UserID), data)
	s.record(ctx, "dashboard.store.write", map[string]any{
		"user_id":  settings.UserID,
		"duration": time.Since(started).Seconds(),
		"ok":       err == nil,
	})
	if err != nil {
		return fmt.Errorf("dashboard: save settings for %s: %w", settings.UserID, err)
	}
	return nil
}

func (s *Store) activeLocked(userID string) bool {
	return s.settings != nil && s.settings.UserID == userID
}

func (s *Store) record(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func decodeSettings(data []byte) (Settings, error) {
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, err
	}
	normalizeSettings(&out)
	return out, nil
}

func fillPreferenceDefaults(s *Settings) {
	defaults := DefaultSettings(s.UserID)
	if s.Theme == "" {
		s.Theme = defaults.Theme
	}
	if s.DateFormat == "" {
		s.DateFormat = defaults.DateFormat
	}
	if s.Timezone == "" {
		s.Timezone = defaults.Timezone
	}
}
