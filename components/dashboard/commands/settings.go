package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// ResetSettingsInput targets the viewer whose settings go back to defaults.
type ResetSettingsInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
}

// ImportSettingsInput carries a previously exported settings document.
type ImportSettingsInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	Document string                  `json:"document"`
}

type settingsService interface {
	ResetSettings(ctx context.Context, viewer dashboard.ViewerContext) error
	ImportSettings(ctx context.Context, viewer dashboard.ViewerContext, text string) error
}

// ResetSettingsCommand wraps Service.ResetSettings.
type ResetSettingsCommand struct {
	service   settingsService
	telemetry Telemetry
}

// NewResetSettingsCommand builds the command.
func NewResetSettingsCommand(service settingsService, telemetry Telemetry) *ResetSettingsCommand {
	return &ResetSettingsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetSettingsInput] = (*ResetSettingsCommand)(nil)

// Execute restores defaults.
func (c *ResetSettingsCommand) Execute(ctx context.Context, msg ResetSettingsInput) error {
	if c.service == nil {
		return errors.New("reset settings command requires service")
	}
	if err := c.service.ResetSettings(ctx, msg.Viewer); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reset", map[string]any{"user_id": msg.Viewer.UserID})
	return nil
}

// ImportSettingsCommand wraps Service.ImportSettings.
type ImportSettingsCommand struct {
	service   settingsService
	telemetry Telemetry
}

// NewImportSettingsCommand builds the command.
func NewImportSettingsCommand(service settingsService, telemetry Telemetry) *ImportSettingsCommand {
	return &ImportSettingsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ImportSettingsInput] = (*ImportSettingsCommand)(nil)

// Execute validates and applies the document.
func (c *ImportSettingsCommand) Execute(ctx context.Context, msg ImportSettingsInput) error {
	if c.service == nil {
		return errors.New("import settings command requires service")
	}
	if msg.Document == "" {
		return errors.New("import settings command requires document")
	}
	if err := c.service.ImportSettings(ctx, msg.Viewer, msg.Document); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.import", map[string]any{"user_id": msg.Viewer.UserID})
	return nil
}

// RefreshSettingsInput triggers the refresh hook without mutating settings.
type RefreshSettingsInput struct {
	Event dashboard.SettingsEvent `json:"event"`
}

type refreshService interface {
	NotifySettingsChanged(ctx context.Context, event dashboard.SettingsEvent)
}

// RefreshSettingsCommand pushes a settings event to transports.
type RefreshSettingsCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshSettingsCommand builds the command.
func NewRefreshSettingsCommand(service refreshService, telemetry Telemetry) *RefreshSettingsCommand {
	return &RefreshSettingsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshSettingsInput] = (*RefreshSettingsCommand)(nil)

// Execute emits the event.
func (c *RefreshSettingsCommand) Execute(ctx context.Context, msg RefreshSettingsInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = "refresh"
	}
	c.service.NotifySettingsChanged(ctx, msg.Event)
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"user_id": msg.Event.UserID,
		"reason":  msg.Event.Reason,
	})
	return nil
}
