package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// UpdatePreferencesInput captures a partial preferences update.
type UpdatePreferencesInput struct {
	Viewer dashboard.ViewerContext    `json:"viewer"`
	Patch  dashboard.PreferencesPatch `json:"preferences"`
}

type preferenceService interface {
	UpdatePreferences(ctx context.Context, viewer dashboard.ViewerContext, patch dashboard.PreferencesPatch) error
}

// UpdatePreferencesCommand persists sidebar, theme, notification and locale preferences.
type UpdatePreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewUpdatePreferencesCommand creates the command.
func NewUpdatePreferencesCommand(service preferenceService, telemetry Telemetry) *UpdatePreferencesCommand {
	return &UpdatePreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdatePreferencesInput] = (*UpdatePreferencesCommand)(nil)

// Execute stores the provided preferences for the viewer.
func (c *UpdatePreferencesCommand) Execute(ctx context.Context, msg UpdatePreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("preferences command requires viewer user id")
	}
	if err := c.service.UpdatePreferences(ctx, msg.Viewer, msg.Patch); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.preferences", map[string]any{
		"user_id": msg.Viewer.UserID,
	})
	return nil
}
