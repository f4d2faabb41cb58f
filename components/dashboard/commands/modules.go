package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// ToggleModuleInput names the module to flip.
type ToggleModuleInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
	Module dashboard.ModuleName    `json:"module"`
}

type moduleService interface {
	ToggleModule(ctx context.Context, viewer dashboard.ViewerContext, module dashboard.ModuleName) error
	SetAllModules(ctx context.Context, viewer dashboard.ViewerContext, enabled bool) error
}

// ToggleModuleCommand wraps Service.ToggleModule.
type ToggleModuleCommand struct {
	service   moduleService
	telemetry Telemetry
}

// NewToggleModuleCommand builds the command.
func NewToggleModuleCommand(service moduleService, telemetry Telemetry) *ToggleModuleCommand {
	return &ToggleModuleCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleModuleInput] = (*ToggleModuleCommand)(nil)

// Execute flips the module toggle.
func (c *ToggleModuleCommand) Execute(ctx context.Context, msg ToggleModuleInput) error {
	if c.service == nil {
		return errors.New("toggle module command requires service")
	}
	if msg.Module == "" {
		return errors.New("toggle module command requires module")
	}
	if err := c.service.ToggleModule(ctx, msg.Viewer, msg.Module); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.toggle_module", map[string]any{
		"user_id": msg.Viewer.UserID,
		"module":  string(msg.Module),
	})
	return nil
}

// SetAllModulesInput enables or disables every module available to the role.
type SetAllModulesInput struct {
	Viewer  dashboard.ViewerContext `json:"viewer"`
	Enabled bool                    `json:"enabled"`
}

// SetAllModulesCommand wraps Service.SetAllModules.
type SetAllModulesCommand struct {
	service   moduleService
	telemetry Telemetry
}

// NewSetAllModulesCommand builds the command.
func NewSetAllModulesCommand(service moduleService, telemetry Telemetry) *SetAllModulesCommand {
	return &SetAllModulesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetAllModulesInput] = (*SetAllModulesCommand)(nil)

// Execute applies the bulk toggle.
func (c *SetAllModulesCommand) Execute(ctx context.Context, msg SetAllModulesInput) error {
	if c.service == nil {
		return errors.New("set modules command requires service")
	}
	if err := c.service.SetAllModules(ctx, msg.Viewer, msg.Enabled); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.set_modules", map[string]any{
		"user_id": msg.Viewer.UserID,
		"enabled": msg.Enabled,
	})
	return nil
}
