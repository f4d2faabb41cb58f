package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/queries"
)

var errNotConfigured = errors.New("httpapi: operation not configured")

// Executor is the transport-neutral surface router adapters call into.
type Executor interface {
	Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error
	ResetOrder(ctx context.Context, input commands.ResetWidgetOrderInput) error
	ToggleModule(ctx context.Context, input commands.ToggleModuleInput) error
	SetModules(ctx context.Context, input commands.SetAllModulesInput) error
	Preferences(ctx context.Context, input commands.UpdatePreferencesInput) error
	ResetSettings(ctx context.Context, input commands.ResetSettingsInput) error
	ImportSettings(ctx context.Context, input commands.ImportSettingsInput) error
	ExportSettings(ctx context.Context, viewer dashboard.ViewerContext) (string, error)
	WidgetOrder(ctx context.Context, input queries.WidgetOrderInput) ([]string, error)
	DragMode(ctx context.Context, input commands.DragModeInput) error
	StartDrag(ctx context.Context, input commands.StartDragInput) error
	DragOver(ctx context.Context, input commands.DragOverInput) error
	EndDrag(ctx context.Context, input commands.EndDragInput) error
	CancelDrag(ctx context.Context, input commands.CancelDragInput) error
	DragSession(ctx context.Context, input queries.DragSessionInput) (queries.DragSessionState, error)
}

// CommandExecutor implements Executor over go-command commanders and queriers.
// Nil fields report errNotConfigured.
type CommandExecutor struct {
	ReorderCommander     gocommand.Commander[commands.ReorderWidgetsInput]
	ResetOrderCommander  gocommand.Commander[commands.ResetWidgetOrderInput]
	ToggleCommander      gocommand.Commander[commands.ToggleModuleInput]
	SetModulesCommander  gocommand.Commander[commands.SetAllModulesInput]
	PreferencesCommander gocommand.Commander[commands.UpdatePreferencesInput]
	ResetCommander       gocommand.Commander[commands.ResetSettingsInput]
	ImportCommander      gocommand.Commander[commands.ImportSettingsInput]
	ExportQuerier        gocommand.Querier[dashboard.ViewerContext, string]
	WidgetOrderQuerier   gocommand.Querier[queries.WidgetOrderInput, []string]
	DragModeCommander    gocommand.Commander[commands.DragModeInput]
	StartDragCommander   gocommand.Commander[commands.StartDragInput]
	DragOverCommander    gocommand.Commander[commands.DragOverInput]
	EndDragCommander     gocommand.Commander[commands.EndDragInput]
	CancelDragCommander  gocommand.Commander[commands.CancelDragInput]
	DragSessionQuerier   gocommand.Querier[queries.DragSessionInput, queries.DragSessionState]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every command and query against one service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		ReorderCommander:     commands.NewReorderWidgetsCommand(service, telemetry),
		ResetOrderCommander:  commands.NewResetWidgetOrderCommand(service, telemetry),
		ToggleCommander:      commands.NewToggleModuleCommand(service, telemetry),
		SetModulesCommander:  commands.NewSetAllModulesCommand(service, telemetry),
		PreferencesCommander: commands.NewUpdatePreferencesCommand(service, telemetry),
		ResetCommander:       commands.NewResetSettingsCommand(service, telemetry),
		ImportCommander:      commands.NewImportSettingsCommand(service, telemetry),
		ExportQuerier:        queries.NewExportSettingsQuery(service),
		WidgetOrderQuerier:   queries.NewWidgetOrderQuery(service),
		DragModeCommander:    commands.NewDragModeCommand(service),
		StartDragCommander:   commands.NewStartDragCommand(service, telemetry),
		DragOverCommander:    commands.NewDragOverCommand(service),
		EndDragCommander:     commands.NewEndDragCommand(service, telemetry),
		CancelDragCommander:  commands.NewCancelDragCommand(service),
		DragSessionQuerier:   queries.NewDragSessionQuery(service),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func query[T, R any](ctx context.Context, q gocommand.Querier[T, R], msg T) (R, error) {
	if q == nil {
		var zero R
		return zero, errNotConfigured
	}
	return q.Query(ctx, msg)
}

func (e *CommandExecutor) Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error {
	return execute(ctx, e.ReorderCommander, input)
}

func (e *CommandExecutor) ResetOrder(ctx context.Context, input commands.ResetWidgetOrderInput) error {
	return execute(ctx, e.ResetOrderCommander, input)
}

func (e *CommandExecutor) ToggleModule(ctx context.Context, input commands.ToggleModuleInput) error {
	return execute(ctx, e.ToggleCommander, input)
}

func (e *CommandExecutor) SetModules(ctx context.Context, input commands.SetAllModulesInput) error {
	return execute(ctx, e.SetModulesCommander, input)
}

func (e *CommandExecutor) Preferences(ctx context.Context, input commands.UpdatePreferencesInput) error {
	return execute(ctx, e.PreferencesCommander, input)
}

func (e *CommandExecutor) ResetSettings(ctx context.Context, input commands.ResetSettingsInput) error {
	return execute(ctx, e.ResetCommander, input)
}

func (e *CommandExecutor) ImportSettings(ctx context.Context, input commands.ImportSettingsInput) error {
	return execute(ctx, e.ImportCommander, input)
}

func (e *CommandExecutor) ExportSettings(ctx context.Context, viewer dashboard.ViewerContext) (string, error) {
	return query(ctx, e.ExportQuerier, viewer)
}

func (e *CommandExecutor) WidgetOrder(ctx context.Context, input queries.WidgetOrderInput) ([]string, error) {
	return query(ctx, e.WidgetOrderQuerier, input)
}

func (e *CommandExecutor) DragMode(ctx context.Context, input commands.DragModeInput) error {
	return execute(ctx, e.DragModeCommander, input)
}

func (e *CommandExecutor) StartDrag(ctx context.Context, input commands.StartDragInput) error {
	return execute(ctx, e.StartDragCommander, input)
}

func (e *CommandExecutor) DragOver(ctx context.Context, input commands.DragOverInput) error {
	return execute(ctx, e.DragOverCommander, input)
}

func (e *CommandExecutor) EndDrag(ctx context.Context, input commands.EndDragInput) error {
	return execute(ctx, e.EndDragCommander, input)
}

func (e *CommandExecutor) CancelDrag(ctx context.Context, input commands.CancelDragInput) error {
	return execute(ctx, e.CancelDragCommander, input)
}

func (e *CommandExecutor) DragSession(ctx context.Context, input queries.DragSessionInput) (queries.DragSessionState, error) {
	return query(ctx, e.DragSessionQuerier, input)
}
