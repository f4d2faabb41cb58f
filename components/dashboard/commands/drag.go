package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

var errMissingDragService = errors.New("drag command requires service")

type dragService interface {
	SetDragMode(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext, enabled bool) error
	StartDrag(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext, widgetID string, geometry *dashboard.GeometrySnapshot) (dashboard.DragSession, error)
	DragOver(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext, move dashboard.DragMove) (dashboard.DragSession, error)
	EndDrag(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext) (dashboard.DragResult, error)
	CancelDrag(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext) (dashboard.DragResult, error)
}

// DragTarget identifies the board a drag command acts on.
type DragTarget struct {
	Viewer  dashboard.ViewerContext    `json:"viewer"`
	Context dashboard.DashboardContext `json:"context"`
}

// DragModeInput toggles drag mode.
type DragModeInput struct {
	DragTarget
	Enabled bool `json:"enabled"`
}

// StartDragInput begins a drag.
type StartDragInput struct {
	DragTarget
	WidgetID string                      `json:"widget_id"`
	Geometry *dashboard.GeometrySnapshot `json:"geometry,omitempty"`
}

// DragOverInput reports movement.
type DragOverInput struct {
	DragTarget
	Move dashboard.DragMove `json:"move"`
}

// EndDragInput drops the dragged widget.
type EndDragInput struct {
	DragTarget
}

// CancelDragInput aborts the drag.
type CancelDragInput struct {
	DragTarget
}

// DragModeCommand toggles drag mode on a board.
type DragModeCommand struct {
	service dragService
}

// NewDragModeCommand builds the command.
func NewDragModeCommand(service dragService) *DragModeCommand {
	return &DragModeCommand{service: service}
}

var _ gocommand.Commander[DragModeInput] = (*DragModeCommand)(nil)

// Execute applies the gate.
func (c *DragModeCommand) Execute(ctx context.Context, msg DragModeInput) error {
	if c.service == nil {
		return errMissingDragService
	}
	return c.service.SetDragMode(ctx, msg.Viewer, msg.Context, msg.Enabled)
}

// StartDragCommand wraps Service.StartDrag.
type StartDragCommand struct {
	service   dragService
	telemetry Telemetry
}

// NewStartDragCommand builds the command.
func NewStartDragCommand(service dragService, telemetry Telemetry) *StartDragCommand {
	return &StartDragCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[StartDragInput] = (*StartDragCommand)(nil)

// Execute begins the drag.
func (c *StartDragCommand) Execute(ctx context.Context, msg StartDragInput) error {
	if c.service == nil {
		return errMissingDragService
	}
	if msg.WidgetID == "" {
		return errors.New("drag start requires widget id")
	}
	session, err := c.service.StartDrag(ctx, msg.Viewer, msg.Context, msg.WidgetID, msg.Geometry)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.drag_start", map[string]any{
		"user_id":    msg.Viewer.UserID,
		"session_id": session.ID,
		"widget_id":  msg.WidgetID,
	})
	return nil
}

// DragOverCommand wraps Service.DragOver.
type DragOverCommand struct {
	service dragService
}

// NewDragOverCommand builds the command.
func NewDragOverCommand(service dragService) *DragOverCommand {
	return &DragOverCommand{service: service}
}

var _ gocommand.Commander[DragOverInput] = (*DragOverCommand)(nil)

// Execute advances the drag.
func (c *DragOverCommand) Execute(ctx context.Context, msg DragOverInput) error {
	if c.service == nil {
		return errMissingDragService
	}
	_, err := c.service.DragOver(ctx, msg.Viewer, msg.Context, msg.Move)
	return err
}

// EndDragCommand wraps Service.EndDrag.
type EndDragCommand struct {
	service   dragService
	telemetry Telemetry
}

// NewEndDragCommand builds the command.
func NewEndDragCommand(service dragService, telemetry Telemetry) *EndDragCommand {
	return &EndDragCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EndDragInput] = (*EndDragCommand)(nil)

// Execute drops the widget and commits when it moved.
func (c *EndDragCommand) Execute(ctx context.Context, msg EndDragInput) error {
	if c.service == nil {
		return errMissingDragService
	}
	res, err := c.service.EndDrag(ctx, msg.Viewer, msg.Context)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.drag_end", map[string]any{
		"user_id":    msg.Viewer.UserID,
		"session_id": res.SessionID,
		"outcome":    string(res.Outcome),
	})
	return nil
}

// CancelDragCommand wraps Service.CancelDrag.
type CancelDragCommand struct {
	service dragService
}

// NewCancelDragCommand builds the command.
func NewCancelDragCommand(service dragService) *CancelDragCommand {
	return &CancelDragCommand{service: service}
}

var _ gocommand.Commander[CancelDragInput] = (*CancelDragCommand)(nil)

// Execute aborts the drag.
func (c *CancelDragCommand) Execute(ctx context.Context, msg CancelDragInput) error {
	if c.service == nil {
		return errMissingDragService
	}
	_, err := c.service.CancelDrag(ctx, msg.Viewer, msg.Context)
	return err
}
