package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// ReorderWidgetsInput contains the reorder payload.
type ReorderWidgetsInput struct {
	Viewer    dashboard.ViewerContext    `json:"viewer"`
	Context   dashboard.DashboardContext `json:"context"`
	WidgetIDs []string                   `json:"widget_ids"`
}

type reorderService interface {
	ReorderWidgets(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext, widgetIDs []string) ([]string, error)
}

// ReorderWidgetsCommand wraps Service.ReorderWidgets.
type ReorderWidgetsCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewReorderWidgetsCommand builds the command.
func NewReorderWidgetsCommand(service reorderService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute applies the new ordering.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	order, err := c.service.ReorderWidgets(ctx, msg.Viewer, msg.Context, msg.WidgetIDs)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reorder", map[string]any{
		"user_id":   msg.Viewer.UserID,
		"context":   string(msg.Context),
		"submitted": len(msg.WidgetIDs),
		"saved":     len(order),
	})
	return nil
}

// ResetWidgetOrderInput identifies the order to clear.
type ResetWidgetOrderInput struct {
	Viewer  dashboard.ViewerContext    `json:"viewer"`
	Context dashboard.DashboardContext `json:"context"`
}

type resetOrderService interface {
	ResetWidgetOrder(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext) error
}

// ResetWidgetOrderCommand wraps Service.ResetWidgetOrder.
type ResetWidgetOrderCommand struct {
	service   resetOrderService
	telemetry Telemetry
}

// NewResetWidgetOrderCommand builds the command.
func NewResetWidgetOrderCommand(service resetOrderService, telemetry Telemetry) *ResetWidgetOrderCommand {
	return &ResetWidgetOrderCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetWidgetOrderInput] = (*ResetWidgetOrderCommand)(nil)

// Execute clears the saved order.
func (c *ResetWidgetOrderCommand) Execute(ctx context.Context, msg ResetWidgetOrderInput) error {
	if c.service == nil {
		return errors.New("reset order command requires service")
	}
	if err := c.service.ResetWidgetOrder(ctx, msg.Viewer, msg.Context); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reset_order", map[string]any{
		"user_id": msg.Viewer.UserID,
		"context": string(msg.Context),
	})
	return nil
}
