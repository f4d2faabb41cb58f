package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// WidgetOrderInput selects the saved order to read.
type WidgetOrderInput struct {
	Viewer  dashboard.ViewerContext    `json:"viewer"`
	Context dashboard.DashboardContext `json:"context"`
}

type widgetOrderService interface {
	WidgetOrder(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext) ([]string, error)
}

// WidgetOrderQuery returns the saved order for a context.
type WidgetOrderQuery struct {
	service widgetOrderService
}

// NewWidgetOrderQuery builds the query.
func NewWidgetOrderQuery(service widgetOrderService) *WidgetOrderQuery {
	return &WidgetOrderQuery{service: service}
}

var _ gocommand.Querier[WidgetOrderInput, []string] = (*WidgetOrderQuery)(nil)

// Query returns the saved order.
func (q *WidgetOrderQuery) Query(ctx context.Context, input WidgetOrderInput) ([]string, error) {
	return q.service.WidgetOrder(ctx, input.Viewer, input.Context)
}

type exportService interface {
	ExportSettings(ctx context.Context, viewer dashboard.ViewerContext) (string, error)
}

// ExportSettingsQuery returns the viewer's settings as indented JSON.
type ExportSettingsQuery struct {
	service exportService
}

// NewExportSettingsQuery builds the query.
func NewExportSettingsQuery(service exportService) *ExportSettingsQuery {
	return &ExportSettingsQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, string] = (*ExportSettingsQuery)(nil)

// Query exports the settings.
func (q *ExportSettingsQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (string, error) {
	return q.service.ExportSettings(ctx, viewer)
}

// DragSessionInput selects the board whose drag is inspected.
type DragSessionInput struct {
	Viewer  dashboard.ViewerContext    `json:"viewer"`
	Context dashboard.DashboardContext `json:"context"`
}

// DragSessionState is the query result; Active is false when no drag runs.
type DragSessionState struct {
	Active  bool                  `json:"active"`
	Session dashboard.DragSession `json:"session"`
}

type dragSessionService interface {
	DragSession(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext) (dashboard.DragSession, bool, error)
}

// DragSessionQuery reports the in-flight drag.
type DragSessionQuery struct {
	service dragSessionService
}

// NewDragSessionQuery builds the query.
func NewDragSessionQuery(service dragSessionService) *DragSessionQuery {
	return &DragSessionQuery{service: service}
}

var _ gocommand.Querier[DragSessionInput, DragSessionState] = (*DragSessionQuery)(nil)

// Query returns the drag state.
func (q *DragSessionQuery) Query(ctx context.Context, input DragSessionInput) (DragSessionState, error) {
	session, ok, err := q.service.DragSession(ctx, input.Viewer, input.Context)
	if err != nil {
		return DragSessionState{}, err
	}
	return DragSessionState{Active: ok, Session: session}, nil
}
