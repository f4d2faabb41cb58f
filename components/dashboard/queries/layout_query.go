package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// LayoutInput selects the dashboard to resolve.
type LayoutInput struct {
	Viewer  dashboard.ViewerContext    `json:"viewer"`
	Context dashboard.DashboardContext `json:"context"`
}

type layoutService interface {
	Layout(ctx context.Context, viewer dashboard.ViewerContext, dashCtx dashboard.DashboardContext) (dashboard.Layout, error)
}

// LayoutQuery executes read-only layout resolution.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[LayoutInput, dashboard.Layout] = (*LayoutQuery)(nil)

// Query resolves the layout for the viewer.
func (q *LayoutQuery) Query(ctx context.Context, input LayoutInput) (dashboard.Layout, error) {
	return q.service.Layout(ctx, input.Viewer, input.Context)
}
