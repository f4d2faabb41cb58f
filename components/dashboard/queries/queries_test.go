package queries

import (
	"context"
	"strings"
	"testing"

	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

type stubLayoutService struct {
	calls int
}

func (s *stubLayoutService) Layout(_ context.Context, _ dashboard.ViewerContext, dashCtx dashboard.DashboardContext) (dashboard.Layout, error) {
	s.calls++
	return dashboard.Layout{Context: dashCtx}, nil
}

func TestLayoutQuery(t *testing.T) {
	service := &stubLayoutService{}
	query := NewLayoutQuery(service)
	layout, err := query.Query(context.Background(), LayoutInput{Context: dashboard.ContextAdmin})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || layout.Context != dashboard.ContextAdmin {
		t.Fatalf("expected 1 call for admin, got %d %q", service.calls, layout.Context)
	}
}

func TestSettingsQueriesAgainstService(t *testing.T) {
	ctx := context.Background()
	reg := dashboard.NewEmptyRegistry()
	reg.SetContext(dashboard.ContextAdmin, []dashboard.WidgetDeclaration{{ID: "w1"}, {ID: "w2"}})
	service := dashboard.NewService(dashboard.Options{Registry: reg})
	viewer := dashboard.ViewerContext{UserID: "user-1", Role: dashboard.RoleAdmin}
	if _, err := service.ReorderWidgets(ctx, viewer, dashboard.ContextAdmin, []string{"w2", "w1"}); err != nil {
		t.Fatalf("ReorderWidgets returned error: %v", err)
	}

	order, err := NewWidgetOrderQuery(service).Query(ctx, WidgetOrderInput{Viewer: viewer, Context: dashboard.ContextAdmin})
	if err != nil || len(order) != 2 || order[0] != "w2" {
		t.Fatalf("unexpected order %v %v", order, err)
	}

	exported, err := NewExportSettingsQuery(service).Query(ctx, viewer)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	if !strings.Contains(exported, `"userId": "user-1"`) {
		t.Fatalf("unexpected export %s", exported)
	}

	state, err := NewDragSessionQuery(service).Query(ctx, DragSessionInput{Viewer: viewer, Context: dashboard.ContextAdmin})
	if err != nil || state.Active {
		t.Fatalf("expected no active drag, got %+v %v", state, err)
	}
	_ = service.SetDragMode(ctx, viewer, dashboard.ContextAdmin, true)
	if _, err := service.StartDrag(ctx, viewer, dashboard.ContextAdmin, "w1", nil); err != nil {
		t.Fatalf("StartDrag returned error: %v", err)
	}
	state, _ = NewDragSessionQuery(service).Query(ctx, DragSessionInput{Viewer: viewer, Context: dashboard.ContextAdmin})
	if !state.Active || state.Session.ActiveWidgetID != "w1" {
		t.Fatalf("expected active drag on w1, got %+v", state)
	}
}
