package dashboard

import (
	"context"
	"slices"
	"testing"
)

func testDeclarations() []WidgetDeclaration {
	return []WidgetDeclaration{
		{ID: "w1", Title: "One", Requires: RequireModule(ModuleClinicalAI)},
		{ID: "w2", Title: "Two", Requires: RequireModule(ModuleSupplyChain)},
		{ID: "w3", Title: "Three", Requires: RequireModule(ModulePatientFlow)},
	}
}

func TestBoardDragRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore(StoreOptions{Backend: NewMemoryBackend()})
	board := NewBoard(BoardOptions{
		UserID:       "user-1",
		Context:      ContextAdmin,
		Declarations: testDeclarations(),
		Store:        store,
	})
	layout, err := board.Render(ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if ids := OrderIDs(layout.Widgets); !slices.Equal(ids, []string{"w1", "w2", "w3"}) {
		t.Fatalf("expected declaration order, got %v", ids)
	}

	drag := board.Drag()
	drag.SetDragMode(true)
	if _, err := drag.Start(ctx, "w3"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := drag.MoveBy(-2); err != nil {
		t.Fatalf("MoveBy returned error: %v", err)
	}
	if _, err := drag.End(ctx); err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if saved := store.WidgetOrder("user-1", ContextAdmin); !slices.Equal(saved, []string{"w3", "w1", "w2"}) {
		t.Fatalf("expected committed order persisted, got %v", saved)
	}

	layout, err = board.Render(ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if ids := OrderIDs(layout.Widgets); !slices.Equal(ids, []string{"w3", "w1", "w2"}) {
		t.Fatalf("expected next render to use saved order, got %v", ids)
	}
}

func TestBoardHidesDisabledModulesAndAppendsReenabled(t *testing.T) {
	ctx := context.Background()
	store := NewStore(StoreOptions{Backend: NewMemoryBackend()})
	board := NewBoard(BoardOptions{UserID: "user-1", Context: ContextAdmin, Declarations: testDeclarations(), Store: store})
	if _, err := board.Render(ctx); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	_ = store.ToggleModule(ctx, "user-1", ModuleClinicalAI)
	_ = store.SetWidgetOrder(ctx, "user-1", ContextAdmin, []string{"w3", "w2"})
	layout, _ := board.Render(ctx)
	if ids := OrderIDs(layout.Widgets); !slices.Equal(ids, []string{"w3", "w2"}) {
		t.Fatalf("expected disabled widget hidden, got %v", ids)
	}
	_ = store.ToggleModule(ctx, "user-1", ModuleClinicalAI)
	layout, _ = board.Render(ctx)
	if ids := OrderIDs(layout.Widgets); !slices.Equal(ids, []string{"w3", "w2", "w1"}) {
		t.Fatalf("expected re-enabled widget appended, got %v", ids)
	}
}

func TestBoardUseGeometryKeepsRenderedOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore(StoreOptions{Backend: NewMemoryBackend()})
	board := NewBoard(BoardOptions{UserID: "user-1", Context: ContextAdmin, Declarations: testDeclarations(), Store: store})
	if err := store.Initialize(ctx, "user-1"); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if err := store.SetWidgetOrder(ctx, "user-1", ContextAdmin, []string{"w3", "w1", "w2"}); err != nil {
		t.Fatalf("SetWidgetOrder returned error: %v", err)
	}
	if _, err := board.Render(ctx); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	// The client only reports the widgets it can see, in its own order.
	board.UseGeometry(GeometrySnapshot{
		Order: []string{"ghost", "w1", "w2"},
		Boxes: map[string]Rect{
			"ghost": {X: 0, Y: 0, Width: 100, Height: 100},
			"w1":    {X: 0, Y: 0, Width: 100, Height: 100},
			"w2":    {X: 0, Y: 120, Width: 100, Height: 100},
		},
	})
	drag := board.Drag()
	drag.SetDragMode(true)
	if _, err := drag.Start(ctx, "ghost"); err == nil {
		t.Fatalf("expected ghost widget to be rejected")
	}
	session, err := drag.Start(ctx, "w2")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if session.SourceIndex != 2 {
		t.Fatalf("expected rendered order to be used, got source %d", session.SourceIndex)
	}
	if session, _ = drag.MoveBy(-1); session.CurrentOverID != "w1" {
		t.Fatalf("expected hover on w1, got %q", session.CurrentOverID)
	}
	res, err := drag.End(ctx)
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if !slices.Equal(res.Order, []string{"w3", "w2", "w1"}) {
		t.Fatalf("expected unreported widget to keep its position, got %v", res.Order)
	}
	if saved := store.WidgetOrder("user-1", ContextAdmin); !slices.Equal(saved, []string{"w3", "w2", "w1"}) {
		t.Fatalf("expected full order persisted, got %v", saved)
	}
	layout, err := board.Render(ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if ids := OrderIDs(layout.Widgets); !slices.Equal(ids, []string{"w3", "w2", "w1"}) {
		t.Fatalf("unexpected layout %v", ids)
	}
}

func TestBoardRenderKeepsClientGeometryDuringDrag(t *testing.T) {
	ctx := context.Background()
	board := NewBoard(BoardOptions{UserID: "user-1", Context: ContextAdmin, Declarations: testDeclarations()})
	if _, err := board.Render(ctx); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	row := map[string]Rect{
		"w1": {X: 0, Y: 0, Width: 100, Height: 100},
		"w2": {X: 120, Y: 0, Width: 100, Height: 100},
		"w3": {X: 240, Y: 0, Width: 100, Height: 100},
	}
	board.UseGeometry(GeometrySnapshot{Boxes: row})
	drag := board.Drag()
	drag.SetDragMode(true)
	if _, err := drag.Start(ctx, "w1"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := board.Render(ctx); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	session, err := drag.MoveTo(row["w3"])
	if err != nil {
		t.Fatalf("MoveTo returned error: %v", err)
	}
	if session.CurrentOverID != "w3" {
		t.Fatalf("expected client geometry to survive the render, got %q", session.CurrentOverID)
	}
	if _, err := drag.Cancel(ctx); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	// Once idle, the next render restores the stacked column.
	if _, err := board.Render(ctx); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if _, err := drag.Start(ctx, "w1"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	session, _ = drag.MoveTo(Rect{X: 0, Y: 2 * stackRowHeight, Width: stackWidth, Height: stackRowHeight})
	if session.CurrentOverID != "w3" {
		t.Fatalf("expected stacked geometry after idle render, got %q", session.CurrentOverID)
	}
}

func TestBoardResetOrderRendersDeclarationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore(StoreOptions{Backend: NewMemoryBackend()})
	board := NewBoard(BoardOptions{UserID: "user-1", Context: ContextAdmin, Declarations: testDeclarations(), Store: store})
	if _, err := board.Render(ctx); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if err := store.SetWidgetOrder(ctx, "user-1", ContextAdmin, []string{"w3", "w2", "w1"}); err != nil {
		t.Fatalf("SetWidgetOrder returned error: %v", err)
	}
	layout, _ := board.Render(ctx)
	if ids := OrderIDs(layout.Widgets); !slices.Equal(ids, []string{"w3", "w2", "w1"}) {
		t.Fatalf("expected saved order, got %v", ids)
	}
	if err := store.ResetWidgetOrder(ctx, "user-1", ContextAdmin); err != nil {
		t.Fatalf("ResetWidgetOrder returned error: %v", err)
	}
	layout, err := board.Render(ctx)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if ids := OrderIDs(layout.Widgets); !slices.Equal(ids, []string{"w1", "w2", "w3"}) {
		t.Fatalf("expected declaration order after reset, got %v", ids)
	}
}
