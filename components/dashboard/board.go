package dashboard

import (
	"context"
	"sync"
)

const (
	stackWidth     = 320
	stackRowHeight = 120
)

// BoardOptions configures a Board.
type BoardOptions struct {
	UserID       string
	Context      DashboardContext
	Declarations []WidgetDeclaration
	Store        *Store
	Capabilities Capabilities
	Listener     DragListener
	Telemetry    Telemetry
	// ActivationDistance overrides DefaultActivationDistance when positive.
	ActivationDistance float64
}

// Board is one rendered dashboard: a user, a context and the declarations
// supplied for it. Render resolves and orders the widgets; Drag commits new
// orders back into the store, which the next Render picks up.
type Board struct {
	mu       sync.RWMutex
	opts     BoardOptions
	drag     *DragMachine
	rendered []WidgetDescriptor
}

// NewBoard wires a drag machine that commits into the board's store.
func NewBoard(opts BoardOptions) *Board {
	if opts.Store == nil {
		opts.Store = NewStore(StoreOptions{Telemetry: opts.Telemetry})
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	b := &Board{opts: opts}
	b.drag = NewDragMachine(DragOptions{
		UserID:    opts.UserID,
		Context:   opts.Context,
		Committer: opts.Store,
		Geometry:  StackGeometry(nil, stackWidth, stackRowHeight),
		Listener:  opts.Listener,
		Telemetry: opts.Telemetry,

		ActivationDistance: opts.ActivationDistance,
	})
	return b
}

// SetDeclarations replaces the declarations used by the next Render.
func (b *Board) SetDeclarations(decls []WidgetDeclaration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.Declarations = append([]WidgetDeclaration{}, decls...)
}

// SetCapabilities replaces the capability flags used by the next Render.
func (b *Board) SetCapabilities(caps Capabilities) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.Capabilities = caps
}

// Render initializes the user's settings, filters the declarations and
// applies the saved order. The drag machine's geometry follows the result
// unless a session is in flight, which keeps the geometry it started with.
func (b *Board) Render(ctx context.Context) (Layout, error) {
	if err := b.opts.Store.Initialize(ctx, b.opts.UserID); err != nil {
		return Layout{}, err
	}
	b.mu.Lock()
	available := Resolve(b.opts.Declarations, b.opts.Store.ModuleToggles(b.opts.UserID), b.opts.Capabilities)
	ordered := Reconcile(b.opts.Store.WidgetOrder(b.opts.UserID, b.opts.Context), available)
	b.rendered = ordered
	b.mu.Unlock()
	b.drag.setIdleGeometry(StackGeometry(OrderIDs(ordered), stackWidth, stackRowHeight))
	b.opts.Telemetry.Record(ctx, "dashboard.board.render", map[string]any{
		"user_id": b.opts.UserID,
		"context": string(b.opts.Context),
		"count":   len(ordered),
	})
	return Layout{Context: b.opts.Context, Widgets: append([]WidgetDescriptor{}, ordered...)}, nil
}

// Drag exposes the board's drag machine.
func (b *Board) Drag() *DragMachine {
	return b.drag
}

// UseGeometry installs client bounding boxes for the current drag. The
// rendered order stays authoritative: client ordering is ignored, boxes for
// ids that were not rendered are dropped, and rendered widgets the client did
// not report simply have no box.
func (b *Board) UseGeometry(snapshot GeometrySnapshot) {
	b.mu.RLock()
	filtered := GeometrySnapshot{Order: OrderIDs(b.rendered), Boxes: map[string]Rect{}}
	b.mu.RUnlock()
	for _, id := range filtered.Order {
		if box, ok := snapshot.Boxes[id]; ok {
			filtered.Boxes[id] = box
		}
	}
	b.drag.SetGeometry(filtered)
}
