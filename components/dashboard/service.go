package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

var errModuleUnavailable = errors.New("dashboard: module is not available for role")

// Options configures the dashboard Service. Collaborators are provided via
// interface or constructor so applications can swap storage and transports.
type Options struct {
	Store              *Store
	Registry           *Registry
	Capabilities       CapabilityResolver
	RefreshHook        RefreshHook
	Telemetry          Telemetry
	Logger             logrus.FieldLogger
	ActivationDistance float64
}

// Service orchestrates per-user dashboard settings, widget resolution and drag
// sessions. The Store holds one active user at a time, so every call switches
// it to the caller and runs serialized.
type Service struct {
	opts   Options
	mu     sync.Mutex
	boards map[boardKey]*Board
}

type boardKey struct {
	userID  string
	context DashboardContext
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	if opts.Store == nil {
		opts.Store = NewStore(StoreOptions{Telemetry: opts.Telemetry})
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Capabilities == nil {
		opts.Capabilities = roleCapabilities{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	return &Service{opts: opts, boards: map[boardKey]*Board{}}
}

// Store exposes the underlying settings store.
func (s *Service) Store() *Store {
	return s.opts.Store
}

// Registry exposes the declaration registry.
func (s *Service) Registry() *Registry {
	return s.opts.Registry
}

// Layout resolves and orders the widgets a viewer sees on a dashboard. An
// empty context falls back to the viewer's role context.
func (s *Service) Layout(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return Layout{}, err
	}
	layout, err := board.Render(ctx)
	if err != nil {
		return Layout{}, err
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer":  viewer.UserID,
		"context": string(layout.Context),
		"count":   len(layout.Widgets),
	})
	return layout, nil
}

// ReorderWidgets persists a client-submitted order. The ids are reconciled
// against the widgets currently available so unknown ids are dropped and
// unlisted widgets keep their place at the end.
func (s *Service) ReorderWidgets(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext, widgetIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return nil, err
	}
	layout, err := board.Render(ctx)
	if err != nil {
		return nil, err
	}
	order := OrderIDs(Reconcile(widgetIDs, layout.Widgets))
	if err := s.opts.Store.SetWidgetOrder(ctx, viewer.UserID, layout.Context, order); err != nil {
		return nil, err
	}
	s.notify(ctx, SettingsEvent{UserID: viewer.UserID, Context: layout.Context, Reason: "reorder", Order: order})
	s.recordTelemetry(ctx, "dashboard.widget.reorder", map[string]any{
		"viewer":  viewer.UserID,
		"context": string(layout.Context),
		"count":   len(order),
	})
	return order, nil
}

// WidgetOrder returns the saved order for a context.
func (s *Service) WidgetOrder(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dashCtx, err := s.activate(ctx, viewer, dashCtx)
	if err != nil {
		return nil, err
	}
	return s.opts.Store.WidgetOrder(viewer.UserID, dashCtx), nil
}

// ResetWidgetOrder clears the saved order so declaration order applies again.
func (s *Service) ResetWidgetOrder(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dashCtx, err := s.activate(ctx, viewer, dashCtx)
	if err != nil {
		return err
	}
	if err := s.opts.Store.ResetWidgetOrder(ctx, viewer.UserID, dashCtx); err != nil {
		return err
	}
	s.notify(ctx, SettingsEvent{UserID: viewer.UserID, Context: dashCtx, Reason: "reset_order"})
	return nil
}

// ToggleModule flips a module the viewer's role may manage.
func (s *Service) ToggleModule(ctx context.Context, viewer ViewerContext, module ModuleName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(AvailableModules(viewer.Role), module) {
		return fmt.Errorf("%w: %s", errModuleUnavailable, module)
	}
	if err := s.activateUser(ctx, viewer); err != nil {
		return err
	}
	if err := s.opts.Store.ToggleModule(ctx, viewer.UserID, module); err != nil {
		return err
	}
	s.notify(ctx, SettingsEvent{UserID: viewer.UserID, Reason: "toggle_module"})
	s.recordTelemetry(ctx, "dashboard.module.toggle", map[string]any{
		"viewer": viewer.UserID,
		"module": string(module),
	})
	return nil
}

// SetAllModules enables or disables every module available to the viewer's role.
func (s *Service) SetAllModules(ctx context.Context, viewer ViewerContext, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activateUser(ctx, viewer); err != nil {
		return err
	}
	available := AvailableModules(viewer.Role)
	if len(available) == 0 {
		return nil
	}
	modules := make(map[ModuleName]bool, len(available))
	for _, m := range available {
		modules[m] = enabled
	}
	if err := s.opts.Store.SetModules(ctx, viewer.UserID, modules); err != nil {
		return err
	}
	s.notify(ctx, SettingsEvent{UserID: viewer.UserID, Reason: "set_modules"})
	return nil
}

// ResetSettings restores defaults for the viewer, keeping the user id.
func (s *Service) ResetSettings(ctx context.Context, viewer ViewerContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activateUser(ctx, viewer); err != nil {
		return err
	}
	if err := s.opts.Store.ResetAll(ctx, viewer.UserID); err != nil {
		return err
	}
	s.notify(ctx, SettingsEvent{UserID: viewer.UserID, Reason: "reset"})
	return nil
}

// UpdatePreferences applies a preferences patch.
func (s *Service) UpdatePreferences(ctx context.Context, viewer ViewerContext, patch PreferencesPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activateUser(ctx, viewer); err != nil {
		return err
	}
	if err := s.opts.Store.UpdatePreferences(ctx, viewer.UserID, patch); err != nil {
		return err
	}
	s.notify(ctx, SettingsEvent{UserID: viewer.UserID, Reason: "preferences"})
	return nil
}

// Settings returns a snapshot of the viewer's settings.
func (s *Service) Settings(ctx context.Context, viewer ViewerContext) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activateUser(ctx, viewer); err != nil {
		return Settings{}, err
	}
	return s.opts.Store.Snapshot(viewer.UserID)
}

// ExportSettings returns the viewer's record as indented JSON.
func (s *Service) ExportSettings(ctx context.Context, viewer ViewerContext) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activateUser(ctx, viewer); err != nil {
		return "", err
	}
	return s.opts.Store.Export(viewer.UserID)
}

// ImportSettings replaces the viewer's record with an exported one.
func (s *Service) ImportSettings(ctx context.Context, viewer ViewerContext, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activateUser(ctx, viewer); err != nil {
		return err
	}
	if err := s.opts.Store.Import(ctx, viewer.UserID, text); err != nil {
		s.opts.Logger.WithError(err).WithField("user_id", viewer.UserID).Warn("dashboard: settings import rejected")
		return err
	}
	s.notify(ctx, SettingsEvent{UserID: viewer.UserID, Reason: "import"})
	return nil
}

// AvailableModules lists the modules a role may toggle.
func (s *Service) AvailableModules(role string) []ModuleName {
	return AvailableModules(role)
}

// SetDragMode toggles drag interactions for a viewer's board.
func (s *Service) SetDragMode(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return err
	}
	board.Drag().SetDragMode(enabled)
	return nil
}

// DragMode reports whether drag interactions are enabled for a board.
func (s *Service) DragMode(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return false, err
	}
	return board.Drag().DragMode(), nil
}

// StartDrag renders the board and starts a drag on widgetID. Client geometry,
// when supplied, replaces the stacked default used for collision checks.
func (s *Service) StartDrag(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext, widgetID string, geometry *GeometrySnapshot) (DragSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return DragSession{}, err
	}
	if _, ok := board.Drag().Session(); ok {
		return DragSession{}, ErrDragInProgress
	}
	if _, err := board.Render(ctx); err != nil {
		return DragSession{}, err
	}
	if geometry != nil {
		board.UseGeometry(*geometry)
	}
	return board.Drag().Start(ctx, widgetID)
}

// DragMove reports pointer or keyboard movement during a drag. Exactly one
// of Offset, Rect or Step is expected; Offset wins over Rect, Rect over Step.
type DragMove struct {
	Offset *Point `json:"offset,omitempty"`
	Rect   *Rect  `json:"rect,omitempty"`
	Step   int    `json:"step,omitempty"`
}

// DragOver advances the active drag.
func (s *Service) DragOver(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext, move DragMove) (DragSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return DragSession{}, err
	}
	switch {
	case move.Offset != nil:
		return board.Drag().Move(*move.Offset)
	case move.Rect != nil:
		return board.Drag().MoveTo(*move.Rect)
	default:
		return board.Drag().MoveBy(move.Step)
	}
}

// EndDrag drops the dragged widget and persists the new order when it moved.
func (s *Service) EndDrag(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (DragResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return DragResult{}, err
	}
	if err := s.opts.Store.Initialize(ctx, viewer.UserID); err != nil {
		return DragResult{}, err
	}
	res, err := board.Drag().End(ctx)
	if err != nil {
		return res, err
	}
	if res.Outcome == OutcomeCommitted {
		s.notify(ctx, SettingsEvent{UserID: viewer.UserID, Context: board.opts.Context, Reason: "drag", Order: res.Order})
	}
	return res, nil
}

// DragSession reports the viewer's in-flight drag, if any.
func (s *Service) DragSession(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (DragSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return DragSession{}, false, err
	}
	session, ok := board.Drag().Session()
	return session, ok, nil
}

// CancelDrag aborts the active drag without persisting.
func (s *Service) CancelDrag(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (DragResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.board(ctx, viewer, dashCtx)
	if err != nil {
		return DragResult{}, err
	}
	return board.Drag().Cancel(ctx)
}

// NotifySettingsChanged exposes refresh hook invocation for commands/transports.
func (s *Service) NotifySettingsChanged(ctx context.Context, event SettingsEvent) {
	s.notify(ctx, event)
}

func (s *Service) notify(ctx context.Context, event SettingsEvent) {
	if err := s.opts.RefreshHook.SettingsChanged(ctx, event); err != nil {
		s.opts.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id": event.UserID,
			"reason":  event.Reason,
		}).Warn("dashboard: refresh hook failed")
	}
	s.recordTelemetry(ctx, "dashboard.settings.event", map[string]any{
		"user_id": event.UserID,
		"context": string(event.Context),
		"reason":  event.Reason,
	})
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// activate resolves the context and makes the viewer the store's active user.
func (s *Service) activate(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (DashboardContext, error) {
	if viewer.UserID == "" {
		return "", errMissingUserID
	}
	dashCtx, err := s.resolveContext(viewer, dashCtx)
	if err != nil {
		return "", err
	}
	return dashCtx, s.activateUser(ctx, viewer)
}

func (s *Service) activateUser(ctx context.Context, viewer ViewerContext) error {
	if viewer.UserID == "" {
		return errMissingUserID
	}
	return s.opts.Store.Initialize(ctx, viewer.UserID)
}

func (s *Service) resolveContext(viewer ViewerContext, dashCtx DashboardContext) (DashboardContext, error) {
	if dashCtx != "" {
		return dashCtx, nil
	}
	if roleCtx, ok := ContextForRole(viewer.Role); ok {
		return roleCtx, nil
	}
	return "", errMissingContext
}

// board returns the cached board for (viewer, context), refreshed with the
// registry's current declarations and the viewer's capabilities.
func (s *Service) board(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (*Board, error) {
	if viewer.UserID == "" {
		return nil, errMissingUserID
	}
	dashCtx, err := s.resolveContext(viewer, dashCtx)
	if err != nil {
		return nil, err
	}
	decls, ok := s.opts.Registry.Declarations(dashCtx)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownContext, dashCtx)
	}
	key := boardKey{userID: viewer.UserID, context: dashCtx}
	board, ok := s.boards[key]
	if !ok {
		board = NewBoard(BoardOptions{
			UserID:             viewer.UserID,
			Context:            dashCtx,
			Store:              s.opts.Store,
			Telemetry:          s.opts.Telemetry,
			ActivationDistance: s.opts.ActivationDistance,
		})
		s.boards[key] = board
	}
	board.SetDeclarations(decls)
	board.SetCapabilities(s.opts.Capabilities.Capabilities(ctx, viewer))
	return board, nil
}

// roleCapabilities grants a single "role:<role>" flag.
type roleCapabilities struct{}

func (roleCapabilities) Capabilities(_ context.Context, viewer ViewerContext) Capabilities {
	if viewer.Role == "" {
		return Capabilities{}
	}
	return Capabilities{"role:" + viewer.Role: true}
}

type noopRefreshHook struct{}

func (noopRefreshHook) SettingsChanged(context.Context, SettingsEvent) error {
	return nil
}
