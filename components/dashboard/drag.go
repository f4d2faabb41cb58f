package dashboard

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultActivationDistance is how far (in px) a pointer must travel before a
// drag starts tracking collisions.
const DefaultActivationDistance = 8.0

var (
	ErrDragModeDisabled = errors.New("dashboard: drag mode is disabled")
	ErrDragInProgress   = errors.New("dashboard: another drag is in progress")
	ErrUnknownWidget    = errors.New("dashboard: widget is not rendered")
	ErrNoActiveDrag     = errors.New("dashboard: no drag in progress")
)

// Point is a 2D offset in layout pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the box.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translate shifts the box by offset.
func (r Rect) Translate(offset Point) Rect {
	r.X += offset.X
	r.Y += offset.Y
	return r
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Geometry reports the rendered widgets of a board.
type Geometry interface {
	CurrentOrderedIDs() []string
	BoundingBoxOf(id string) (Rect, bool)
}

// DragState is the lifecycle position of a DragMachine.
type DragState string

const (
	DragIdle       DragState = "idle"
	DragDragging   DragState = "dragging"
	DragCommitting DragState = "committing"
	DragCancelled  DragState = "cancelled"
)

// DragOutcome reports how a session finished.
type DragOutcome string

const (
	OutcomeCommitted DragOutcome = "committed"
	OutcomeCancelled DragOutcome = "cancelled"
	OutcomeFailed    DragOutcome = "failed"
)

// DragSession is the transient state of an in-flight drag.
type DragSession struct {
	ID             string    `json:"id"`
	ActiveWidgetID string    `json:"active_widget_id"`
	SourceIndex    int       `json:"source_index"`
	CurrentOverID  string    `json:"current_over_id,omitempty"`
	StartedAt      time.Time `json:"started_at"`
}

// DragResult is returned when a session ends.
type DragResult struct {
	SessionID string      `json:"session_id"`
	Outcome   DragOutcome `json:"outcome"`
	ActiveID  string      `json:"active_id"`
	OverID    string      `json:"over_id,omitempty"`
	Order     []string    `json:"order"`
}

// DragListener receives lifecycle callbacks. Nil funcs are skipped.
type DragListener struct {
	OnDragStart func(DragSession)
	OnDragOver  func(DragSession)
	OnDragEnd   func(DragResult)
	OnCancel    func(DragResult)
}

// DragOptions configures a DragMachine.
type DragOptions struct {
	UserID             string
	Context            DashboardContext
	Committer          OrderCommitter
	Geometry           Geometry
	ActivationDistance float64
	Listener           DragListener
	Telemetry          Telemetry
	NewSessionID       func() string
	Now                func() time.Time
}

// DragMachine runs one drag session at a time for a single board:
// idle -> dragging -> committing|cancelled -> idle.
type DragMachine struct {
	mu        sync.Mutex
	opts      DragOptions
	dragMode  bool
	state     DragState
	session   DragSession
	origin    Rect
	hasOrigin bool
	activated bool
}

// NewDragMachine builds an idle machine with drag mode off.
func NewDragMachine(opts DragOptions) *DragMachine {
	if opts.ActivationDistance <= 0 {
		opts.ActivationDistance = DefaultActivationDistance
	}
	if opts.NewSessionID == nil {
		opts.NewSessionID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &DragMachine{opts: opts, state: DragIdle}
}

// SetGeometry swaps the geometry source, typically after a re-render.
func (m *DragMachine) SetGeometry(g Geometry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts.Geometry = g
}

// setIdleGeometry swaps the geometry only when no session is dragging.
func (m *DragMachine) setIdleGeometry(g Geometry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != DragDragging {
		m.opts.Geometry = g
	}
}

// SetDragMode toggles the UI gate. Turning it off cancels an active session.
func (m *DragMachine) SetDragMode(enabled bool) {
	m.mu.Lock()
	m.dragMode = enabled
	var cancelled *DragResult
	if !enabled && m.state == DragDragging {
		res := m.cancelLocked()
		cancelled = &res
	}
	m.mu.Unlock()
	if cancelled != nil && m.opts.Listener.OnCancel != nil {
		m.opts.Listener.OnCancel(*cancelled)
	}
}

// DragMode reports the gate.
func (m *DragMachine) DragMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragMode
}

// State reports the lifecycle state.
func (m *DragMachine) State() DragState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the active session, if any.
func (m *DragMachine) Session() (DragSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != DragDragging {
		return DragSession{}, false
	}
	return m.session, true
}

// Start begins a drag on a rendered widget.
func (m *DragMachine) Start(ctx context.Context, widgetID string) (DragSession, error) {
	m.mu.Lock()
	if !m.dragMode {
		m.mu.Unlock()
		return DragSession{}, ErrDragModeDisabled
	}
	if m.state != DragIdle {
		m.mu.Unlock()
		return DragSession{}, ErrDragInProgress
	}
	ids := m.renderedIDs()
	source := slices.Index(ids, widgetID)
	if source < 0 {
		m.mu.Unlock()
		return DragSession{}, ErrUnknownWidget
	}
	m.session = DragSession{
		ID:             m.opts.NewSessionID(),
		ActiveWidgetID: widgetID,
		SourceIndex:    source,
		CurrentOverID:  widgetID,
		StartedAt:      m.opts.Now(),
	}
	m.origin, m.hasOrigin = m.boxOf(widgetID)
	m.activated = false
	m.state = DragDragging
	session := m.session
	m.mu.Unlock()

	m.opts.Telemetry.Record(ctx, "dashboard.drag.start", map[string]any{
		"user_id":   m.opts.UserID,
		"context":   string(m.opts.Context),
		"widget_id": widgetID,
	})
	if m.opts.Listener.OnDragStart != nil {
		m.opts.Listener.OnDragStart(session)
	}
	return session, nil
}

// Move reports the pointer offset from the drag origin.
func (m *DragMachine) Move(offset Point) (DragSession, error) {
	return m.update(func() {
		if !m.activated && math.Hypot(offset.X, offset.Y) < m.opts.ActivationDistance {
			return
		}
		m.activated = true
		if !m.hasOrigin {
			return
		}
		m.session.CurrentOverID = m.closestCenter(m.origin.Translate(offset))
	})
}

// MoveTo reports the absolute position of the dragged box.
func (m *DragMachine) MoveTo(rect Rect) (DragSession, error) {
	return m.update(func() {
		if !m.activated && m.hasOrigin && distance(rect.Center(), m.origin.Center()) < m.opts.ActivationDistance {
			return
		}
		m.activated = true
		m.session.CurrentOverID = m.closestCenter(rect)
	})
}

// MoveBy moves the hover target step positions through the rendered order,
// clamped to the ends. Used for keyboard dragging.
func (m *DragMachine) MoveBy(step int) (DragSession, error) {
	return m.update(func() {
		ids := m.renderedIDs()
		if len(ids) == 0 {
			m.session.CurrentOverID = ""
			return
		}
		cur := slices.Index(ids, m.session.CurrentOverID)
		if cur < 0 {
			cur = slices.Index(ids, m.session.ActiveWidgetID)
		}
		if cur < 0 {
			cur = min(m.session.SourceIndex, len(ids)-1)
		}
		next := max(0, min(len(ids)-1, cur+step))
		m.activated = true
		m.session.CurrentOverID = ids[next]
	})
}

func (m *DragMachine) update(fn func()) (DragSession, error) {
	m.mu.Lock()
	if m.state != DragDragging {
		m.mu.Unlock()
		return DragSession{}, ErrNoActiveDrag
	}
	before := m.session.CurrentOverID
	fn()
	session := m.session
	m.mu.Unlock()
	if session.CurrentOverID != before && m.opts.Listener.OnDragOver != nil {
		m.opts.Listener.OnDragOver(session)
	}
	return session, nil
}

// End finishes the session. Dropping outside every widget or onto the origin
// cancels without writing; otherwise the active widget moves to the hover
// position and the new order is committed.
func (m *DragMachine) End(ctx context.Context) (DragResult, error) {
	m.mu.Lock()
	if m.state != DragDragging {
		m.mu.Unlock()
		return DragResult{}, ErrNoActiveDrag
	}
	session := m.session
	ids := m.renderedIDs()
	from := slices.Index(ids, session.ActiveWidgetID)
	to := slices.Index(ids, session.CurrentOverID)
	if session.CurrentOverID == "" || session.CurrentOverID == session.ActiveWidgetID || from < 0 || to < 0 {
		res := m.cancelLocked()
		m.mu.Unlock()
		m.notifyCancel(ctx, res)
		return res, nil
	}
	m.state = DragCommitting
	moved := Reconcile(arrayMove(ids, from, to), descriptorsFor(ids))
	order := OrderIDs(moved)
	m.mu.Unlock()

	res := DragResult{
		SessionID: session.ID,
		Outcome:   OutcomeCommitted,
		ActiveID:  session.ActiveWidgetID,
		OverID:    session.CurrentOverID,
		Order:     order,
	}
	var err error
	if m.opts.Committer != nil {
		err = m.opts.Committer.SetWidgetOrder(ctx, m.opts.UserID, m.opts.Context, order)
	}
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Order = ids
	}

	m.mu.Lock()
	m.state = DragIdle
	m.session = DragSession{}
	m.mu.Unlock()

	m.opts.Telemetry.Record(ctx, "dashboard.drag.end", map[string]any{
		"user_id":   m.opts.UserID,
		"context":   string(m.opts.Context),
		"widget_id": res.ActiveID,
		"over_id":   res.OverID,
		"outcome":   string(res.Outcome),
	})
	if err != nil {
		return res, err
	}
	if m.opts.Listener.OnDragEnd != nil {
		m.opts.Listener.OnDragEnd(res)
	}
	return res, nil
}

// Cancel aborts the session without writing.
func (m *DragMachine) Cancel(ctx context.Context) (DragResult, error) {
	m.mu.Lock()
	if m.state != DragDragging {
		m.mu.Unlock()
		return DragResult{}, ErrNoActiveDrag
	}
	res := m.cancelLocked()
	m.mu.Unlock()
	m.notifyCancel(ctx, res)
	return res, nil
}

func (m *DragMachine) cancelLocked() DragResult {
	m.state = DragCancelled
	res := DragResult{
		SessionID: m.session.ID,
		Outcome:   OutcomeCancelled,
		ActiveID:  m.session.ActiveWidgetID,
		OverID:    m.session.CurrentOverID,
		Order:     m.renderedIDs(),
	}
	m.session = DragSession{}
	m.state = DragIdle
	return res
}

func (m *DragMachine) notifyCancel(ctx context.Context, res DragResult) {
	m.opts.Telemetry.Record(ctx, "dashboard.drag.cancel", map[string]any{
		"user_id":   m.opts.UserID,
		"context":   string(m.opts.Context),
		"widget_id": res.ActiveID,
	})
	if m.opts.Listener.OnCancel != nil {
		m.opts.Listener.OnCancel(res)
	}
}

func (m *DragMachine) renderedIDs() []string {
	if m.opts.Geometry == nil {
		return []string{}
	}
	return append([]string{}, m.opts.Geometry.CurrentOrderedIDs()...)
}

func (m *DragMachine) boxOf(id string) (Rect, bool) {
	if m.opts.Geometry == nil {
		return Rect{}, false
	}
	return m.opts.Geometry.BoundingBoxOf(id)
}

// closestCenter picks the rendered widget whose center is nearest to the
// dragged box center. The active widget is a candidate. Ties go to the
// earlier widget; no boxes yields "".
func (m *DragMachine) closestCenter(dragged Rect) string {
	center := dragged.Center()
	best := ""
	bestDist := math.Inf(1)
	for _, id := range m.renderedIDs() {
		box, ok := m.boxOf(id)
		if !ok {
			continue
		}
		if d := distance(center, box.Center()); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

// arrayMove removes the element at from and re-inserts it at to.
func arrayMove(ids []string, from, to int) []string {
	out := append([]string{}, ids...)
	if from == to || from < 0 || to < 0 || from >= len(out) || to >= len(out) {
		return out
	}
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

func descriptorsFor(ids []string) []WidgetDescriptor {
	out := make([]WidgetDescriptor, 0, len(ids))
	for idx, id := range ids {
		out = append(out, WidgetDescriptor{ID: id, Ordinal: idx, Enabled: true})
	}
	return out
}
