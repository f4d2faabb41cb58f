package dashboard

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type recordingCommitter struct {
	calls [][]string
	err   error
}

func (c *recordingCommitter) SetWidgetOrder(_ context.Context, _ string, _ DashboardContext, ids []string) error {
	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, append([]string{}, ids...))
	return nil
}

func newTestDrag(ids []string, committer OrderCommitter, listener DragListener) *DragMachine {
	m := NewDragMachine(DragOptions{
		UserID:       "user-1",
		Context:      ContextAdmin,
		Committer:    committer,
		Geometry:     StackGeometry(ids, 100, 100),
		Listener:     listener,
		NewSessionID: func() string { return "session-1" },
	})
	m.SetDragMode(true)
	return m
}

func TestDragCommitsArrayMove(t *testing.T) {
	committer := &recordingCommitter{}
	m := newTestDrag([]string{"w1", "w2", "w3"}, committer, DragListener{})
	session, err := m.Start(context.Background(), "w3")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if session.SourceIndex != 2 || session.ID != "session-1" {
		t.Fatalf("unexpected session %+v", session)
	}
	// w3 sits at y=200; moving up 200px centers it on w1.
	over, err := m.Move(Point{Y: -200})
	if err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if over.CurrentOverID != "w1" {
		t.Fatalf("expected hover over w1, got %q", over.CurrentOverID)
	}
	res, err := m.End(context.Background())
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	want := []string{"w3", "w1", "w2"}
	if res.Outcome != OutcomeCommitted || !slices.Equal(res.Order, want) {
		t.Fatalf("expected committed %v, got %+v", want, res)
	}
	if len(committer.calls) != 1 || !slices.Equal(committer.calls[0], want) {
		t.Fatalf("expected one commit of %v, got %v", want, committer.calls)
	}
	if m.State() != DragIdle {
		t.Fatalf("expected idle after end, got %s", m.State())
	}
}

func TestDragDropOnSelfCancels(t *testing.T) {
	committer := &recordingCommitter{}
	cancelled := 0
	m := newTestDrag([]string{"w1", "w2"}, committer, DragListener{OnCancel: func(DragResult) { cancelled++ }})
	if _, err := m.Start(context.Background(), "w1"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := m.Move(Point{X: 20, Y: 10}); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	res, err := m.End(context.Background())
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if res.Outcome != OutcomeCancelled || len(committer.calls) != 0 || cancelled != 1 {
		t.Fatalf("expected cancel without commit, got %+v calls=%v cancelled=%d", res, committer.calls, cancelled)
	}
}

func TestDragBelowActivationDistanceStaysOverSelf(t *testing.T) {
	m := newTestDrag([]string{"w1", "w2"}, &recordingCommitter{}, DragListener{})
	if _, err := m.Start(context.Background(), "w1"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	session, _ := m.Move(Point{Y: 5})
	if session.CurrentOverID != "w1" {
		t.Fatalf("expected hover to stay on w1 below activation distance, got %q", session.CurrentOverID)
	}
}

func TestDragExplicitCancelDoesNotWrite(t *testing.T) {
	committer := &recordingCommitter{}
	m := newTestDrag([]string{"w1", "w2", "w3"}, committer, DragListener{})
	_, _ = m.Start(context.Background(), "w1")
	_, _ = m.MoveBy(2)
	res, err := m.Cancel(context.Background())
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if res.Outcome != OutcomeCancelled || len(committer.calls) != 0 {
		t.Fatalf("expected cancel without commit, got %+v", res)
	}
	if !slices.Equal(res.Order, []string{"w1", "w2", "w3"}) {
		t.Fatalf("expected order unchanged, got %v", res.Order)
	}
}

func TestDragRefusals(t *testing.T) {
	m := NewDragMachine(DragOptions{Geometry: StackGeometry([]string{"w1", "w2"}, 100, 100)})
	if _, err := m.Start(context.Background(), "w1"); !errors.Is(err, ErrDragModeDisabled) {
		t.Fatalf("expected drag mode disabled, got %v", err)
	}
	m.SetDragMode(true)
	if _, err := m.Start(context.Background(), "missing"); !errors.Is(err, ErrUnknownWidget) {
		t.Fatalf("expected unknown widget, got %v", err)
	}
	if _, err := m.Start(context.Background(), "w1"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := m.Start(context.Background(), "w2"); !errors.Is(err, ErrDragInProgress) {
		t.Fatalf("expected single active drag, got %v", err)
	}
	if _, err := m.End(context.Background()); err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if _, err := m.End(context.Background()); !errors.Is(err, ErrNoActiveDrag) {
		t.Fatalf("expected no active drag, got %v", err)
	}
}

func TestDragSecondStartLeavesFirstSessionIntact(t *testing.T) {
	committer := &recordingCommitter{}
	m := newTestDrag([]string{"w1", "w2", "w3"}, committer, DragListener{})
	if _, err := m.Start(context.Background(), "w3"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := m.Start(context.Background(), "w1"); !errors.Is(err, ErrDragInProgress) {
		t.Fatalf("expected single active drag, got %v", err)
	}
	session, err := m.MoveTo(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("MoveTo returned error: %v", err)
	}
	if session.ActiveWidgetID != "w3" || session.CurrentOverID != "w1" {
		t.Fatalf("unexpected session %+v", session)
	}
	res, err := m.End(context.Background())
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if res.Outcome != OutcomeCommitted || !slices.Equal(res.Order, []string{"w3", "w1", "w2"}) {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(committer.calls) != 1 || !slices.Equal(committer.calls[0], []string{"w3", "w1", "w2"}) {
		t.Fatalf("expected first session's order committed once, got %v", committer.calls)
	}
}

func TestDragModeOffCancelsSession(t *testing.T) {
	m := newTestDrag([]string{"w1", "w2"}, &recordingCommitter{}, DragListener{})
	_, _ = m.Start(context.Background(), "w1")
	m.SetDragMode(false)
	if _, ok := m.Session(); ok {
		t.Fatalf("expected session cancelled when drag mode is turned off")
	}
}

func TestDragMoveByClampsAndCommits(t *testing.T) {
	committer := &recordingCommitter{}
	var overs []string
	m := newTestDrag([]string{"w1", "w2", "w3"}, committer, DragListener{
		OnDragOver: func(s DragSession) { overs = append(overs, s.CurrentOverID) },
	})
	_, _ = m.Start(context.Background(), "w1")
	session, _ := m.MoveBy(10)
	if session.CurrentOverID != "w3" {
		t.Fatalf("expected clamp to last widget, got %q", session.CurrentOverID)
	}
	res, err := m.End(context.Background())
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if !slices.Equal(res.Order, []string{"w2", "w3", "w1"}) {
		t.Fatalf("unexpected order %v", res.Order)
	}
	if !slices.Equal(overs, []string{"w3"}) {
		t.Fatalf("expected one drag-over callback, got %v", overs)
	}
}

func TestDragCommitFailureKeepsOrder(t *testing.T) {
	committer := &recordingCommitter{err: errors.New("offline")}
	m := newTestDrag([]string{"w1", "w2"}, committer, DragListener{})
	_, _ = m.Start(context.Background(), "w2")
	_, _ = m.MoveBy(-1)
	res, err := m.End(context.Background())
	if err == nil {
		t.Fatalf("expected commit error")
	}
	if res.Outcome != OutcomeFailed || !slices.Equal(res.Order, []string{"w1", "w2"}) {
		t.Fatalf("unexpected result %+v", res)
	}
	if m.State() != DragIdle {
		t.Fatalf("expected idle after failed commit")
	}
}

func TestDragMoveToUsesClosestCenter(t *testing.T) {
	geometry := GeometrySnapshot{
		Order: []string{"a", "b", "c"},
		Boxes: map[string]Rect{
			"a": {X: 0, Y: 0, Width: 100, Height: 100},
			"b": {X: 120, Y: 0, Width: 100, Height: 100},
			"c": {X: 240, Y: 0, Width: 100, Height: 100},
		},
	}
	m := NewDragMachine(DragOptions{Geometry: geometry})
	m.SetDragMode(true)
	_, _ = m.Start(context.Background(), "a")
	session, _ := m.MoveTo(Rect{X: 200, Y: 10, Width: 100, Height: 100})
	if session.CurrentOverID != "c" {
		t.Fatalf("expected closest center c, got %q", session.CurrentOverID)
	}
}
