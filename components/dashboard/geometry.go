package dashboard

// GeometrySnapshot is a view of the rendered board: the widget order plus
// each widget's bounding box. Boards take only the boxes from client
// snapshots; the order always comes from the last render.
type GeometrySnapshot struct {
	Order []string        `json:"order"`
	Boxes map[string]Rect `json:"boxes"`
}

// CurrentOrderedIDs implements Geometry.
func (g GeometrySnapshot) CurrentOrderedIDs() []string {
	return g.Order
}

// BoundingBoxOf implements Geometry.
func (g GeometrySnapshot) BoundingBoxOf(id string) (Rect, bool) {
	box, ok := g.Boxes[id]
	return box, ok
}

// StackGeometry lays widgets out as a single column of equal rows. It backs
// boards that have no client geometry (keyboard moves, CLI, tests).
func StackGeometry(ids []string, width, rowHeight float64) GeometrySnapshot {
	boxes := make(map[string]Rect, len(ids))
	for idx, id := range ids {
		boxes[id] = Rect{X: 0, Y: float64(idx) * rowHeight, Width: width, Height: rowHeight}
	}
	return GeometrySnapshot{Order: append([]string{}, ids...), Boxes: boxes}
}
