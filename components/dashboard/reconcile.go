package dashboard

import (
	"cmp"
	"math"
	"slices"
)

// Reconcile orders the available widgets by the user's saved order. Ids missing
// from saved keep their declaration order after the saved ones; stale ids in
// saved are ignored; duplicates count at their first position. Ordinals are
// re-assigned 0..N-1. The input slices are never modified.
func Reconcile(saved []string, available []WidgetDescriptor) []WidgetDescriptor {
	out := make([]WidgetDescriptor, len(available))
	copy(out, available)
	if len(saved) > 0 {
		rank := make(map[string]int, len(saved))
		for idx, id := range saved {
			if _, ok := rank[id]; !ok {
				rank[id] = idx
			}
		}
		key := func(id string) int {
			if idx, ok := rank[id]; ok {
				return idx
			}
			return math.MaxInt
		}
		slices.SortStableFunc(out, func(a, b WidgetDescriptor) int {
			return cmp.Compare(key(a.ID), key(b.ID))
		})
	}
	for idx := range out {
		out[idx].Ordinal = idx
	}
	return out
}

// OrderIDs lists descriptor ids in their current order.
func OrderIDs(descriptors []WidgetDescriptor) []string {
	ids := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		ids = append(ids, d.ID)
	}
	return ids
}
