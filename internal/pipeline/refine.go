package pipeline

import "time"

// Refine narrows queried items to those that satisfy the criterion and,
// when a threshold is given, start strictly after it. Items starting
// exactly at the threshold are excluded.
//
// Refine is pure: it never mutates its input and preserves encounter order,
// so repeated application yields the same result.
func Refine(items []Item, c Criterion, threshold *time.Time) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !c.Matches(it) {
			continue
		}
		if threshold != nil && !it.Start.After(*threshold) {
			continue
		}
		out = append(out, it)
	}
	return out
}
