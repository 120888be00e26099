package availability

import (
	"sort"
	"time"
)

// interval is a half-open [start, end) block of time.
type interval struct {
	start time.Time
	end   time.Time
}

func (iv interval) valid() bool {
	return iv.start.Before(iv.end)
}

func (iv interval) overlaps(other interval) bool {
	return iv.start.Before(other.end) && other.start.Before(iv.end)
}

// mergeIntervals sorts and coalesces overlapping or touching intervals.
// Recurring and specific windows are additive, so a specific window already
// covered by a recurring one collapses into it here.
func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}

	sorted := make([]interval, 0, len(in))
	for _, iv := range in {
		if iv.valid() {
			sorted = append(sorted, iv)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start.Before(sorted[j].start) })

	merged := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.start.After(last.end) {
			if iv.end.After(last.end) {
				last.end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// subtractInterval removes cut from each interval, splitting where the cut
// lands in the middle.
func subtractInterval(in []interval, cut interval) []interval {
	if !cut.valid() {
		return in
	}

	var out []interval
	for _, iv := range in {
		if !iv.overlaps(cut) {
			out = append(out, iv)
			continue
		}
		if iv.start.Before(cut.start) {
			out = append(out, interval{start: iv.start, end: cut.start})
		}
		if cut.end.Before(iv.end) {
			out = append(out, interval{start: cut.end, end: iv.end})
		}
	}
	return out
}

// subtractAll removes every cut from the interval set.
func subtractAll(in []interval, cuts []interval) []interval {
	out := in
	for _, cut := range cuts {
		out = subtractInterval(out, cut)
	}
	return out
}

// clip trims iv to the bounds [from, to).
func clip(iv interval, from, to time.Time) interval {
	if iv.start.Before(from) {
		iv.start = from
	}
	if iv.end.After(to) {
		iv.end = to
	}
	return iv
}
