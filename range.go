package vscroll

import "math"

// Range is a half-open interval [Start, End) of item ids. Ids are signed
// 64-bit integers whose total order defines the display order of items.
// A range with End == Start is empty. Ranges with Start > End never occur
// in controller state; inputs like that are corrected to an empty range.
type Range struct {
	Start, End int64
}

// Unbounded returns the effectively unbounded range covering all ids.
func Unbounded() Range {
	return Range{Start: math.MinInt64, End: math.MaxInt64}
}

// IsEmpty returns whether the range contains no ids.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains returns whether id lies within the range.
func (r Range) Contains(id int64) bool {
	return id >= r.Start && id < r.End
}

// Len returns the number of ids in the range. The result saturates at
// math.MaxInt64 for ranges too large to represent.
func (r Range) Len() int64 {
	if r.IsEmpty() {
		return 0
	}
	length := uint64(r.End) - uint64(r.Start)
	if length > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(length)
}

// Intersect returns the overlap of two ranges. Disjoint ranges produce an
// empty range anchored at the clamp target's start so the result is always
// a valid (possibly empty) range.
func (r Range) Intersect(other Range) Range {
	out := Range{
		Start: max(r.Start, other.Start),
		End:   min(r.End, other.End),
	}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}

// normalized returns the range with Start > End collapsed to empty.
func (r Range) normalized() Range {
	if r.End < r.Start {
		r.End = r.Start
	}
	return r
}

// Diff returns the ids present in r but not in target, and the ids present
// in target but not in r, each as a list of at most two disjoint ranges.
// This is the set difference a driver walks when servicing an Action; it is
// equivalent to the per-element difference but costs O(1) to compute.
func (r Range) Diff(target Range) (removed, added []Range) {
	return r.Without(target), target.Without(r)
}

// Without returns r minus other as a list of at most two disjoint ranges.
func (r Range) Without(other Range) []Range {
	r = r.normalized()
	other = other.normalized()
	if r.IsEmpty() {
		return nil
	}
	if other.IsEmpty() || other.End <= r.Start || other.Start >= r.End {
		return []Range{r}
	}

	var out []Range
	if other.Start > r.Start {
		out = append(out, Range{Start: r.Start, End: other.Start})
	}
	if other.End < r.End {
		out = append(out, Range{Start: other.End, End: r.End})
	}
	return out
}

// Each calls fn for every id in the range, in ascending order.
func (r Range) Each(fn func(id int64)) {
	for id := r.Start; id < r.End; id++ {
		fn(id)
	}
}

// addSat adds delta to id, saturating instead of wrapping on overflow.
func addSat(id int64, delta int64) int64 {
	sum := id + delta
	if delta > 0 && sum < id {
		return math.MaxInt64
	}
	if delta < 0 && sum > id {
		return math.MinInt64
	}
	return sum
}
