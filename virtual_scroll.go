package vscroll

import (
	"log/slog"
	"math"
)

// Child is an item materialized by the driver. Once added, the controller
// owns the child until [VirtualScroll.RemoveChild] hands it back. Height
// reports the child's height under the given width constraint; it is
// consulted once per layout pass while the child is active.
type Child interface {
	Height(width int) float64
}

// Placement locates one materialized child for the current layout pass.
// Y is in layout units relative to the top of the viewport; negative values
// are above it. Height is the sanitized measured height of the child.
type Placement struct {
	ID     int64
	Y      float64
	Height float64
	Child  Child
}

// Params holds the tuning constants applied to controllers on creation.
type Params struct {
	// DefaultItemHeight substitutes for heights the controller cannot
	// measure, and seeds the running mean before any item has been measured.
	DefaultItemHeight float64
	// LookaheadUp is the runway kept materialized above the viewport, as a
	// multiple of the viewport height.
	LookaheadUp float64
	// LookaheadDown is the runway below the viewport, as a multiple of the
	// viewport height (the anchor height is added on top). It is larger than
	// LookaheadUp because downward scrolling is the common case.
	LookaheadDown float64
	// MissedActionLimit is the number of layout passes an emitted action may
	// go unacknowledged before the handshake is forcibly reset.
	MissedActionLimit int
}

// Tuning defines the parameters used when controllers are initialized. The
// default heights are in pixels; terminal-based drivers typically set
// DefaultItemHeight to 1 (one row).
var Tuning = Params{
	DefaultItemHeight: 16,
	LookaheadUp:       1.5,
	LookaheadDown:     2.5,
	MissedActionLimit: 10,
}

const (
	// Heights below this are treated as degenerate and replaced by the
	// default, which keeps the anchor walk strictly convergent.
	minItemHeight = 1e-3

	// Hard cap on anchor walk iterations. The walk terminates long before
	// this under sanitized heights; the cap only bounds the damage of a bug.
	maxAnchorSteps = 1 << 20
)

// VirtualScroll decides which contiguous window of an ordered, possibly
// unbounded sequence of items must be materialized to satisfy the current
// viewport. It owns the materialized children and the scroll position but
// never creates or destroys content itself: it emits an [Action] asking its
// driver to change the active range, and integrates whatever the driver
// provides.
//
// The scroll position is expressed relative to an anchor item: the viewport
// top sits scrollOffset layout units below the top of the anchor. In steady
// state 0 <= scrollOffset < height(anchor); scroll input may push the offset
// outside that interval, and the next layout pass walks the anchor to
// restore it.
//
// A VirtualScroll is not safe for concurrent use. It is designed for a
// single-threaded event -> layout -> draw pipeline; AddChild and RemoveChild
// must only be called synchronously while the driver handles a just-emitted
// action.
type VirtualScroll struct {
	valid  Range
	active Range
	items  map[int64]Child

	anchor       int64
	scrollOffset float64

	// actionHandled is the handshake gate: while an emitted action has not
	// been acknowledged via WillHandleAction, no new action is emitted.
	actionHandled bool

	// mean is the running estimate of item height, used to convert
	// unmeasured distance into id counts. Always finite and positive.
	mean         float64
	anchorHeight float64

	// Viewport height seen by the last layout pass, needed to re-apply the
	// bottom boundary lock on scroll input between passes.
	lastViewport float64

	// Diagnostics state. Edge-triggered flags reset when the condition
	// clears so a persistently misbehaving driver logs once, not per pass.
	warnedNotDense  bool
	warnedBadRemove bool
	warnedBadHeight bool
	missedActions   int

	params Params
	logger *slog.Logger

	measured   map[int64]float64
	placements []Placement
}

// NewVirtualScroll returns a controller whose viewport top is aligned with
// the top of the item initialAnchor. The valid range defaults to unbounded.
func NewVirtualScroll(initialAnchor int64) *VirtualScroll {
	params := Tuning
	if params.DefaultItemHeight < minItemHeight {
		params.DefaultItemHeight = 16
	}
	if params.LookaheadUp <= 0 {
		params.LookaheadUp = 1.5
	}
	if params.LookaheadDown <= 0 {
		params.LookaheadDown = 2.5
	}
	if params.MissedActionLimit <= 0 {
		params.MissedActionLimit = 10
	}
	return &VirtualScroll{
		valid:         Unbounded(),
		active:        Range{Start: initialAnchor, End: initialAnchor},
		items:         make(map[int64]Child),
		anchor:        initialAnchor,
		actionHandled: true,
		mean:          params.DefaultItemHeight,
		anchorHeight:  params.DefaultItemHeight,
		params:        params,
		measured:      make(map[int64]float64),
	}
}

// SetParams overrides the tuning parameters for this controller.
func (v *VirtualScroll) SetParams(params Params) *VirtualScroll {
	if params.DefaultItemHeight >= minItemHeight {
		v.params.DefaultItemHeight = params.DefaultItemHeight
	}
	if params.LookaheadUp > 0 {
		v.params.LookaheadUp = params.LookaheadUp
	}
	if params.LookaheadDown > 0 {
		v.params.LookaheadDown = params.LookaheadDown
	}
	if params.MissedActionLimit > 0 {
		v.params.MissedActionLimit = params.MissedActionLimit
	}
	return v
}

// SetLogger sets the logger used for diagnostics. A nil logger (the default)
// falls back to slog.Default().
func (v *VirtualScroll) SetLogger(logger *slog.Logger) *VirtualScroll {
	v.logger = logger
	return v
}

// SetValidRange restricts the ids that may ever be requested. A range whose
// start is after its end is a caller bug; it is reported and corrected to
// the empty range at its start. Shrinking the valid range below the current
// active range is legal: the next layout pass re-clamps the target and emits
// a corrective action as soon as the handshake gate allows.
func (v *VirtualScroll) SetValidRange(r Range) *VirtualScroll {
	if r.End < r.Start {
		v.violation("valid range %+v has start after end", r)
		r.End = r.Start
	}
	v.valid = r
	v.applyBoundaryLocks(v.lastViewport)
	return v
}

// ValidRange returns the current valid range.
func (v *VirtualScroll) ValidRange() Range {
	return v.valid
}

// ActiveRange returns the range of ids the controller currently asserts
// should be materialized. It changes only through the handshake.
func (v *VirtualScroll) ActiveRange() Range {
	return v.active
}

// Anchor returns the id of the current anchor item.
func (v *VirtualScroll) Anchor() int64 {
	return v.anchor
}

// MeanItemHeight returns the running item height estimate.
func (v *VirtualScroll) MeanItemHeight() float64 {
	return v.mean
}

// Len returns the number of currently materialized children.
func (v *VirtualScroll) Len() int {
	return len(v.items)
}

// Child returns the materialized child for id, or ok == false when the id
// has no materialized child.
func (v *VirtualScroll) Child(id int64) (Child, bool) {
	child, ok := v.items[id]
	return child, ok
}

// ApplyScrollDelta moves the viewport by delta layout units; positive is
// down. The anchor is not re-resolved here (that happens during the next
// layout pass), but boundary locks apply immediately so input cannot push
// the viewport past the ends of the valid range.
func (v *VirtualScroll) ApplyScrollDelta(delta float64) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		v.warn("ignoring non-finite scroll delta")
		return
	}
	v.scrollOffset += delta
	v.applyBoundaryLocks(v.lastViewport)
}

// OverwriteAnchor aligns the top of item id with the top of the viewport,
// discarding any accumulated scroll offset. Jumping outside the current
// active range is expected; the next layout pass re-seeds the target range
// around the new anchor instead of converging incrementally.
func (v *VirtualScroll) OverwriteAnchor(id int64) {
	v.anchor = id
	v.scrollOffset = 0
	v.applyBoundaryLocks(v.lastViewport)
}

// WillHandleAction is called by the driver to declare that it is about to
// process a previously emitted action. It must be called before any
// AddChild/RemoveChild for that action. An action whose OldActive does not
// match the current active range is stale; this is reported, and the
// controller proceeds with the action's target since the driver will have
// reconciled against it.
func (v *VirtualScroll) WillHandleAction(action Action) {
	if action.OldActive != v.active {
		v.violation("action's old range %+v does not match active range %+v", action.OldActive, v.active)
	}
	v.active = action.Target.normalized()
	v.actionHandled = true
	v.missedActions = 0
}

// AddChild hands ownership of a child for id to the controller. Legal only
// while the driver is handling an acknowledged action and for ids inside
// the new active range; violations are reported and the child is integrated
// anyway, since refusing it would leak ownership.
func (v *VirtualScroll) AddChild(id int64, child Child) {
	if child == nil {
		v.violation("nil child for id %d", id)
		return
	}
	if !v.actionHandled {
		v.violation("AddChild(%d) before the emitted action was acknowledged", id)
	}
	if !v.active.Contains(id) {
		v.violation("AddChild(%d) outside active range %+v", id, v.active)
	}
	if _, dup := v.items[id]; dup {
		v.violation("duplicate AddChild(%d)", id)
	}
	v.items[id] = child
}

// RemoveChild removes the child for id and returns it to the driver for
// cleanup. Removing an id that is still active is a caller bug (reported,
// removed anyway). Removing an id that was never added is tolerated: drivers
// that materialize sparsely hit this in normal operation, so it is logged
// once and suppressed entirely while a density problem is already flagged.
func (v *VirtualScroll) RemoveChild(id int64) Child {
	if v.active.Contains(id) {
		v.violation("RemoveChild(%d) inside active range %+v", id, v.active)
	}
	child, ok := v.items[id]
	if !ok {
		if !v.warnedNotDense && !v.warnedBadRemove {
			v.warn("removing child that was never added", "id", id)
			v.warnedBadRemove = true
		}
		return nil
	}
	delete(v.items, id)
	v.warnedBadRemove = false
	return child
}

// ScrollState estimates the viewport position for assistive technologies:
// the offset of the viewport top from the start of the valid range, the
// viewport extent, and the total content height, all in layout units. The
// estimates use the mean item height; for effectively unbounded valid
// ranges the total is astronomically large and callers typically present
// the position as indeterminate.
func (v *VirtualScroll) ScrollState() (top, extent, total float64) {
	top = (float64(v.anchor)-float64(v.valid.Start))*v.mean + v.scrollOffset
	total = (float64(v.valid.End) - float64(v.valid.Start)) * v.mean
	return top, v.lastViewport, total
}

// Layout runs one layout pass for a viewport of the given height, measuring
// children under the given width constraint. It returns the placements of
// all participating children and, at most, one action requesting that the
// driver change the active range. The returned placement slice is reused by
// the next pass and must not be retained.
//
// The pass never fails and never blocks: a driver that materialized nothing,
// the wrong ids, or degenerate heights degrades the estimates, not the
// termination guarantee.
func (v *VirtualScroll) Layout(width int, viewportHeight float64) ([]Placement, *Action) {
	if math.IsNaN(viewportHeight) || viewportHeight < 0 {
		viewportHeight = 0
	}
	v.lastViewport = viewportHeight

	// An action emitted by an earlier pass should have been acknowledged
	// before this one; by contract the driver handles it before the next
	// paint. Count misses and eventually force the gate open so a stalled
	// driver cannot starve the protocol forever.
	if !v.actionHandled {
		v.missedActions++
		if v.missedActions == 1 {
			v.warn("previous action not acknowledged before layout", "active", v.active)
		} else if v.missedActions > v.params.MissedActionLimit {
			v.violation("action unacknowledged for %d layout passes; resetting handshake", v.missedActions)
			v.actionHandled = true
			v.missedActions = 0
		}
	}

	// Measure phase. Children outside the active range have already been
	// requested removed and do not participate in this pass.
	clear(v.measured)
	var total float64
	badHeights := 0
	for id, child := range v.items {
		if !v.active.Contains(id) {
			continue
		}
		h := child.Height(width)
		if math.IsNaN(h) || math.IsInf(h, 0) || h < minItemHeight {
			h = v.params.DefaultItemHeight
			badHeights++
		}
		v.measured[id] = h
		total += h
	}
	if badHeights > 0 {
		if !v.warnedBadHeight {
			v.warn("replaced degenerate child heights with the default", "count", badHeights)
			v.warnedBadHeight = true
		}
	} else {
		v.warnedBadHeight = false
	}

	// Update the running height estimate; keep the previous one when
	// nothing is measurable.
	if n := len(v.measured); n > 0 {
		v.mean = total / float64(n)
	}
	if math.IsNaN(v.mean) || math.IsInf(v.mean, 0) || v.mean < minItemHeight {
		v.warn("replacing degenerate mean item height", "mean", v.mean)
		v.mean = v.params.DefaultItemHeight
	}

	v.resolveAnchor(viewportHeight)

	// Cumulative height of measured items strictly before the resolved
	// anchor; the walk below starts that far above the anchor.
	var heightBefore float64
	for id, h := range v.measured {
		if id < v.anchor {
			heightBefore += h
		}
	}

	cutoffUp := v.params.LookaheadUp * viewportHeight
	cutoffDown := v.params.LookaheadDown*viewportHeight + v.anchorHeight

	// Window walk: place every participating child and record the ids
	// closest to the two cutoffs. Ids the driver never materialized are
	// skipped, not synthesized.
	v.placements = v.placements[:0]
	var (
		topCandidate, bottomCandidate int64
		haveTop                       bool
		firstWalked, lastWalked       int64
		walkedAny                     bool
		gaps                          int
	)
	y := -heightBefore
	for id := v.active.Start; id < v.active.End; id++ {
		child, ok := v.items[id]
		if !ok {
			gaps++
			continue
		}
		if !walkedAny {
			firstWalked = id
			walkedAny = true
		}
		lastWalked = id
		if y <= -cutoffUp {
			topCandidate = id
			haveTop = true
		}
		if y <= cutoffDown {
			bottomCandidate = id
		}
		h := v.measured[id]
		v.placements = append(v.placements, Placement{
			ID:     id,
			Y:      y - v.scrollOffset,
			Height: h,
			Child:  child,
		})
		y += h
	}

	if gaps > 0 {
		if !v.warnedNotDense {
			v.warn("driver did not materialize all requested ids", "missing", gaps, "active", v.active)
			v.warnedNotDense = true
		}
	} else {
		v.warnedNotDense = false
	}

	// Target-range computation. When the anchor item is not active (right
	// after an OverwriteAnchor jump, or before the first action), both
	// bounds are extrapolated directly from the anchor: incremental
	// convergence from an arbitrarily distant active range would be
	// unbounded work. The same applies when the driver materialized nothing,
	// since there is no measured coverage to extend.
	var target Range
	if !v.active.Contains(v.anchor) || !walkedAny {
		target = Range{
			Start: addSat(v.anchor, -v.idCount(cutoffUp)),
			End:   addSat(addSat(v.anchor, v.idCount(cutoffDown)), 1),
		}
	} else {
		if haveTop {
			target.Start = topCandidate
		} else {
			// Measured coverage above the anchor falls short of the cutoff;
			// extrapolate the remainder with the mean height.
			target.Start = addSat(firstWalked, -v.idCount(cutoffUp-heightBefore))
		}
		if y > cutoffDown {
			target.End = addSat(bottomCandidate, 1)
		} else {
			target.End = addSat(addSat(lastWalked, 1), v.idCount(cutoffDown-y))
		}
	}
	target = target.Intersect(v.valid)

	// Emit at most one outstanding request. While an action is in flight the
	// gate stays closed, so a slow driver never sees overlapping or stale
	// requests.
	var action *Action
	if v.actionHandled && target != v.active {
		action = &Action{OldActive: v.active, Target: target}
		v.actionHandled = false
	}
	return v.placements, action
}

// resolveAnchor walks the anchor until the scroll offset lies within the
// anchor item again, then applies the boundary locks. Termination is
// guaranteed because every height the walk consumes is sanitized to a
// strictly positive value; the step cap only contains the damage of a bug.
func (v *VirtualScroll) resolveAnchor(viewportHeight float64) {
	if v.valid.IsEmpty() {
		v.anchor = v.valid.Start
		v.scrollOffset = 0
		v.anchorHeight = v.params.DefaultItemHeight
		return
	}

	// The valid range may have shrunk since the last pass.
	v.applyBoundaryLocks(viewportHeight)

	steps := 0
	for v.scrollOffset < 0 {
		if v.anchor <= v.valid.Start {
			v.anchor = v.valid.Start
			v.scrollOffset = 0
			break
		}
		if steps++; steps > maxAnchorSteps {
			v.warn("anchor walk did not converge; clamping", "anchor", v.anchor)
			v.scrollOffset = 0
			break
		}
		v.anchor--
		v.scrollOffset += v.heightOf(v.anchor)
	}

	last := v.valid.End - 1
	for v.scrollOffset >= v.heightOf(v.anchor) {
		if v.anchor >= last {
			// Downward lock; the cap is applied below.
			break
		}
		if steps++; steps > maxAnchorSteps {
			v.warn("anchor walk did not converge; clamping", "anchor", v.anchor)
			break
		}
		v.scrollOffset -= v.heightOf(v.anchor)
		v.anchor++
	}

	v.anchorHeight = v.heightOf(v.anchor)
	v.applyBoundaryLocks(viewportHeight)
	v.anchorHeight = v.heightOf(v.anchor)
}

// heightOf returns the height measured for id this pass, or the mean
// estimate for items the controller cannot measure.
func (v *VirtualScroll) heightOf(id int64) float64 {
	if h, ok := v.measured[id]; ok {
		return h
	}
	return v.mean
}

// applyBoundaryLocks clamps the anchor into the valid range and enforces the
// two boundary locks: the offset never goes negative on the first valid id,
// and on the last valid id it is capped so the bottom half of that item
// stays reachable while still allowing a scroll past it into empty space.
func (v *VirtualScroll) applyBoundaryLocks(viewportHeight float64) {
	if v.valid.IsEmpty() {
		v.anchor = v.valid.Start
		v.scrollOffset = 0
		return
	}
	if v.anchor <= v.valid.Start {
		v.anchor = v.valid.Start
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
	}
	if last := v.valid.End - 1; v.anchor >= last {
		v.anchor = last
		if capped := math.Max(v.anchorHeight-viewportHeight/2, 0); v.scrollOffset > capped {
			v.scrollOffset = capped
		}
	}
}

// idCount converts a layout-unit distance into an id count using the mean
// item height, rounding up.
func (v *VirtualScroll) idCount(distance float64) int64 {
	if distance <= 0 {
		return 0
	}
	n := math.Ceil(distance / v.mean)
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int64(n)
}
