package vscroll

// Action is a request from the controller to its driver to change the set of
// materialized items from OldActive to Target. The controller emits at most
// one Action at a time; the driver acknowledges it by calling
// [VirtualScroll.WillHandleAction] before adding or removing children, and
// OldActive of each action always equals Target of the previous one.
type Action struct {
	OldActive Range
	Target    Range
}
