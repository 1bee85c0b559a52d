package vscroll

import "github.com/gdamore/tcell/v2"

// Item is a child that can render itself into a rectangle on a screen.
// Items are deliberately minimal: the virtual list owns scrolling and
// materialization only, and leaves focus handling, input routing and
// accessibility trees to the surrounding application.
type Item interface {
	Child

	// Draw renders the item into the given rectangle. The screen is clipped
	// to the list's bounds, so items scrolled partially out of view may draw
	// their full content.
	Draw(screen tcell.Screen, x, y, width, height int)
}

// Driver supplies and destroys item content in response to the range-change
// actions emitted by a [VirtualScroll]. Drivers decide what an id means;
// the list only decides which ids are needed.
type Driver interface {
	// Create returns the item for id, or nil when the driver has nothing to
	// show for it. Sparse sequences are legal; the list skips missing ids.
	Create(id int64) Item

	// Release returns ownership of a devirtualized item to the driver for
	// cleanup or pooling.
	Release(id int64, item Item)
}

// DriverFunc adapts a create function to the Driver interface with a no-op
// Release.
type DriverFunc func(id int64) Item

// Create implements Driver.
func (f DriverFunc) Create(id int64) Item {
	return f(id)
}

// Release implements Driver.
func (f DriverFunc) Release(id int64, item Item) {}
