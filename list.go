package vscroll

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

// Rows scrolled per mouse wheel tick.
const wheelScrollRows = 3

// Handshake rounds serviced per draw, so a fresh or jumped-to viewport can
// converge within a single frame. The controller reaches a fixed point in a
// few rounds with a well-behaved driver; the bound contains a buggy one.
const maxHandshakesPerDraw = 8

// VirtualList displays a virtual sequence of items supplied on demand by a
// Driver. It owns a [VirtualScroll] controller and acts as its driver-side
// counterpart: during Draw it runs layout passes, services each emitted
// action synchronously (acknowledge, release devirtualized items, create
// requested ones), and renders the resulting placements through a clipped
// screen. One row is one layout unit.
type VirtualList struct {
	scroller *VirtualScroll
	driver   Driver

	x, y, width, height int

	background tcell.Style

	placements []Placement
}

// NewVirtualList returns a virtual list anchored at initialAnchor whose
// content is supplied by driver.
func NewVirtualList(initialAnchor int64, driver Driver) *VirtualList {
	scroller := NewVirtualScroll(initialAnchor).SetParams(Params{DefaultItemHeight: 1})
	return &VirtualList{
		scroller:   scroller,
		driver:     driver,
		background: tcell.StyleDefault.Background(Styles.ListBackgroundColor),
	}
}

// Scroller returns the underlying controller, e.g. to set a logger or
// inspect the active range.
func (l *VirtualList) Scroller() *VirtualScroll {
	return l.scroller
}

// SetValidRange restricts the ids the list may request from its driver.
func (l *VirtualList) SetValidRange(r Range) *VirtualList {
	l.scroller.SetValidRange(r)
	return l
}

// SetBackgroundStyle sets the style used to clear the list's rectangle.
func (l *VirtualList) SetBackgroundStyle(style tcell.Style) *VirtualList {
	l.background = style
	return l
}

// SetRect sets a new position of the list.
func (l *VirtualList) SetRect(x, y, width, height int) {
	l.x, l.y, l.width, l.height = x, y, width, height
}

// GetRect returns the current position of the list, x, y, width, and height.
func (l *VirtualList) GetRect() (int, int, int, int) {
	return l.x, l.y, l.width, l.height
}

// InRect returns true if the given coordinate is within the bounds of the
// list's rectangle.
func (l *VirtualList) InRect(x, y int) bool {
	return x >= l.x && x < l.x+l.width && y >= l.y && y < l.y+l.height
}

// ScrollBy scrolls the list by the given number of rows; positive is down.
// The new position takes effect on the next draw.
func (l *VirtualList) ScrollBy(rows float64) {
	l.scroller.ApplyScrollDelta(rows)
}

// ScrollToID jump-scrolls so the top of item id aligns with the top of the
// list. The id does not have to be anywhere near the current position; the
// controller re-seeds around it instead of scrolling through the distance.
func (l *VirtualList) ScrollToID(id int64) {
	l.scroller.OverwriteAnchor(id)
}

// HandleEvent maps terminal input to scrolling: arrow keys scroll by one
// row, PageUp/PageDown by a viewport, Home jumps to the start of a bounded
// valid range, and the mouse wheel scrolls within the list's rectangle. It
// returns a RedrawCommand when the event changed the scroll position, nil
// otherwise.
func (l *VirtualList) HandleEvent(event tcell.Event) Command {
	switch event := event.(type) {
	case *tcell.EventKey:
		page := float64(max(l.height, 1))
		switch event.Key() {
		case tcell.KeyUp:
			l.ScrollBy(-1)
		case tcell.KeyDown:
			l.ScrollBy(1)
		case tcell.KeyPgUp:
			l.ScrollBy(-page)
		case tcell.KeyPgDn:
			l.ScrollBy(page)
		case tcell.KeyHome:
			valid := l.scroller.ValidRange()
			if valid.Start > math.MinInt64 {
				l.ScrollToID(valid.Start)
			}
		default:
			return nil
		}
		return RedrawCommand{}
	case *tcell.EventMouse:
		if x, y := event.Position(); !l.InRect(x, y) {
			return nil
		}
		buttons := event.Buttons()
		var delta float64
		if buttons&tcell.WheelUp != 0 {
			delta -= wheelScrollRows
		}
		if buttons&tcell.WheelDown != 0 {
			delta += wheelScrollRows
		}
		if delta == 0 {
			return nil
		}
		l.ScrollBy(delta)
		return RedrawCommand{}
	}
	return nil
}

// Draw reconciles the materialized window with the current scroll position
// and renders it onto the screen.
func (l *VirtualList) Draw(screen tcell.Screen) {
	if l.width <= 0 || l.height <= 0 {
		return
	}

	l.reconcile()

	for y := l.y; y < l.y+l.height; y++ {
		for x := l.x; x < l.x+l.width; x++ {
			screen.SetContent(x, y, ' ', nil, l.background)
		}
	}

	clipped := newClippedScreen(screen, l.x, l.y, l.width, l.height)
	for _, placement := range l.placements {
		row := l.y + int(math.Round(placement.Y))
		rows := max(int(math.Round(placement.Height)), 1)
		if row+rows <= l.y || row >= l.y+l.height {
			continue
		}
		if item, ok := placement.Child.(Item); ok {
			item.Draw(clipped, l.x, row, l.width, rows)
		}
	}
}

// reconcile runs layout passes and services the emitted actions until the
// controller stops requesting changes, within a bounded number of rounds.
// Servicing follows the handshake protocol: acknowledge first, then remove
// children that left the active range, then add the newly requested ones.
func (l *VirtualList) reconcile() {
	if l.driver == nil {
		l.placements = l.placements[:0]
		return
	}
	for i := 0; i < maxHandshakesPerDraw; i++ {
		placements, action := l.scroller.Layout(l.width, float64(l.height))
		l.placements = placements
		if action == nil {
			return
		}
		l.scroller.WillHandleAction(*action)
		removed, added := action.OldActive.Diff(action.Target)
		for _, r := range removed {
			r.Each(func(id int64) {
				if child := l.scroller.RemoveChild(id); child != nil {
					if item, ok := child.(Item); ok {
						l.driver.Release(id, item)
					}
				}
			})
		}
		for _, r := range added {
			r.Each(func(id int64) {
				if item := l.driver.Create(id); item != nil {
					l.scroller.AddChild(id, item)
				}
			})
		}
	}
}

// clippedScreen restricts drawing to a rectangle so items overlapping the
// list's edges cannot paint outside it.
type clippedScreen struct {
	tcell.Screen
	x, y, width, height int
}

func newClippedScreen(screen tcell.Screen, x, y, width, height int) *clippedScreen {
	return &clippedScreen{Screen: screen, x: x, y: y, width: width, height: height}
}

func (s *clippedScreen) inBounds(x, y int) bool {
	return x >= s.x && x < s.x+s.width && y >= s.y && y < s.y+s.height
}

func (s *clippedScreen) SetContent(x, y int, primary rune, combining []rune, style tcell.Style) {
	if !s.inBounds(x, y) {
		return
	}
	s.Screen.SetContent(x, y, primary, combining, style)
}

func (s *clippedScreen) ShowCursor(x, y int) {
	if !s.inBounds(x, y) {
		s.Screen.ShowCursor(-1, -1)
		return
	}
	s.Screen.ShowCursor(x, y)
}
