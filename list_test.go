package vscroll

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)
	return screen
}

// rowText returns the text on screen row y with trailing blanks removed.
func rowText(screen tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		primary, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(primary)
	}
	return strings.TrimRight(b.String(), " ")
}

func numberedItems(id int64) Item {
	return NewTextItem(fmt.Sprintf("item %d", id))
}

func TestDrawRendersItems(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t, 20, 6)
	list := NewVirtualList(0, DriverFunc(numberedItems))
	list.SetRect(0, 0, 20, 6)
	list.Draw(screen)

	for y := 0; y < 6; y++ {
		assert.Equal(t, fmt.Sprintf("item %d", y), rowText(screen, y, 20))
	}
}

func TestKeyScrolling(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t, 20, 6)
	list := NewVirtualList(0, DriverFunc(numberedItems))
	list.SetRect(0, 0, 20, 6)
	list.Draw(screen)

	down := tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	assert.Equal(t, RedrawCommand{}, list.HandleEvent(down))
	assert.Equal(t, RedrawCommand{}, list.HandleEvent(down))
	list.Draw(screen)
	assert.Equal(t, "item 2", rowText(screen, 0, 20))

	pgdn := tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone)
	assert.Equal(t, RedrawCommand{}, list.HandleEvent(pgdn))
	list.Draw(screen)
	assert.Equal(t, "item 8", rowText(screen, 0, 20))

	pgup := tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone)
	assert.Equal(t, RedrawCommand{}, list.HandleEvent(pgup))
	list.Draw(screen)
	assert.Equal(t, "item 2", rowText(screen, 0, 20))
}

func TestHomeJumpsToStartOfBoundedRange(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t, 20, 6)
	list := NewVirtualList(50, DriverFunc(numberedItems))
	list.SetValidRange(Range{Start: 5, End: 1000})
	list.SetRect(0, 0, 20, 6)
	list.Draw(screen)
	assert.Equal(t, "item 50", rowText(screen, 0, 20))

	home := tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone)
	assert.Equal(t, RedrawCommand{}, list.HandleEvent(home))
	list.Draw(screen)
	assert.Equal(t, "item 5", rowText(screen, 0, 20))
}

func TestHomeIgnoredForUnboundedRange(t *testing.T) {
	t.Parallel()

	list := NewVirtualList(0, DriverFunc(numberedItems))
	list.SetRect(0, 0, 20, 6)
	home := tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone)
	assert.Equal(t, RedrawCommand{}, list.HandleEvent(home))
	assert.EqualValues(t, 0, list.Scroller().Anchor())
}

func TestWheelScrolling(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t, 20, 10)
	list := NewVirtualList(0, DriverFunc(numberedItems))
	list.SetRect(0, 2, 20, 6)
	list.Draw(screen)

	inside := tcell.NewEventMouse(5, 4, tcell.WheelDown, tcell.ModNone)
	assert.Equal(t, RedrawCommand{}, list.HandleEvent(inside))
	list.Draw(screen)
	assert.Equal(t, fmt.Sprintf("item %d", wheelScrollRows), rowText(screen, 2, 20))

	// Wheel events outside the list's rectangle are not ours.
	outside := tcell.NewEventMouse(5, 0, tcell.WheelUp, tcell.ModNone)
	assert.Nil(t, list.HandleEvent(outside))
}

func TestDrawClipsToRect(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t, 30, 8)
	twoLiners := func(id int64) Item {
		return NewTextItem(fmt.Sprintf("top %d\nbottom %d", id, id))
	}
	list := NewVirtualList(0, DriverFunc(twoLiners))
	list.SetRect(0, 2, 30, 4)
	list.Draw(screen)

	// One row down: the first visible item straddles the list's top edge.
	list.ScrollBy(1)
	list.Draw(screen)

	assert.Equal(t, "", rowText(screen, 0, 30))
	assert.Equal(t, "", rowText(screen, 1, 30))
	assert.Equal(t, "bottom 0", rowText(screen, 2, 30))
	assert.Equal(t, "top 1", rowText(screen, 3, 30))
	assert.Equal(t, "", rowText(screen, 6, 30))
	assert.Equal(t, "", rowText(screen, 7, 30))
}

func TestScrollToID(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t, 20, 6)
	list := NewVirtualList(0, DriverFunc(numberedItems))
	list.SetRect(0, 0, 20, 6)
	list.Draw(screen)

	list.ScrollToID(1_000_000)
	list.Draw(screen)
	assert.Equal(t, "item 1000000", rowText(screen, 0, 20))
}

func TestNilDriver(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t, 20, 6)
	list := NewVirtualList(0, nil)
	list.SetRect(0, 0, 20, 6)
	list.Draw(screen)
	assert.Equal(t, "", rowText(screen, 0, 20))
}

// poolDriver records creations and releases.
type poolDriver struct {
	created  map[int64]int
	released map[int64]int
}

func newPoolDriver() *poolDriver {
	return &poolDriver{created: map[int64]int{}, released: map[int64]int{}}
}

func (d *poolDriver) Create(id int64) Item {
	d.created[id]++
	return NewTextItem(fmt.Sprintf("item %d", id))
}

func (d *poolDriver) Release(id int64, item Item) {
	d.released[id]++
}

func TestDriverLifecycle(t *testing.T) {
	t.Parallel()

	screen := newTestScreen(t, 20, 6)
	driver := newPoolDriver()
	list := NewVirtualList(0, driver)
	list.SetRect(0, 0, 20, 6)
	list.Draw(screen)
	require.NotZero(t, list.Scroller().Len())

	list.ScrollBy(100)
	list.Draw(screen)

	// Every released item was created exactly once before, and nothing was
	// created twice without an intervening release.
	for id, n := range driver.released {
		assert.LessOrEqual(t, n, driver.created[id], "id %d released more than created", id)
	}
	for id, n := range driver.created {
		assert.LessOrEqual(t, n, driver.released[id]+1, "id %d created twice while live", id)
	}

	// Items far behind the viewport were handed back.
	assert.NotEmpty(t, driver.released)
}
