package vscroll

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// TextItem is a word-wrapped block of styled text. Its height is the number
// of wrapped lines for the given width, so text items naturally produce the
// variable heights the controller's estimation is built for.
type TextItem struct {
	text  string
	style tcell.Style

	// Wrap result for the most recent width, since Height and Draw are
	// called with the same constraint within a pass.
	wrapWidth int
	lines     []string
}

// NewTextItem returns a text item with the default theme style.
func NewTextItem(text string) *TextItem {
	return &TextItem{
		text:      text,
		style:     tcell.StyleDefault.Foreground(Styles.PrimaryTextColor).Background(Styles.ListBackgroundColor),
		wrapWidth: -1,
	}
}

// SetStyle sets the style of the item's text.
func (t *TextItem) SetStyle(style tcell.Style) *TextItem {
	t.style = style
	return t
}

// Text returns the item's text.
func (t *TextItem) Text() string {
	return t.text
}

// Height implements [Child]: one row per wrapped line.
func (t *TextItem) Height(width int) float64 {
	return float64(len(t.wrapped(width)))
}

// Draw implements [Item].
func (t *TextItem) Draw(screen tcell.Screen, x, y, width, height int) {
	for i, line := range t.wrapped(width) {
		if i >= height {
			break
		}
		drawString(screen, line, x, y+i, width, t.style)
	}
}

func (t *TextItem) wrapped(width int) []string {
	if width < 1 {
		width = 1
	}
	if t.wrapWidth != width {
		t.lines = WordWrap(t.text, width)
		t.wrapWidth = width
	}
	return t.lines
}

// drawString renders a single line of text, one grapheme cluster at a time,
// without exceeding maxWidth cells.
func drawString(screen tcell.Screen, text string, x, y, maxWidth int, style tcell.Style) {
	used := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		cluster := gr.Runes()
		width := max(uniseg.StringWidth(gr.Str()), 1)
		if used+width > maxWidth {
			return
		}
		screen.SetContent(x+used, y, cluster[0], cluster[1:], style)
		used += width
	}
}

// WordWrap splits a text such that each resulting line does not exceed the
// given screen width, breaking at line-break opportunities and splitting
// words wider than the whole line grapheme by grapheme.
func WordWrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var (
		lines     []string
		line      strings.Builder
		lineWidth int
	)
	flush := func() {
		lines = append(lines, strings.TrimRight(line.String(), " \t"))
		line.Reset()
		lineWidth = 0
	}

	state := -1
	for len(text) > 0 {
		var segment string
		var mustBreak bool
		segment, text, mustBreak, state = uniseg.FirstLineSegmentInString(text, state)
		segment = strings.TrimRight(segment, "\r\n")
		// Trailing spaces vanish at a line break and do not count against
		// the width.
		segmentWidth := uniseg.StringWidth(strings.TrimRight(segment, " \t"))

		if lineWidth > 0 && lineWidth+segmentWidth > width {
			flush()
		}
		if segmentWidth > width {
			// The segment alone is too wide for any line; hard-split it.
			gr := uniseg.NewGraphemes(segment)
			for gr.Next() {
				clusterWidth := uniseg.StringWidth(gr.Str())
				if lineWidth > 0 && lineWidth+clusterWidth > width {
					flush()
				}
				line.WriteString(gr.Str())
				lineWidth += clusterWidth
			}
		} else {
			line.WriteString(segment)
			lineWidth += uniseg.StringWidth(segment)
		}
		if mustBreak && len(text) > 0 {
			flush()
		}
	}
	lines = append(lines, strings.TrimRight(line.String(), " \t"))

	return lines
}
