package vscroll

import "github.com/gdamore/tcell/v2"

// Theme defines the colors used when widgets and items are initialized.
type Theme struct {
	ListBackgroundColor tcell.Color // Background of the virtual list.
	PrimaryTextColor    tcell.Color // Primary item text.
	SecondaryTextColor  tcell.Color // Secondary item text (e.g. labels).
}

// Styles defines the theme for applications. The default is for a black
// background with basic colors.
var Styles = Theme{
	ListBackgroundColor: tcell.ColorBlack,
	PrimaryTextColor:    tcell.ColorWhite,
	SecondaryTextColor:  tcell.ColorYellow,
}
