package vscroll

// Command is a side effect requested by a widget during input handling.
// Commands are executed by the application's event loop.
type Command any

// RedrawCommand requests a redraw at the end of the current event.
type RedrawCommand struct{}

// QuitCommand requests stopping the application event loop.
type QuitCommand struct{}
