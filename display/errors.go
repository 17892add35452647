package display

import "errors"

// ErrWindowClosed is returned by Window.Run when the user closes the window
// or presses a quit key
var ErrWindowClosed = errors.New("display window closed")
