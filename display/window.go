package display

import (
	"context"

	"github.com/swdee/go-posecapture"
	"gocv.io/x/gocv"
)

// keys that close the window
const (
	keyEsc = 27
	keyQ   = 'q'
)

// Window shows presented frames in a local GoCV window.  Present may be
// called from any goroutine, Run must be called from the main thread.
type Window struct {
	win    *gocv.Window
	frames chan gocv.Mat
}

// NewWindow opens a window with the given title
func NewWindow(title string) *Window {
	return &Window{
		win:    gocv.NewWindow(title),
		frames: make(chan gocv.Mat, 1),
	}
}

// Present queues the frame for display, replacing a frame not yet shown
func (w *Window) Present(frame posecapture.AnnotatedFrame) {

	select {
	case w.frames <- frame.Mat:
		return
	default:
	}

	select {
	case old := <-w.frames:
		old.Close()
	default:
	}

	select {
	case w.frames <- frame.Mat:
	default:
		frame.Mat.Close()
	}
}

// Run shows frames until ctx is cancelled or the user closes the window,
// in which case ErrWindowClosed is returned
func (w *Window) Run(ctx context.Context) error {

	for {
		select {
		case <-ctx.Done():
			return nil

		case img := <-w.frames:
			w.win.IMShow(img)
			img.Close()

		default:
		}

		key := w.win.WaitKey(10)

		if key == keyEsc || key == keyQ || !w.win.IsOpen() {
			return ErrWindowClosed
		}
	}
}

// Close closes the window and releases any frame not yet shown
func (w *Window) Close() error {

	select {
	case img := <-w.frames:
		img.Close()
	default:
	}

	return w.win.Close()
}
