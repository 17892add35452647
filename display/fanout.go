package display

import "github.com/swdee/go-posecapture"

// Fanout presents each frame to several presenters.  Every presenter after
// the first receives its own copy of the Mat.
type Fanout []posecapture.Presenter

// Present hands the frame to every presenter
func (f Fanout) Present(frame posecapture.AnnotatedFrame) {

	if len(f) == 0 {
		frame.Mat.Close()
		return
	}

	for _, p := range f[1:] {
		cp := frame
		cp.Mat = frame.Mat.Clone()
		p.Present(cp)
	}

	f[0].Present(frame)
}
