package render

import (
	"image"

	"gocv.io/x/gocv"
)

// Normalizer applies the display geometry to an annotated frame.  Overlays
// are drawn in capture coordinates before normalizing, so they are scaled and
// mirrored together with the frame.
type Normalizer struct {
	// Width and Height are the display dimensions, zero keeps the frame size
	Width  int
	Height int
	// Mirror flips the frame horizontally
	Mirror bool
}

// Apply writes the resized and optionally mirrored src into dst
func (n Normalizer) Apply(src gocv.Mat, dst *gocv.Mat) {

	if n.Width > 0 && n.Height > 0 &&
		(src.Cols() != n.Width || src.Rows() != n.Height) {
		gocv.Resize(src, dst, image.Pt(n.Width, n.Height), 0, 0,
			gocv.InterpolationLinear)
	} else {
		src.CopyTo(dst)
	}

	if n.Mirror {
		gocv.Flip(*dst, dst, 1)
	}
}
