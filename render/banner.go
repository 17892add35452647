package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/swdee/go-posecapture/feedback"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Banner draws the feedback state as a text strip along the bottom of a
// frame using a TrueType font
type Banner struct {
	mu   sync.Mutex
	face font.Face
	pad  int
	// height of the banner strip in pixels
	height int
	ascent int
}

// NewBanner returns a Banner rendering text at the given point size with the
// Go Regular font
func NewBanner(size float64) (*Banner, error) {

	f, err := opentype.Parse(goregular.TTF)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	pad := int(size / 3)
	m := face.Metrics()

	return &Banner{
		face:   face,
		pad:    pad,
		height: m.Height.Ceil() + 2*pad,
		ascent: m.Ascent.Ceil(),
	}, nil
}

// Height returns the banner strip height in pixels
func (b *Banner) Height() int {
	return b.height
}

// StateColor returns the text color used for a feedback state
func StateColor(state feedback.State) color.RGBA {
	switch state {
	case feedback.ResetPosture:
		return Red
	case feedback.OK:
		return Green
	default:
		return Gray
	}
}

// Draw renders the feedback state onto the bottom of img, which must be a
// 3 channel BGR frame.  Frames shorter than the banner are left untouched.
func (b *Banner) Draw(img *gocv.Mat, state feedback.State) error {

	if img.Empty() || img.Rows() < b.height {
		return nil
	}

	rect := image.Rect(0, img.Rows()-b.height, img.Cols(), img.Rows())

	// create image with text writing
	rgba := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(Black), image.Point{}, draw.Src)

	b.mu.Lock()
	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(StateColor(state)),
		Face: b.face,
		Dot:  fixed.P(b.pad, b.pad+b.ascent),
	}
	dr.DrawString(state.String())
	b.mu.Unlock()

	// convert image.RGBA to gocv.Mat
	strip, err := gocv.NewMatFromBytes(rect.Dy(), rect.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)

	if err != nil {
		return fmt.Errorf("error creating Mat from RGBA: %w", err)
	}

	defer strip.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(strip, &bgr, gocv.ColorRGBAToBGR)

	// copy into the frame region, the region shares img's pixel data
	roi := img.Region(rect)
	defer roi.Close()
	bgr.CopyTo(&roi)

	return nil
}
