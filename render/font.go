package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Font defines the Hershey font settings used for status text
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	TopPad    int
	BottomPad int
}

// DefaultFont returns the status bar font, small pink text on black
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     Pink,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		TopPad:    4,
		BottomPad: 6,
	}
}

// Measure returns the size of text including padding
func (f Font) Measure(text string) image.Point {
	size := gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)
	return image.Pt(size.X+f.LeftPad, size.Y+f.TopPad+f.BottomPad)
}

// Origin returns the bottom left point text is drawn from within a padded box
// at the top left of the image
func (f Font) Origin(text string) image.Point {
	size := gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)
	return image.Pt(f.LeftPad, f.TopPad+size.Y)
}
