package render

import (
	"image"

	"gocv.io/x/gocv"
)

// StatusBar blanks a strip at the top of the image and writes the text on it
func StatusBar(img *gocv.Mat, text string, f Font) {

	if img.Empty() {
		return
	}

	height := f.Measure(text).Y

	// blank out background video, -1 fills the rectangle
	gocv.Rectangle(img, image.Rect(0, 0, img.Cols(), height), Black, -1)

	gocv.PutTextWithParams(img, text, f.Origin(text), f.Face, f.Scale,
		f.Color, f.Thickness, f.LineType, false)
}
