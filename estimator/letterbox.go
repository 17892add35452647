package estimator

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Letterbox scales a frame into the model input size whilst keeping its
// aspect ratio, padding the remaining border, and maps model coordinates
// back onto the source frame
type Letterbox struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// tempMat is a Mat used during the resize process
	tempMat gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewLetterbox returns a Letterbox for scaling source images of the given
// size into the destination size
func NewLetterbox(srcWidth, srcHeight, destWidth, destHeight int) *Letterbox {
	l := &Letterbox{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		tempMat:    gocv.NewMat(),
	}

	l.preCalc()

	return l
}

// Close frees memory allocated during resize process
func (l *Letterbox) Close() error {
	return l.tempMat.Close()
}

// preCalc the scaling factors for source and destination Mats
func (l *Letterbox) preCalc() {

	l.resizeW = l.destWidth
	l.resizeH = l.destHeight

	scaleW := float32(l.destWidth) / float32(l.srcWidth)
	scaleH := float32(l.destHeight) / float32(l.srcHeight)
	l.scale = scaleH

	if scaleW < scaleH {
		l.scale = scaleW
		l.resizeH = int(float32(l.srcHeight) * l.scale)
	} else {
		l.resizeW = int(float32(l.srcWidth) * l.scale)
	}

	l.yPad = (l.destHeight - l.resizeH) / 2
	l.xPad = (l.destWidth - l.resizeW) / 2
}

// Matches reports if the letterbox was calculated for the given source size
func (l *Letterbox) Matches(srcWidth, srcHeight int) bool {
	return l.srcWidth == srcWidth && l.srcHeight == srcHeight
}

// Resize scales src into dest padding the border with the given color
func (l *Letterbox) Resize(src gocv.Mat, dest *gocv.Mat, pad color.RGBA) {

	gocv.Resize(src, &l.tempMat, image.Pt(l.resizeW, l.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(l.tempMat, dest, l.yPad, l.destHeight-l.resizeH-l.yPad,
		l.xPad, l.destWidth-l.resizeW-l.xPad, gocv.BorderConstant, pad)
}

// ToSource maps a point in model input coordinates back to the source image,
// clamped to the source bounds
func (l *Letterbox) ToSource(x, y float32) image.Point {

	sx := int((x - float32(l.xPad)) / l.scale)
	sy := int((y - float32(l.yPad)) / l.scale)

	return image.Pt(clampInt(sx, 0, l.srcWidth-1), clampInt(sy, 0, l.srcHeight-1))
}

// ScaleFactor returns the scale factor used in letterbox resize
func (l *Letterbox) ScaleFactor() float32 {
	return l.scale
}

// XPad returns the x padding used in letterbox resize
func (l *Letterbox) XPad() int {
	return l.xPad
}

// YPad returns the y padding used in letterbox resize
func (l *Letterbox) YPad() int {
	return l.yPad
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}
