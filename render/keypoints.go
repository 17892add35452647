package render

import (
	"image/color"

	"github.com/swdee/go-posecapture/pose"
	"gocv.io/x/gocv"
)

// OverlayStyle defines how keypoints and joints are drawn
type OverlayStyle struct {
	// MarkerRadius is the radius of the circle drawn at each keypoint
	MarkerRadius int
	// MarkerThickness is the circle outline thickness, -1 fills the circle
	MarkerThickness int
	// JointThickness is the thickness of the lines between keypoints
	JointThickness int
	// JointColor is the color of the lines between keypoints
	JointColor color.RGBA
}

// DefaultOverlayStyle returns the default overlay style
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		MarkerRadius:    3,
		MarkerThickness: 2,
		JointThickness:  2,
		JointColor:      jointColor,
	}
}

// Overlay draws a keypoint snapshot onto frames
type Overlay struct {
	style    OverlayStyle
	skeleton []pose.Joint
}

// NewOverlay returns an Overlay drawing the given skeleton joints, a nil
// skeleton uses pose.Skeleton
func NewOverlay(style OverlayStyle, skeleton []pose.Joint) *Overlay {

	if skeleton == nil {
		skeleton = pose.Skeleton
	}

	return &Overlay{
		style:    style,
		skeleton: skeleton,
	}
}

// Draw renders the keypoint markers and then the joint lines of the snapshot
// onto img.  The snapshot is only read.
func (o *Overlay) Draw(img *gocv.Mat, snap *pose.Snapshot) {

	if img.Empty() || snap == nil {
		return
	}

	o.Keypoints(img, &snap.Keypoints)
	o.Joints(img, &snap.Keypoints)
}

// Keypoints draws a marker at every detected keypoint.  A keypoint at the
// origin is still drawn.
func (o *Overlay) Keypoints(img *gocv.Mat, kps *pose.Keypoints) {

	for i, kp := range kps {
		if !kp.Detected() {
			continue
		}

		gocv.Circle(img, kp.Pt(), o.style.MarkerRadius, keyPointColor(i),
			o.style.MarkerThickness)
	}
}

// Joints draws a line for every skeleton joint whose both endpoints are
// valid joint endpoints, neither missing nor at the origin
func (o *Overlay) Joints(img *gocv.Mat, kps *pose.Keypoints) {

	for _, joint := range o.skeleton {
		a, b, ok := joint.Endpoints(kps)

		if !ok {
			continue
		}

		gocv.Line(img, a.Pt(), b.Pt(), o.style.JointColor, o.style.JointThickness)
	}
}
