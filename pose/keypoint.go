package pose

import "image"

// Keypoint is a single estimated body landmark in frame pixel coordinates
type Keypoint struct {
	X int
	Y int
	// Score is the estimator confidence for the landmark
	Score float32
}

var (
	// Missing is the sentinel position of a keypoint that was not detected
	Missing = Keypoint{X: -1, Y: -1}
	// origin is treated as a second invalid sentinel for joint endpoints
	origin = image.Point{}
)

// Pt returns the keypoint position as an image.Point
func (k Keypoint) Pt() image.Point {
	return image.Pt(k.X, k.Y)
}

// Detected reports if the keypoint holds a position that may be drawn as a
// marker.  Either coordinate set to -1 marks the keypoint as not detected.
func (k Keypoint) Detected() bool {
	return k.X != -1 && k.Y != -1
}

// JointEndpoint reports if the keypoint may be used as one end of a joint
// line.  This is stricter than Detected, the origin (0,0) is also rejected.
func (k Keypoint) JointEndpoint() bool {
	p := k.Pt()
	return p != Missing.Pt() && p != origin
}

// Keypoints is the full fixed size keypoint set of one inference, indexed
// by BodyPart
type Keypoints [NumParts]Keypoint

// MissingKeypoints returns a keypoint set with every entry not detected
func MissingKeypoints() Keypoints {
	var kps Keypoints

	for i := range kps {
		kps[i] = Missing
	}

	return kps
}

// Get returns the keypoint for the given body part and false if the body
// part is outside of the topology
func (k *Keypoints) Get(part BodyPart) (Keypoint, bool) {
	if !part.Valid() {
		return Keypoint{}, false
	}

	return k[part], true
}
