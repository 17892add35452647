package pose

// BodyPart indexes a keypoint within the estimator's fixed output topology.
// The ordering follows the 17 point COCO keypoint layout.
type BodyPart int

const (
	Nose BodyPart = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// NumParts is the number of keypoints produced per inference
const NumParts = 17

var partNames = [NumParts]string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}

// Valid reports if the body part is within the keypoint topology
func (b BodyPart) Valid() bool {
	return b >= 0 && b < NumParts
}

// String returns the snake case name of the body part
func (b BodyPart) String() string {
	if !b.Valid() {
		return "unknown"
	}

	return partNames[b]
}
