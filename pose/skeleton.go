package pose

// Joint is a pair of body parts to draw a connecting line between
type Joint struct {
	A BodyPart
	B BodyPart
}

// Skeleton is the static joint topology drawn between keypoints, running
// from the legs up through the torso, arms and face.
var Skeleton = []Joint{
	{LeftAnkle, LeftKnee},
	{LeftKnee, LeftHip},
	{RightAnkle, RightKnee},
	{RightKnee, RightHip},
	{LeftHip, RightHip},
	{LeftShoulder, LeftHip},
	{RightShoulder, RightHip},
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow},
	{RightShoulder, RightElbow},
	{LeftElbow, LeftWrist},
	{RightElbow, RightWrist},
	{LeftEye, RightEye},
	{Nose, LeftEye},
	{Nose, RightEye},
	{LeftEye, LeftEar},
	{RightEye, RightEar},
	{LeftEar, LeftShoulder},
	{RightEar, RightShoulder},
}

// Endpoints returns the keypoints at each end of the joint.  The ok result
// is false when either end is outside the topology or fails the joint
// endpoint validity rule.
func (j Joint) Endpoints(kps *Keypoints) (a, b Keypoint, ok bool) {

	a, okA := kps.Get(j.A)
	b, okB := kps.Get(j.B)

	if !okA || !okB {
		return a, b, false
	}

	return a, b, a.JointEndpoint() && b.JointEndpoint()
}
