// Package feedback derives a discrete posture feedback state from the latest
// keypoint snapshot.
package feedback

import "github.com/swdee/go-posecapture/pose"

// State is the posture feedback shown alongside the frame
type State int

const (
	// Indeterminate means the keypoints needed were not detected
	Indeterminate State = iota
	OK
	ResetPosture
)

// String returns the display text of the state
func (s State) String() string {
	switch s {
	case OK:
		return "OK"
	case ResetPosture:
		return "Reset Posture"
	default:
		return "Indeterminate"
	}
}

// Evaluator interprets a snapshot.  Implementations must be pure functions
// of the snapshot and tolerate any keypoint being missing.
type Evaluator interface {
	Evaluate(snap *pose.Snapshot) State
}

// EvaluatorFunc adapts a function to the Evaluator interface
type EvaluatorFunc func(snap *pose.Snapshot) State

// Evaluate calls f(snap)
func (f EvaluatorFunc) Evaluate(snap *pose.Snapshot) State {
	return f(snap)
}

// WristCross flags the posture for reset when the left wrist is left of the
// right wrist in image coordinates, which on an unmirrored camera frame
// means the arms are crossed.
type WristCross struct{}

// Evaluate compares the horizontal position of both wrists.  If either wrist
// was not detected the result is Indeterminate.
func (WristCross) Evaluate(snap *pose.Snapshot) State {

	if snap == nil {
		return Indeterminate
	}

	left := snap.Keypoints[pose.LeftWrist]
	right := snap.Keypoints[pose.RightWrist]

	if !left.Detected() || !right.Detected() {
		return Indeterminate
	}

	if left.X < right.X {
		return ResetPosture
	}

	return OK
}
