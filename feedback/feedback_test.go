package feedback

import (
	"testing"

	"github.com/swdee/go-posecapture/pose"
)

func snapshotWithWrists(left, right pose.Keypoint) *pose.Snapshot {
	kps := pose.MissingKeypoints()
	kps[pose.LeftWrist] = left
	kps[pose.RightWrist] = right
	return &pose.Snapshot{Keypoints: kps}
}

func TestWristCross(t *testing.T) {

	tests := []struct {
		name   string
		left   pose.Keypoint
		right  pose.Keypoint
		expect State
	}{
		{"left of right", pose.Keypoint{X: 50, Y: 100}, pose.Keypoint{X: 150, Y: 100}, ResetPosture},
		{"right of left", pose.Keypoint{X: 150, Y: 100}, pose.Keypoint{X: 50, Y: 100}, OK},
		{"same column", pose.Keypoint{X: 80, Y: 100}, pose.Keypoint{X: 80, Y: 40}, OK},
		{"left missing", pose.Missing, pose.Keypoint{X: 150, Y: 100}, Indeterminate},
		{"right missing", pose.Keypoint{X: 50, Y: 100}, pose.Missing, Indeterminate},
		{"both missing", pose.Missing, pose.Missing, Indeterminate},
	}

	for _, tc := range tests {
		got := WristCross{}.Evaluate(snapshotWithWrists(tc.left, tc.right))

		if got != tc.expect {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.expect, got)
		}
	}
}

func TestWristCrossNilSnapshot(t *testing.T) {
	if got := (WristCross{}).Evaluate(nil); got != Indeterminate {
		t.Errorf("expected Indeterminate for nil snapshot, got %s", got)
	}
}

func TestWristCrossDoesNotMutate(t *testing.T) {

	snap := snapshotWithWrists(pose.Keypoint{X: 50, Y: 100}, pose.Keypoint{X: 150, Y: 100})
	before := *snap

	WristCross{}.Evaluate(snap)

	if *snap != before {
		t.Error("Evaluate modified the snapshot")
	}
}

func TestEvaluatorFunc(t *testing.T) {

	var e Evaluator = EvaluatorFunc(func(*pose.Snapshot) State { return OK })

	if e.Evaluate(nil) != OK {
		t.Error("EvaluatorFunc did not delegate")
	}
}

func TestStateString(t *testing.T) {

	tests := map[State]string{
		Indeterminate: "Indeterminate",
		OK:            "OK",
		ResetPosture:  "Reset Posture",
		State(42):     "Indeterminate",
	}

	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() expected %q, got %q", int(s), want, s.String())
		}
	}
}
