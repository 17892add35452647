package estimator

import (
	"fmt"
	"image/color"

	"github.com/swdee/go-posecapture/pose"
	"gocv.io/x/gocv"
)

// yoloPoseRows is the number of values per candidate in the YOLOv8-pose
// output, box cx, cy, w, h, the person score and x, y, score per keypoint
const yoloPoseRows = 5 + pose.NumParts*3

// YOLOPoseParams defines the struct containing the YOLOv8-pose parameters to
// use for post processing operations
type YOLOPoseParams struct {
	// InputWidth and InputHeight are the model input tensor dimensions
	InputWidth  int
	InputHeight int
	// BoxThreshold is the minimum person score required for a candidate
	// to be considered
	BoxThreshold float32
	// KeypointThreshold is the minimum keypoint score for it to be detected
	KeypointThreshold float32
	// Backend and Target select the DNN compute backend
	Backend gocv.NetBackendType
	Target  gocv.NetTargetType
}

// YOLOPoseCOCOParams returns an instance of YOLOPoseParams configured with
// default values for a 640x640 model trained on the COCO keypoints dataset
func YOLOPoseCOCOParams() YOLOPoseParams {
	return YOLOPoseParams{
		InputWidth:        640,
		InputHeight:       640,
		BoxThreshold:      0.5,
		KeypointThreshold: 0.3,
		Backend:           gocv.NetBackendDefault,
		Target:            gocv.NetTargetCPU,
	}
}

// YOLOPose estimates keypoints with a YOLOv8-pose ONNX model.  The model
// detects every person in the frame, the keypoints of the highest scoring
// person are returned.
//
// A YOLOPose is not safe for concurrent use.
type YOLOPose struct {
	net    gocv.Net
	params YOLOPoseParams
	input  *modelInput
}

// NewYOLOPose loads the ONNX model
func NewYOLOPose(modelFile string, p YOLOPoseParams) (*YOLOPose, error) {

	if p.InputWidth <= 0 || p.InputHeight <= 0 {
		return nil, fmt.Errorf("%w: invalid input size %dx%d", ErrModelLoad,
			p.InputWidth, p.InputHeight)
	}

	net, err := loadNet(modelFile, "", p.Backend, p.Target)

	if err != nil {
		return nil, err
	}

	return &YOLOPose{
		net:    net,
		params: p,
		input:  newModelInput(p.InputWidth, p.InputHeight),
	}, nil
}

// Estimate runs the model on img and returns the keypoints of the most
// confident person in img coordinates, all keypoints are pose.Missing when
// nobody is detected
func (y *YOLOPose) Estimate(img gocv.Mat) (pose.Keypoints, error) {

	if img.Empty() {
		return pose.MissingKeypoints(), nil
	}

	// YOLO models are trained with grey letterbox padding
	blob := y.input.blob(img, 1.0/255.0, gocv.NewScalar(0, 0, 0, 0), true,
		color.RGBA{R: 114, G: 114, B: 114, A: 255})
	defer blob.Close()

	y.net.SetInput(blob, "")

	prob := y.net.Forward("")
	defer prob.Close()

	return decodeYOLOPose(prob, y.input.letterbox, y.params)
}

// Close releases the model
func (y *YOLOPose) Close() error {
	y.input.Close()
	return y.net.Close()
}

// decodeYOLOPose selects the candidate with the highest person score from the
// [1, 56, candidates] output and maps its keypoints to source coordinates
func decodeYOLOPose(prob gocv.Mat, lb *Letterbox, p YOLOPoseParams) (pose.Keypoints, error) {

	kps := pose.MissingKeypoints()

	s := prob.Size()

	if len(s) != 3 || s[1] != yoloPoseRows || s[2] <= 0 {
		return kps, fmt.Errorf("%w: %v", ErrOutputShape, s)
	}

	data, err := prob.DataPtrFloat32()

	if err != nil {
		return kps, fmt.Errorf("%w: %w", ErrOutputShape, err)
	}

	// values are laid out row major, one row per attribute
	n := s[2]
	at := func(row, idx int) float32 {
		return data[row*n+idx]
	}

	best := -1
	bestScore := p.BoxThreshold

	for i := 0; i < n; i++ {
		if score := at(4, i); score >= bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return kps, nil
	}

	for j := 0; j < pose.NumParts; j++ {
		row := 5 + j*3
		score := at(row+2, best)

		if score < p.KeypointThreshold {
			continue
		}

		pt := lb.ToSource(at(row, best), at(row+1, best))
		kps[j] = pose.Keypoint{X: pt.X, Y: pt.Y, Score: score}
	}

	return kps, nil
}
