package estimator

import (
	"fmt"
	"image/color"

	"github.com/swdee/go-posecapture/pose"
	"gocv.io/x/gocv"
)

// Params defines the heatmap model parameters
type Params struct {
	// InputWidth and InputHeight are the model input tensor dimensions
	InputWidth  int
	InputHeight int
	// Threshold is the minimum heatmap peak for a keypoint to be detected
	Threshold float32
	// ScaleFactor multiplies pixel values when building the input blob
	ScaleFactor float64
	// Mean is subtracted from pixel values when building the input blob
	Mean gocv.Scalar
	// SwapRB converts the BGR frame to RGB for the model
	SwapRB bool
	// Backend and Target select the DNN compute backend
	Backend gocv.NetBackendType
	Target  gocv.NetTargetType
}

// DefaultParams returns parameters for a top-down COCO keypoint model with a
// 192x256 input producing 17 heatmaps
func DefaultParams() Params {
	return Params{
		InputWidth:  192,
		InputHeight: 256,
		Threshold:   0.3,
		ScaleFactor: 1.0 / 255.0,
		Mean:        gocv.NewScalar(0, 0, 0, 0),
		SwapRB:      true,
		Backend:     gocv.NetBackendDefault,
		Target:      gocv.NetTargetCPU,
	}
}

// Heatmap estimates keypoints with an OpenCV DNN model that outputs one
// heatmap per body part, shaped [1, parts, height, width].  The location of
// each heatmap's peak is taken as the keypoint.
//
// A Heatmap is not safe for concurrent use.
type Heatmap struct {
	net    gocv.Net
	params Params
	input  *modelInput
}

// NewHeatmap loads the model.  configFile may be empty for single file
// formats such as ONNX.
func NewHeatmap(modelFile, configFile string, p Params) (*Heatmap, error) {

	if p.InputWidth <= 0 || p.InputHeight <= 0 {
		return nil, fmt.Errorf("%w: invalid input size %dx%d", ErrModelLoad,
			p.InputWidth, p.InputHeight)
	}

	net, err := loadNet(modelFile, configFile, p.Backend, p.Target)

	if err != nil {
		return nil, err
	}

	return &Heatmap{
		net:    net,
		params: p,
		input:  newModelInput(p.InputWidth, p.InputHeight),
	}, nil
}

// Estimate runs the model on img and returns keypoints in img coordinates.
// Body parts whose heatmap peak is below the threshold are pose.Missing.
func (h *Heatmap) Estimate(img gocv.Mat) (pose.Keypoints, error) {

	if img.Empty() {
		return pose.MissingKeypoints(), nil
	}

	blob := h.input.blob(img, h.params.ScaleFactor, h.params.Mean,
		h.params.SwapRB, color.RGBA{A: 255})
	defer blob.Close()

	h.net.SetInput(blob, "")

	prob := h.net.Forward("")
	defer prob.Close()

	return decodeHeatmaps(prob, h.input.letterbox, h.params.InputWidth,
		h.params.InputHeight, h.params.Threshold)
}

// Close releases the model
func (h *Heatmap) Close() error {
	h.input.Close()
	return h.net.Close()
}

// decodeHeatmaps finds the peak of each body part heatmap in prob and maps it
// from heatmap to source image coordinates
func decodeHeatmaps(prob gocv.Mat, lb *Letterbox, inputW, inputH int,
	threshold float32) (pose.Keypoints, error) {

	kps := pose.MissingKeypoints()

	s := prob.Size()

	if len(s) != 4 || s[1] < pose.NumParts || s[2] <= 0 || s[3] <= 0 {
		return kps, fmt.Errorf("%w: %v", ErrOutputShape, s)
	}

	rows, cols := s[2], s[3]
	strideX := float32(inputW) / float32(cols)
	strideY := float32(inputH) / float32(rows)

	for i := 0; i < pose.NumParts; i++ {
		heatmap, err := prob.FromPtr(rows, cols, gocv.MatTypeCV32F, 0, i)

		if err != nil {
			return kps, fmt.Errorf("error reading heatmap %d: %w", i, err)
		}

		_, maxVal, _, maxLoc := gocv.MinMaxLoc(heatmap)
		heatmap.Close()

		if maxVal < threshold {
			continue
		}

		// use the center of the heatmap cell
		pt := lb.ToSource((float32(maxLoc.X)+0.5)*strideX,
			(float32(maxLoc.Y)+0.5)*strideY)

		kps[i] = pose.Keypoint{X: pt.X, Y: pt.Y, Score: maxVal}
	}

	return kps, nil
}
