package estimator

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"
)

// loadNet reads a DNN model and selects its compute backend
func loadNet(modelFile, configFile string, backend gocv.NetBackendType,
	target gocv.NetTargetType) (gocv.Net, error) {

	// opencv aborts rather than returning an error for missing files
	if _, err := os.Stat(modelFile); err != nil {
		return gocv.Net{}, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return gocv.Net{}, fmt.Errorf("%w: %w", ErrModelLoad, err)
		}
	}

	net := gocv.ReadNet(modelFile, configFile)

	if net.Empty() {
		net.Close()
		return gocv.Net{}, fmt.Errorf("%w: %s", ErrModelLoad, modelFile)
	}

	if err := net.SetPreferableBackend(backend); err != nil {
		net.Close()
		return gocv.Net{}, fmt.Errorf("%w: set backend: %w", ErrModelLoad, err)
	}

	if err := net.SetPreferableTarget(target); err != nil {
		net.Close()
		return gocv.Net{}, fmt.Errorf("%w: set target: %w", ErrModelLoad, err)
	}

	return net, nil
}

// modelInput letterboxes frames into the model input size, recalculating the
// scaling whenever the frame size changes
type modelInput struct {
	width     int
	height    int
	letterbox *Letterbox
	resized   gocv.Mat
}

func newModelInput(width, height int) *modelInput {
	return &modelInput{
		width:   width,
		height:  height,
		resized: gocv.NewMat(),
	}
}

// blob letterboxes img and converts it to a NCHW input blob which the caller
// must close
func (m *modelInput) blob(img gocv.Mat, scale float64, mean gocv.Scalar,
	swapRB bool, pad color.RGBA) gocv.Mat {

	if m.letterbox == nil || !m.letterbox.Matches(img.Cols(), img.Rows()) {
		if m.letterbox != nil {
			m.letterbox.Close()
		}

		m.letterbox = NewLetterbox(img.Cols(), img.Rows(), m.width, m.height)
	}

	m.letterbox.Resize(img, &m.resized, pad)

	return gocv.BlobFromImage(m.resized, scale, image.Pt(m.width, m.height),
		mean, swapRB, false)
}

func (m *modelInput) Close() error {

	if m.letterbox != nil {
		m.letterbox.Close()
	}

	return m.resized.Close()
}
