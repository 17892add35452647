package estimator

import "errors"

var (
	// ErrModelLoad is returned when the model files can not be read
	ErrModelLoad = errors.New("failed to load pose model")
	// ErrOutputShape is returned when the model output is not a heatmap
	// tensor with at least one channel per body part
	ErrOutputShape = errors.New("unexpected model output shape")
)
