// Package config defines the pose capture program configuration and how it
// is layered from defaults, an optional YAML file and environment variables.
package config

import (
	"fmt"
	"strings"
)

// estimator model types
const (
	ModelHeatmap  = "heatmap"
	ModelYOLOPose = "yolov8-pose"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CameraDevice is a camera index ("0"), a video file path or a stream URL.
	CameraDevice string `koanf:"camera_device"`

	// CameraWidth, CameraHeight and CameraFPS are requested from the device
	// when non zero.
	CameraWidth  int     `koanf:"camera_width"`
	CameraHeight int     `koanf:"camera_height"`
	CameraFPS    float64 `koanf:"camera_fps"`

	// LoopVideo restarts a video file source when it reaches the end.
	LoopVideo bool `koanf:"loop_video"`

	// ModelType selects the estimator, "heatmap" or "yolov8-pose".
	ModelType string `koanf:"model_type"`

	// ModelFile and ModelConfig are passed to the DNN reader.
	ModelFile   string `koanf:"model_file"`
	ModelConfig string `koanf:"model_config"`

	// InputWidth and InputHeight are the model input tensor dimensions, zero
	// uses the default size of the model type.
	InputWidth  int `koanf:"input_width"`
	InputHeight int `koanf:"input_height"`

	// KeypointThreshold is the minimum heatmap confidence for a keypoint.
	KeypointThreshold float64 `koanf:"keypoint_threshold"`

	// DisplayWidth and DisplayHeight size the presented frame, zero keeps
	// the captured size.
	DisplayWidth  int `koanf:"display_width"`
	DisplayHeight int `koanf:"display_height"`

	// Mirror flips the presented frame horizontally.
	Mirror bool `koanf:"mirror"`

	// ShowStats draws the inference status bar.
	ShowStats bool `koanf:"show_stats"`

	// HTTPAddr serves the MJPEG stream and /metrics, empty disables it.
	HTTPAddr string `koanf:"http_addr"`

	// JPEGQuality is the MJPEG encoding quality, 1-100.
	JPEGQuality int `koanf:"jpeg_quality"`

	// Window presents frames in a local GUI window.
	Window bool `koanf:"window"`

	// CPUCores pins the process to the given CPU cores when set.
	CPUCores []int `koanf:"cpu_cores"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		CameraDevice:      "0",
		LoopVideo:         true,
		ModelType:         ModelHeatmap,
		ModelFile:         "data/pose-coco17-256x192.onnx",
		KeypointThreshold: 0.3,
		DisplayWidth:      640,
		DisplayHeight:     480,
		Mirror:            true,
		ShowStats:         true,
		HTTPAddr:          "localhost:8080",
		JPEGQuality:       80,
	}
}

// InputSize returns the configured model input size, or the default size
// of the model type when none is set
func (c *Config) InputSize() (width, height int) {

	if c.InputWidth > 0 && c.InputHeight > 0 {
		return c.InputWidth, c.InputHeight
	}

	if c.ModelType == ModelYOLOPose {
		return 640, 640
	}

	return 192, 256
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {

	var problems []string

	if strings.TrimSpace(c.CameraDevice) == "" {
		problems = append(problems, "camera_device must not be empty")
	}

	if c.ModelType != ModelHeatmap && c.ModelType != ModelYOLOPose {
		problems = append(problems, fmt.Sprintf("model_type %q must be %s or %s",
			c.ModelType, ModelHeatmap, ModelYOLOPose))
	}

	if c.ModelFile == "" {
		problems = append(problems, "model_file must not be empty")
	}

	if c.InputWidth < 0 || c.InputHeight < 0 {
		problems = append(problems, "input_width and input_height must not be negative")
	}

	if (c.InputWidth == 0) != (c.InputHeight == 0) {
		problems = append(problems, "input_width and input_height must be set together")
	}

	if c.KeypointThreshold < 0 || c.KeypointThreshold > 1 {
		problems = append(problems, "keypoint_threshold must be within 0-1")
	}

	if c.DisplayWidth < 0 || c.DisplayHeight < 0 {
		problems = append(problems, "display dimensions must not be negative")
	}

	if (c.DisplayWidth == 0) != (c.DisplayHeight == 0) {
		problems = append(problems, "display_width and display_height must be set together")
	}

	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		problems = append(problems, "jpeg_quality must be within 1-100")
	}

	if c.HTTPAddr == "" && !c.Window {
		problems = append(problems, "no display configured, set http_addr or window")
	}

	for _, core := range c.CPUCores {
		if core < 0 || core > 63 {
			problems = append(problems, fmt.Sprintf("cpu core %d out of range", core))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}
