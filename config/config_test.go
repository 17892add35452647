package config_test

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/swdee/go-posecapture/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.CameraDevice, convey.ShouldEqual, "0")
			convey.So(cfg.InputWidth, convey.ShouldEqual, 0)
			convey.So(cfg.InputHeight, convey.ShouldEqual, 0)
			convey.So(cfg.KeypointThreshold, convey.ShouldEqual, 0.3)
			convey.So(cfg.Mirror, convey.ShouldBeTrue)
			convey.So(cfg.JPEGQuality, convey.ShouldEqual, 80)
			convey.So(cfg.ModelType, convey.ShouldEqual, config.ModelHeatmap)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with invalid values", t, func() {
		tests := []struct {
			name   string
			mutate func(c *config.Config)
			expect string
		}{
			{"empty device", func(c *config.Config) { c.CameraDevice = " " }, "camera_device"},
			{"model type", func(c *config.Config) { c.ModelType = "yolov3" }, "model_type"},
			{"no model", func(c *config.Config) { c.ModelFile = "" }, "model_file"},
			{"negative input", func(c *config.Config) { c.InputWidth = -1; c.InputHeight = 256 }, "must not be negative"},
			{"half input", func(c *config.Config) { c.InputWidth = 320 }, "input_width and input_height must be set together"},
			{"threshold", func(c *config.Config) { c.KeypointThreshold = 1.5 }, "keypoint_threshold"},
			{"half display", func(c *config.Config) { c.DisplayHeight = 0 }, "set together"},
			{"quality", func(c *config.Config) { c.JPEGQuality = 0 }, "jpeg_quality"},
			{"no output", func(c *config.Config) { c.HTTPAddr = ""; c.Window = false }, "no display"},
			{"cpu core", func(c *config.Config) { c.CPUCores = []int{4, 99} }, "cpu core 99"},
		}

		for _, tc := range tests {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+tc.name+" is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.expect)
			})
		}
	})
}

func TestConfig_InputSize(t *testing.T) {
	convey.Convey("Given model types without an explicit input size", t, func() {
		tests := []struct {
			modelType string
			width     int
			height    int
		}{
			{config.ModelHeatmap, 192, 256},
			{config.ModelYOLOPose, 640, 640},
		}

		for _, tc := range tests {
			cfg := config.New()
			cfg.ModelType = tc.modelType
			w, h := cfg.InputSize()

			convey.Convey("Then "+tc.modelType+" uses its own default size", func() {
				convey.So(w, convey.ShouldEqual, tc.width)
				convey.So(h, convey.ShouldEqual, tc.height)
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		}
	})

	convey.Convey("Given an explicit input size", t, func() {
		cfg := config.New()
		cfg.ModelType = config.ModelYOLOPose
		cfg.InputWidth = 320
		cfg.InputHeight = 320
		w, h := cfg.InputSize()

		convey.Convey("Then it overrides the model default", func() {
			convey.So(w, convey.ShouldEqual, 320)
			convey.So(h, convey.ShouldEqual, 320)
		})
	})
}
