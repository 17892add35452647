/*
Example program capturing frames from a camera or video file, estimating the
pose with an OpenCV DNN heatmap model and presenting the annotated frames as
an MJPEG stream in the browser and optionally in a local window.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swdee/go-posecapture"
	"github.com/swdee/go-posecapture/camera"
	"github.com/swdee/go-posecapture/config"
	"github.com/swdee/go-posecapture/display"
	"github.com/swdee/go-posecapture/estimator"
	"github.com/swdee/go-posecapture/logger"
	"github.com/swdee/go-posecapture/metrics"
	"github.com/swdee/go-posecapture/pose"
	"github.com/swdee/go-posecapture/render"
)

func init() {
	// GUI calls must happen on the main thread
	runtime.LockOSThread()
}

func main() {

	// read in cli flags
	cfgFile := flag.String("c", "", "YAML configuration file, overrides "+
		"defaults and is overridden by POSECAPTURE_ environment variables")
	source := flag.String("v", "", "Camera index, video file or stream URL, "+
		"overrides camera_device")

	flag.Parse()

	if err := run(*cfgFile, *source); err != nil {
		fmt.Fprintf(os.Stderr, "posecapture: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgFile, source string) error {

	cfg, err := config.Load(cfgFile)

	if err != nil {
		return err
	}

	if source != "" {
		cfg.CameraDevice = source
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	log := logger.Default().Named("posecapture")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	if err := posecapture.PinCores(cfg.CPUCores); err != nil {
		log.Warn(ctx, "failed to set CPU affinity", logger.Error(err))
	}

	m := metrics.NewManager()

	est, err := newEstimator(cfg)

	if err != nil {
		return err
	}
	defer est.Close()

	dev, err := camera.Open(cfg.CameraDevice,
		camera.WithResolution(cfg.CameraWidth, cfg.CameraHeight),
		camera.WithFPS(cfg.CameraFPS),
		camera.WithLoop(cfg.LoopVideo),
		camera.WithLogger(log.Named("camera")),
		camera.WithMetrics(m),
	)

	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.Start(ctx); err != nil {
		return err
	}

	// build the presenters
	var presenters display.Fanout
	var win *display.Window

	stream := display.NewStream(
		display.WithJPEGQuality(cfg.JPEGQuality),
		display.WithStreamLogger(log),
		display.WithStreamMetrics(m),
	)

	if cfg.HTTPAddr != "" {
		presenters = append(presenters, stream)
	}

	if cfg.Window {
		win = display.NewWindow("Pose Capture")
		defer win.Close()
		presenters = append(presenters, win)
	}

	banner, err := render.NewBanner(24)

	if err != nil {
		return err
	}

	stats := posecapture.NewStats(30)

	gate := posecapture.NewInferenceGate(est, pose.NewStore(),
		posecapture.WithGateLogger(log.Named("inference")),
		posecapture.WithGateMetrics(m),
		posecapture.WithStats(stats),
	)

	opts := []posecapture.PipelineOption{
		posecapture.WithNormalizer(render.Normalizer{
			Width:  cfg.DisplayWidth,
			Height: cfg.DisplayHeight,
			Mirror: cfg.Mirror,
		}),
		posecapture.WithBanner(banner),
		posecapture.WithPipelineLogger(log),
		posecapture.WithPipelineMetrics(m),
	}

	if cfg.ShowStats {
		opts = append(opts, posecapture.WithStatusBar(stats, render.DefaultFont()))
	}

	pipe := posecapture.NewPipeline(gate, presenters, opts...)

	loop := posecapture.NewCaptureLoop(dev, pipe,
		posecapture.WithLoopLogger(log.Named("capture")),
		posecapture.WithLoopMetrics(m),
	)

	// start http server
	var srv *http.Server

	if cfg.HTTPAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/stream", stream)
		mux.Handle("/metrics", promhttp.Handler())

		srv = &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: mux,
			// streaming handlers end when the program shuts down
			BaseContext: func(net.Listener) context.Context { return ctx },
		}

		go func() {
			log.Info(ctx, fmt.Sprintf("Open browser and view video at http://%s/stream",
				cfg.HTTPAddr))

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "http server failed", logger.Error(err))
				stop()
			}
		}()
	}

	loopDone := make(chan struct{})

	go func() {
		defer close(loopDone)
		loop.Run(ctx, dev.Ticks())
	}()

	// a lost camera ends the capture loop, which must also end the window
	go stopWhenDone(loopDone, stop)

	if win != nil {
		// the window loop owns the main thread until closed
		if err := win.Run(ctx); err != nil {
			log.Info(ctx, "window closed, shutting down")
		}
	} else {
		select {
		case <-ctx.Done():
		case <-loopDone:
		}
	}

	log.Info(ctx, "shutting down")

	stop()
	dev.Close()
	<-loopDone

	if srv != nil {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}

	summary := stats.Summary()

	log.Info(context.Background(), "capture finished",
		logger.Uint64("inferences", summary.Count),
		logger.Float64("fps", summary.FPS),
		logger.Uint64("drops", dev.Drops()),
	)

	if err := dev.Err(); err != nil && !errors.Is(err, camera.ErrEndOfStream) {
		return err
	}

	return nil
}

// poseEstimator is an estimator holding model resources
type poseEstimator interface {
	posecapture.Estimator
	Close() error
}

// newEstimator loads the configured pose model
func newEstimator(cfg *config.Config) (poseEstimator, error) {

	switch cfg.ModelType {
	case config.ModelYOLOPose:
		params := estimator.YOLOPoseCOCOParams()
		params.InputWidth, params.InputHeight = cfg.InputSize()
		params.KeypointThreshold = float32(cfg.KeypointThreshold)

		return estimator.NewYOLOPose(cfg.ModelFile, params)

	default:
		params := estimator.DefaultParams()
		params.InputWidth, params.InputHeight = cfg.InputSize()
		params.Threshold = float32(cfg.KeypointThreshold)

		return estimator.NewHeatmap(cfg.ModelFile, cfg.ModelConfig, params)
	}
}

// stopWhenDone calls stop once done is closed
func stopWhenDone(done <-chan struct{}, stop func()) {
	<-done
	stop()
}
