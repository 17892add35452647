package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/swdee/go-posecapture/logger"
	"github.com/swdee/go-posecapture/metrics"
	"gocv.io/x/gocv"
)

// ErrEndOfStream is reported by Err when a non looping video file has been
// read to the end
var ErrEndOfStream = errors.New("end of video stream")

const (
	// defaultMaxReadFailures is the number of consecutive failed reads from a
	// live device before it is considered lost
	defaultMaxReadFailures = 30
)

// frameReader is the part of gocv.VideoCapture used by Device
type frameReader interface {
	Read(m *gocv.Mat) bool
	Get(prop gocv.VideoCaptureProperties) float64
	Set(prop gocv.VideoCaptureProperties, param float64)
	Close() error
}

// Device is a camera source backed by gocv.VideoCapture.  Once started a
// producer goroutine reads frames at the source's own cadence into a
// single frame Slot and signals a tick for each read.
type Device struct {
	source  string
	capture frameReader
	// isFile indicates the source is a video file that is paced and may loop
	isFile   bool
	loop     bool
	interval time.Duration

	width, height int
	fps           float64

	maxReadFailures int

	slot  Slot
	ticks chan struct{}

	log     logger.Logger
	metrics *metrics.Manager

	startOnce sync.Once
	startErr  error
	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	errMu sync.Mutex
	err   error
}

// Option configures a Device
type Option func(*Device)

// WithResolution requests the given frame size from a live device
func WithResolution(width, height int) Option {
	return func(d *Device) {
		d.width, d.height = width, height
	}
}

// WithFPS requests a frame rate from a live device, or sets the playback
// rate of a video file
func WithFPS(fps float64) Option {
	return func(d *Device) {
		d.fps = fps
	}
}

// WithLoop restarts video file playback from the first frame at the end
func WithLoop(loop bool) Option {
	return func(d *Device) {
		d.loop = loop
	}
}

// WithMaxReadFailures sets how many consecutive failed reads are tolerated
// before the device is reported unavailable
func WithMaxReadFailures(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.maxReadFailures = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics sets the metrics manager
func WithMetrics(m *metrics.Manager) Option {
	return func(d *Device) {
		d.metrics = m
	}
}

// Open opens the camera source.  The source is either a device index such as
// "0", a video file path or a stream URL.  Failure to open the source
// returns an error wrapping ErrDeviceUnavailable.
func Open(source string, opts ...Option) (*Device, error) {

	var (
		vc     *gocv.VideoCapture
		err    error
		isFile bool
	)

	if idx, convErr := strconv.Atoi(source); convErr == nil {
		vc, err = gocv.OpenVideoCapture(idx)
	} else {
		if info, statErr := os.Stat(source); statErr == nil && info.Mode().IsRegular() {
			isFile = true
		}

		vc, err = gocv.OpenVideoCapture(source)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, source, err)
	}

	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s could not be opened", ErrDeviceUnavailable, source)
	}

	return newDevice(source, vc, isFile, opts...), nil
}

// newDevice wraps an opened reader
func newDevice(source string, capture frameReader, isFile bool, opts ...Option) *Device {

	d := &Device{
		source:          source,
		capture:         capture,
		isFile:          isFile,
		maxReadFailures: defaultMaxReadFailures,
		ticks:           make(chan struct{}, 1),
		done:            make(chan struct{}),
		log:             logger.Nop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.configure()

	return d
}

// configure applies requested capture properties and works out the pacing
// interval for file playback
func (d *Device) configure() {

	if d.isFile {
		fps := d.fps

		if fps <= 0 {
			fps = d.capture.Get(gocv.VideoCaptureFPS)
		}

		if fps > 0 {
			d.interval = time.Duration(float64(time.Second) / fps)
		}

		return
	}

	if d.width > 0 && d.height > 0 {
		d.capture.Set(gocv.VideoCaptureFrameWidth, float64(d.width))
		d.capture.Set(gocv.VideoCaptureFrameHeight, float64(d.height))
	}

	if d.fps > 0 {
		d.capture.Set(gocv.VideoCaptureFPS, d.fps)
	}
}

// Start verifies the source delivers a frame then starts the producer
// goroutine.  Calling Start again returns the result of the first call,
// calling it after Close returns ErrClosed.
func (d *Device) Start(ctx context.Context) error {

	d.startOnce.Do(func() {
		first := gocv.NewMat()

		if ok := d.capture.Read(&first); !ok || first.Empty() {
			first.Close()
			d.startErr = fmt.Errorf("%w: %s delivered no frames", ErrDeviceUnavailable, d.source)
			close(d.done)
			close(d.ticks)
			return
		}

		d.metrics.RecordFrameCaptured()
		d.slot.Publish(first)
		d.notify()

		var runCtx context.Context
		runCtx, d.cancel = context.WithCancel(ctx)

		d.log.Info(ctx, "camera started", logger.String("source", d.source),
			logger.Int("width", first.Cols()), logger.Int("height", first.Rows()),
			logger.Duration("interval", d.interval))

		go d.grab(runCtx)
	})

	return d.startErr
}

// grab is the producer loop reading frames until the context is cancelled or
// the source fails
func (d *Device) grab(ctx context.Context) {

	defer close(d.done)
	defer close(d.ticks)

	var pace <-chan time.Time

	if d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		pace = ticker.C
	}

	failures := 0

	for {
		if pace != nil {
			select {
			case <-ctx.Done():
				return
			case <-pace:
			}
		} else if ctx.Err() != nil {
			return
		}

		img := gocv.NewMat()

		if ok := d.capture.Read(&img); !ok {
			img.Close()

			if d.isFile {
				if !d.loop {
					d.setErr(ErrEndOfStream)
					return
				}

				// rewind, a file that can not produce a frame after
				// rewinding counts towards the failure limit
				d.capture.Set(gocv.VideoCapturePosFrames, 0)
			}

			failures++

			if failures >= d.maxReadFailures {
				d.setErr(fmt.Errorf("%w: %s stopped delivering frames",
					ErrDeviceUnavailable, d.source))
				d.log.Error(ctx, "camera lost", logger.String("source", d.source),
					logger.Int("failures", failures))
				return
			}

			d.notify()
			continue
		}

		failures = 0
		d.metrics.RecordFrameCaptured()

		if img.Empty() {
			// still tick so the capture loop observes the empty read
			img.Close()
			d.notify()
			continue
		}

		if d.slot.Publish(img) {
			d.metrics.RecordFrameOverwritten()
		}

		d.notify()
	}
}

// notify signals a frame event without blocking, a pending unconsumed
// signal already covers this one
func (d *Device) notify() {
	select {
	case d.ticks <- struct{}{}:
	default:
	}
}

// Ticks returns the channel signalled on every frame event.  It is closed
// when the producer stops.
func (d *Device) Ticks() <-chan struct{} {
	return d.ticks
}

// Retrieve copies the latest captured frame into dst, returning false when
// there is no new frame
func (d *Device) Retrieve(dst *gocv.Mat) bool {
	return d.slot.Retrieve(dst)
}

// Drops returns the number of captured frames overwritten before retrieval
func (d *Device) Drops() uint64 {
	return d.slot.Drops()
}

// Err returns the reason the producer stopped, nil while running or after a
// clean shutdown
func (d *Device) Err() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.err
}

func (d *Device) setErr(err error) {
	d.errMu.Lock()
	d.err = err
	d.errMu.Unlock()
}

// Done is closed once the producer goroutine has exited
func (d *Device) Done() <-chan struct{} {
	return d.done
}

// Close stops the producer and releases the capture device
func (d *Device) Close() error {

	// prevent a later Start from launching the producer
	d.startOnce.Do(func() {
		d.startErr = ErrClosed
		close(d.done)
		close(d.ticks)
	})

	if d.cancel != nil {
		d.cancel()
	}

	<-d.done

	var err error

	d.closeOnce.Do(func() {
		d.slot.Close()
		err = d.capture.Close()
	})

	return err
}
