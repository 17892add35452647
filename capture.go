package posecapture

import (
	"context"
	"sync"

	"github.com/swdee/go-posecapture/logger"
	"github.com/swdee/go-posecapture/metrics"
	"gocv.io/x/gocv"
)

// Retriever returns the latest captured frame.  Retrieve copies the frame into
// dst and reports false when no frame is available.
type Retriever interface {
	Retrieve(dst *gocv.Mat) bool
}

// CycleResult is the outcome of a capture cycle
type CycleResult int

const (
	// Dropped means a previous cycle was still running
	Dropped CycleResult = iota
	// Empty means no frame could be retrieved
	Empty
	// Processed means a frame was annotated and presented
	Processed
)

func (c CycleResult) String() string {
	switch c {
	case Processed:
		return metrics.CycleProcessed
	case Empty:
		return metrics.CycleEmpty
	default:
		return metrics.CycleDropped
	}
}

// LoopOption configures a CaptureLoop
type LoopOption func(*CaptureLoop)

// WithLoopLogger sets the logger
func WithLoopLogger(l logger.Logger) LoopOption {
	return func(c *CaptureLoop) {
		c.log = l
	}
}

// WithLoopMetrics sets the metrics manager
func WithLoopMetrics(m *metrics.Manager) LoopOption {
	return func(c *CaptureLoop) {
		c.metrics = m
	}
}

// CaptureLoop runs a pipeline cycle for each frame-ready notification.  At
// most one cycle runs at a time, a notification arriving during a cycle is
// dropped rather than queued.
type CaptureLoop struct {
	source   Retriever
	pipeline *Pipeline
	guard    Guard
	wg       sync.WaitGroup
	log      logger.Logger
	metrics  *metrics.Manager
}

// NewCaptureLoop returns a loop retrieving frames from source
func NewCaptureLoop(source Retriever, pipeline *Pipeline, opts ...LoopOption) *CaptureLoop {

	c := &CaptureLoop{
		source:   source,
		pipeline: pipeline,
		log:      logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Cycle retrieves the latest frame and processes it.  It never blocks on
// another cycle or on inference.
func (c *CaptureLoop) Cycle() CycleResult {

	if !c.guard.TryEnter() {
		c.metrics.RecordCycle(metrics.CycleDropped)
		return Dropped
	}

	defer c.guard.Exit()

	frame := gocv.NewMat()
	defer frame.Close()

	if !c.source.Retrieve(&frame) || frame.Empty() {
		c.metrics.RecordCycle(metrics.CycleEmpty)
		c.log.Debug(context.Background(), "no frame retrieved, skipping cycle")
		return Empty
	}

	c.pipeline.Process(&frame)
	c.metrics.RecordCycle(metrics.CycleProcessed)

	return Processed
}

// Run starts a cycle on its own goroutine for every notification received on
// ticks.  It returns when ctx is cancelled or ticks is closed, after running
// cycles and inference have finished.
func (c *CaptureLoop) Run(ctx context.Context, ticks <-chan struct{}) error {

	defer c.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil

		case _, ok := <-ticks:
			if !ok {
				c.log.Info(ctx, "frame source closed, stopping capture loop")
				return nil
			}

			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.Cycle()
			}()
		}
	}
}

// Wait blocks until running cycles and inference have finished
func (c *CaptureLoop) Wait() {
	c.wg.Wait()
	c.pipeline.Gate().Wait()
}
