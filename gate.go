package posecapture

import (
	"context"
	"sync"
	"time"

	"github.com/swdee/go-posecapture/logger"
	"github.com/swdee/go-posecapture/metrics"
	"github.com/swdee/go-posecapture/pose"
	"gocv.io/x/gocv"
)

// Estimator produces keypoints from a frame.  Implementations are called by
// at most one goroutine at a time.
type Estimator interface {
	Estimate(img gocv.Mat) (pose.Keypoints, error)
}

// Outcome of an inference request
type Outcome int

const (
	// Skipped means an inference was already running, the frame was not used
	Skipped Outcome = iota
	// Started means the frame was handed to the estimator
	Started
)

func (o Outcome) String() string {
	if o == Started {
		return "started"
	}
	return "skipped"
}

// GateOption configures an InferenceGate
type GateOption func(*InferenceGate)

// WithGateLogger sets the logger used to report inference results
func WithGateLogger(l logger.Logger) GateOption {
	return func(g *InferenceGate) {
		g.log = l
	}
}

// WithGateMetrics sets the metrics manager
func WithGateMetrics(m *metrics.Manager) GateOption {
	return func(g *InferenceGate) {
		g.metrics = m
	}
}

// WithStats records inference durations into s
func WithStats(s *Stats) GateOption {
	return func(g *InferenceGate) {
		g.stats = s
	}
}

// InferenceGate runs at most one estimation at a time and publishes each
// result to the snapshot store
type InferenceGate struct {
	estimator Estimator
	store     *pose.Store
	guard     Guard
	wg        sync.WaitGroup
	log       logger.Logger
	metrics   *metrics.Manager
	stats     *Stats
}

// NewInferenceGate returns a gate publishing the estimator's results to store
func NewInferenceGate(est Estimator, store *pose.Store, opts ...GateOption) *InferenceGate {

	g := &InferenceGate{
		estimator: est,
		store:     store,
		log:       logger.Nop(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// TryRunInference starts estimating keypoints for frame on its own goroutine
// and returns Started without waiting for the result.  If an inference is
// still running it returns Skipped and does not touch frame or the snapshot.
//
// On Started the gate takes ownership of frame and closes it once the
// estimator is done, on Skipped the caller keeps ownership.
func (g *InferenceGate) TryRunInference(frame gocv.Mat) Outcome {

	if !g.guard.TryEnter() {
		g.metrics.RecordInferenceSkipped()
		return Skipped
	}

	g.metrics.RecordInferenceStarted()

	g.wg.Add(1)
	go g.infer(frame)

	return Started
}

// infer runs the estimator.  The snapshot is published before the guard is
// cleared so the next inference never overlaps a pending publish.
func (g *InferenceGate) infer(frame gocv.Mat) {

	defer g.wg.Done()
	defer g.guard.Exit()
	defer frame.Close()

	start := time.Now()
	kps, err := g.estimator.Estimate(frame)
	elapsed := time.Since(start)

	if err != nil {
		g.metrics.RecordInferenceFailed()
		g.log.Warn(context.Background(), "inference failed, keeping previous snapshot",
			logger.Error(err))
		return
	}

	snap := g.store.Publish(kps)

	g.stats.Add(elapsed)
	g.metrics.ObserveInferenceDuration(elapsed.Seconds())
	g.metrics.SetSnapshotSeq(snap.Seq)

	fps := 0.0
	if elapsed > 0 {
		fps = 1 / elapsed.Seconds()
	}

	g.log.Debug(context.Background(), "inference complete",
		logger.Uint64("seq", snap.Seq),
		logger.Duration("duration", elapsed),
		logger.Float64("fps", fps),
	)
}

// Busy reports if an inference is running
func (g *InferenceGate) Busy() bool {
	return g.guard.Busy()
}

// Store returns the snapshot store results are published to
func (g *InferenceGate) Store() *pose.Store {
	return g.store
}

// Wait blocks until any running inference has finished
func (g *InferenceGate) Wait() {
	g.wg.Wait()
}
