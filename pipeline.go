package posecapture

import (
	"context"
	"time"

	"github.com/swdee/go-posecapture/feedback"
	"github.com/swdee/go-posecapture/logger"
	"github.com/swdee/go-posecapture/metrics"
	"github.com/swdee/go-posecapture/pose"
	"github.com/swdee/go-posecapture/render"
	"gocv.io/x/gocv"
)

// AnnotatedFrame is a frame ready for display
type AnnotatedFrame struct {
	// Mat is the annotated and normalized image, owned by the receiver
	Mat gocv.Mat
	// Feedback is the posture state evaluated for this frame
	Feedback feedback.State
	// Snapshot is the keypoint snapshot drawn on the frame
	Snapshot *pose.Snapshot
	// Captured is when the frame was processed
	Captured time.Time
}

// Presenter displays annotated frames.  Present takes ownership of
// frame.Mat and must close it.
type Presenter interface {
	Present(frame AnnotatedFrame)
}

// PresenterFunc adapts a function to the Presenter interface
type PresenterFunc func(frame AnnotatedFrame)

// Present calls f(frame)
func (f PresenterFunc) Present(frame AnnotatedFrame) {
	f(frame)
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithOverlay sets the keypoint overlay renderer
func WithOverlay(o *render.Overlay) PipelineOption {
	return func(p *Pipeline) {
		p.overlay = o
	}
}

// WithEvaluator sets the feedback evaluator, defaults to feedback.WristCross
func WithEvaluator(e feedback.Evaluator) PipelineOption {
	return func(p *Pipeline) {
		p.evaluator = e
	}
}

// WithNormalizer sets the display geometry applied after drawing
func WithNormalizer(n render.Normalizer) PipelineOption {
	return func(p *Pipeline) {
		p.normalizer = n
	}
}

// WithBanner draws the feedback state as text at the bottom of the frame
func WithBanner(b *render.Banner) PipelineOption {
	return func(p *Pipeline) {
		p.banner = b
	}
}

// WithStatusBar draws the inference statistics at the top of the frame
func WithStatusBar(s *Stats, f render.Font) PipelineOption {
	return func(p *Pipeline) {
		p.stats = s
		p.font = f
		p.showStats = true
	}
}

// WithPipelineLogger sets the logger
func WithPipelineLogger(l logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithPipelineMetrics sets the metrics manager
func WithPipelineMetrics(m *metrics.Manager) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// Pipeline processes one captured frame.  It hands a copy to the inference
// gate, draws the latest snapshot onto the frame, evaluates the feedback
// state and passes the result to the presenter.
type Pipeline struct {
	gate       *InferenceGate
	presenter  Presenter
	overlay    *render.Overlay
	evaluator  feedback.Evaluator
	normalizer render.Normalizer
	banner     *render.Banner
	stats      *Stats
	font       render.Font
	showStats  bool
	log        logger.Logger
	metrics    *metrics.Manager
}

// NewPipeline returns a Pipeline feeding gate and presenting to presenter
func NewPipeline(gate *InferenceGate, presenter Presenter, opts ...PipelineOption) *Pipeline {

	p := &Pipeline{
		gate:      gate,
		presenter: presenter,
		overlay:   render.NewOverlay(render.DefaultOverlayStyle(), nil),
		evaluator: feedback.WristCross{},
		log:       logger.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process annotates frame and presents it.  The overlay is drawn onto frame
// itself in capture coordinates, the presented image is a normalized copy.
func (p *Pipeline) Process(frame *gocv.Mat) feedback.State {

	clone := frame.Clone()

	if p.gate.TryRunInference(clone) == Skipped {
		clone.Close()
	}

	// may still be the previous snapshot if inference was just started
	snap := p.gate.Store().Load()

	p.overlay.Draw(frame, snap)

	state := p.evaluator.Evaluate(snap)
	p.metrics.SetFeedbackState(int(state))

	out := gocv.NewMat()
	p.normalizer.Apply(*frame, &out)

	if p.banner != nil {
		if err := p.banner.Draw(&out, state); err != nil {
			p.log.Warn(context.Background(), "failed to draw feedback banner",
				logger.Error(err))
		}
	}

	if p.showStats {
		render.StatusBar(&out, p.stats.Summary().String(), p.font)
	}

	p.presenter.Present(AnnotatedFrame{
		Mat:      out,
		Feedback: state,
		Snapshot: snap,
		Captured: time.Now(),
	})

	return state
}

// Gate returns the inference gate frames are submitted to
func (p *Pipeline) Gate() *InferenceGate {
	return p.gate
}
