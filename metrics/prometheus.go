// Package metrics provides Prometheus metrics for the pose capture pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// cycle results used as label values
const (
	CycleProcessed = "processed"
	CycleDropped   = "dropped"
	CycleEmpty     = "empty"
)

// Manager owns the pipeline metrics.  A nil *Manager is valid and records
// nothing, so library users may leave metrics unconfigured.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	framesCaptured    prometheus.Counter
	slotDrops         prometheus.Counter
	cycles            *prometheus.CounterVec
	inferenceStarted  prometheus.Counter
	inferenceSkipped  prometheus.Counter
	inferenceFailed   prometheus.Counter
	inferenceDuration prometheus.Histogram
	snapshotSeq       prometheus.Gauge
	feedbackState     prometheus.Gauge
	streamClients     prometheus.Gauge
}

// NewManager creates a new metrics manager registered on the configured
// registry, prometheus.DefaultRegisterer unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "posecapture",
		subsystem:        "pipeline",
		histogramBuckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesCaptured = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_captured_total",
		Help:      "Total number of frames read from the camera source",
	})

	m.slotDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_overwritten_total",
		Help:      "Total number of captured frames replaced before a cycle retrieved them",
	})

	m.cycles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycles_total",
		Help:      "Capture cycles by result (processed, dropped, empty)",
	}, []string{"result"})

	m.inferenceStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_started_total",
		Help:      "Total number of inferences started by the gate",
	})

	m.inferenceSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_skipped_total",
		Help:      "Total number of frames not sent to inference as one was in flight",
	})

	m.inferenceFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_failed_total",
		Help:      "Total number of inferences that returned an error",
	})

	m.inferenceDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_duration_seconds",
		Help:      "Histogram of pose estimator run time",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotSeq = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_sequence",
		Help:      "Sequence number of the latest published keypoint snapshot",
	})

	m.feedbackState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feedback_state",
		Help:      "Latest feedback state (0 indeterminate, 1 ok, 2 reset posture)",
	})

	m.streamClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_clients",
		Help:      "Number of connected MJPEG stream clients",
	})
}

// RecordFrameCaptured counts a frame read from the camera.
func (m *Manager) RecordFrameCaptured() {
	if m == nil {
		return
	}
	m.framesCaptured.Inc()
}

// RecordFrameOverwritten counts a captured frame replaced before use.
func (m *Manager) RecordFrameOverwritten() {
	if m == nil {
		return
	}
	m.slotDrops.Inc()
}

// RecordCycle counts a capture cycle with the given result label.
func (m *Manager) RecordCycle(result string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(result).Inc()
}

// RecordInferenceStarted counts an inference admitted by the gate.
func (m *Manager) RecordInferenceStarted() {
	if m == nil {
		return
	}
	m.inferenceStarted.Inc()
}

// RecordInferenceSkipped counts a frame turned away by a busy gate.
func (m *Manager) RecordInferenceSkipped() {
	if m == nil {
		return
	}
	m.inferenceSkipped.Inc()
}

// RecordInferenceFailed counts an estimator error.
func (m *Manager) RecordInferenceFailed() {
	if m == nil {
		return
	}
	m.inferenceFailed.Inc()
}

// ObserveInferenceDuration records estimator run time in seconds.
func (m *Manager) ObserveInferenceDuration(seconds float64) {
	if m == nil {
		return
	}
	m.inferenceDuration.Observe(seconds)
}

// SetSnapshotSeq records the latest published snapshot sequence.
func (m *Manager) SetSnapshotSeq(seq uint64) {
	if m == nil {
		return
	}
	m.snapshotSeq.Set(float64(seq))
}

// SetFeedbackState records the latest feedback state value.
func (m *Manager) SetFeedbackState(state int) {
	if m == nil {
		return
	}
	m.feedbackState.Set(float64(state))
}

// AddStreamClients adjusts the connected stream client count by delta.
func (m *Manager) AddStreamClients(delta int) {
	if m == nil {
		return
	}
	m.streamClients.Add(float64(delta))
}
