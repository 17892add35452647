package posecapture

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats keeps a ring of the most recent inference durations
type Stats struct {
	sync.Mutex
	samples []float64
	next    int
	full    bool
	count   uint64
}

// Summary of the recorded inference durations
type Summary struct {
	// Count is the total number of inferences recorded
	Count uint64
	// Mean and P95 are calculated over the samples held in the ring
	Mean time.Duration
	P95  time.Duration
	// FPS is the inference rate implied by the mean duration
	FPS float64
}

// NewStats returns a Stats holding up to size samples
func NewStats(size int) *Stats {

	if size < 1 {
		size = 1
	}

	return &Stats{
		samples: make([]float64, size),
	}
}

// Add records an inference duration
func (s *Stats) Add(d time.Duration) {

	if s == nil {
		return
	}

	s.Lock()
	defer s.Unlock()

	s.samples[s.next] = d.Seconds()
	s.next++
	s.count++

	if s.next == len(s.samples) {
		s.next = 0
		s.full = true
	}
}

// Summary calculates the mean and 95th percentile of the held samples
func (s *Stats) Summary() Summary {

	if s == nil {
		return Summary{}
	}

	s.Lock()

	n := s.next
	if s.full {
		n = len(s.samples)
	}

	data := make([]float64, n)
	copy(data, s.samples[:n])
	count := s.count

	s.Unlock()

	if n == 0 {
		return Summary{}
	}

	sort.Float64s(data)

	mean := stat.Mean(data, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, data, nil)

	sum := Summary{
		Count: count,
		Mean:  time.Duration(math.Round(mean * float64(time.Second))),
		P95:   time.Duration(math.Round(p95 * float64(time.Second))),
	}

	if mean > 0 {
		sum.FPS = 1 / mean
	}

	return sum
}

// String returns the summary formatted for the status bar
func (s Summary) String() string {
	return fmt.Sprintf("Inference %.1f FPS  mean %.1fms  p95 %.1fms",
		s.FPS, float64(s.Mean.Microseconds())/1000,
		float64(s.P95.Microseconds())/1000)
}
