package camera

import (
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Slot is a single frame mailbox between the camera producer and the capture
// loop.  Publishing overwrites any frame not yet retrieved, so the consumer
// always gets the latest frame and intermediate frames are dropped rather
// than queued.
type Slot struct {
	mu    sync.Mutex
	frame *gocv.Mat
	// drops counts frames overwritten before they were retrieved
	drops atomic.Uint64
}

// Publish stores the frame in the slot taking ownership of it.  A previous
// unretrieved frame is closed and counted as dropped.  Returns true if a
// frame was dropped.
func (s *Slot) Publish(frame gocv.Mat) bool {

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := false

	if s.frame != nil {
		s.frame.Close()
		s.drops.Add(1)
		dropped = true
	}

	s.frame = &frame

	return dropped
}

// Retrieve copies the latest frame into dst and empties the slot.  Returns
// false, leaving dst untouched, when no frame is waiting.
func (s *Slot) Retrieve(dst *gocv.Mat) bool {

	s.mu.Lock()
	frame := s.frame
	s.frame = nil
	s.mu.Unlock()

	if frame == nil {
		return false
	}

	defer frame.Close()

	if frame.Empty() {
		return false
	}

	frame.CopyTo(dst)

	return true
}

// Drops returns the number of frames overwritten before retrieval
func (s *Slot) Drops() uint64 {
	return s.drops.Load()
}

// Close releases any frame held in the slot
func (s *Slot) Close() {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame != nil {
		s.frame.Close()
		s.frame = nil
	}
}
