package pose

import (
	"sync/atomic"
	"time"
)

// Snapshot is an immutable set of keypoints from one completed inference.
// A Snapshot must never be modified once published.
type Snapshot struct {
	Keypoints Keypoints
	// Seq increments with every published snapshot, the initial snapshot
	// has a Seq of zero
	Seq uint64
	// Updated is the time the snapshot was published
	Updated time.Time
}

// Store holds the latest Snapshot and replaces it as a whole unit so
// readers observe either the previous or the new snapshot, never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]
	seq     atomic.Uint64
}

// NewStore returns a Store holding an all-missing initial snapshot
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{
		Keypoints: MissingKeypoints(),
		Updated:   time.Now(),
	})
	return s
}

// Load returns the latest published snapshot, it is never nil
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Publish replaces the current snapshot with one built from the given
// keypoints and returns it
func (s *Store) Publish(kps Keypoints) *Snapshot {
	snap := &Snapshot{
		Keypoints: kps,
		Seq:       s.seq.Add(1),
		Updated:   time.Now(),
	}

	s.current.Store(snap)

	return snap
}
