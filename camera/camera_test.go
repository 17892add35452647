package camera

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

// solidFrame returns a 3 channel frame filled with the given gray level
func solidFrame(level uint8) gocv.Mat {
	img := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&img, image.Rect(0, 0, 16, 16),
		color.RGBA{R: level, G: level, B: level, A: 255}, -1)
	return img
}

func TestSlotRetrieveEmpty(t *testing.T) {

	var s Slot

	dst := gocv.NewMat()
	defer dst.Close()

	if s.Retrieve(&dst) {
		t.Error("Retrieve on empty slot expected false")
	}

	if !dst.Empty() {
		t.Error("Retrieve on empty slot modified dst")
	}
}

func TestSlotLatestWins(t *testing.T) {

	var s Slot
	defer s.Close()

	if s.Publish(solidFrame(10)) {
		t.Error("first Publish reported a drop")
	}

	if !s.Publish(solidFrame(20)) {
		t.Error("second Publish expected to drop the first frame")
	}

	if !s.Publish(solidFrame(30)) {
		t.Error("third Publish expected to drop the second frame")
	}

	if s.Drops() != 2 {
		t.Errorf("expected 2 drops, got %d", s.Drops())
	}

	dst := gocv.NewMat()
	defer dst.Close()

	if !s.Retrieve(&dst) {
		t.Fatal("Retrieve expected a frame")
	}

	if v := dst.GetVecbAt(0, 0)[0]; v != 30 {
		t.Errorf("expected latest frame level 30, got %d", v)
	}

	// slot is emptied by retrieval
	if s.Retrieve(&dst) {
		t.Error("second Retrieve expected false")
	}
}

func TestSlotSkipsEmptyFrame(t *testing.T) {

	var s Slot

	s.Publish(gocv.NewMat())

	dst := gocv.NewMat()
	defer dst.Close()

	if s.Retrieve(&dst) {
		t.Error("Retrieve of an empty Mat expected false")
	}
}

func TestSlotConcurrentPublish(t *testing.T) {

	var s Slot
	defer s.Close()

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(level uint8) {
			defer wg.Done()
			s.Publish(solidFrame(level))
		}(uint8(i * 10))
	}

	wg.Wait()

	if s.Drops() != 7 {
		t.Errorf("expected 7 drops from 8 publishes, got %d", s.Drops())
	}
}

func TestOpenMissingFile(t *testing.T) {

	_, err := Open("/non/existent/video.mp4")

	if err == nil {
		t.Fatal("expected error opening missing file")
	}

	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("expected ErrDeviceUnavailable, got %v", err)
	}
}

// fakeReader delivers a fixed number of frames, a negative count never runs
// out, then fails every read
type fakeReader struct {
	sync.Mutex
	frames int
	closed int
}

func (f *fakeReader) Read(m *gocv.Mat) bool {
	f.Lock()
	defer f.Unlock()

	if f.frames == 0 {
		return false
	}

	if f.frames > 0 {
		f.frames--
	}

	img := solidFrame(100)
	img.CopyTo(m)
	img.Close()

	return true
}

func (f *fakeReader) Get(prop gocv.VideoCaptureProperties) float64 { return 0 }

func (f *fakeReader) Set(prop gocv.VideoCaptureProperties, param float64) {}

func (f *fakeReader) Close() error {
	f.Lock()
	f.closed++
	f.Unlock()
	return nil
}

func (f *fakeReader) closeCount() int {
	f.Lock()
	defer f.Unlock()
	return f.closed
}

// waitClosed reports if ch is closed within the timeout, draining pending
// values
func waitClosed(ch <-chan struct{}, timeout time.Duration) bool {

	deadline := time.After(timeout)

	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func TestStartNoFrames(t *testing.T) {

	reader := &fakeReader{}
	d := newDevice("fake", reader, false)

	err := d.Start(context.Background())

	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}

	if !waitClosed(d.Ticks(), time.Second) {
		t.Error("expected ticks closed after failed start")
	}

	if !waitClosed(d.Done(), time.Second) {
		t.Error("expected done closed after failed start")
	}

	if err := d.Start(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("expected repeated start to report the failure, got %v", err)
	}

	d.Close()

	if reader.closeCount() != 1 {
		t.Errorf("expected reader closed once, got %d", reader.closeCount())
	}
}

func TestStartTwice(t *testing.T) {

	reader := &fakeReader{frames: -1}
	d := newDevice("fake", reader, false)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Errorf("expected second Start on a running device to return nil, got %v", err)
	}

	dst := gocv.NewMat()
	defer dst.Close()

	<-d.Ticks()

	if !d.Retrieve(&dst) || dst.Empty() {
		t.Error("expected a frame from the running device")
	}

	d.Close()
	d.Close()

	if reader.closeCount() != 1 {
		t.Errorf("expected reader closed once, got %d", reader.closeCount())
	}

	if d.Err() != nil {
		t.Errorf("expected no error after clean shutdown, got %v", d.Err())
	}
}

func TestStartAfterClose(t *testing.T) {

	d := newDevice("fake", &fakeReader{frames: -1}, false)
	d.Close()

	err := d.Start(context.Background())

	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	if errors.Is(err, ErrDeviceUnavailable) {
		t.Error("start after close must not report the device as unavailable")
	}
}

func TestDeviceLost(t *testing.T) {

	reader := &fakeReader{frames: 3}
	d := newDevice("fake", reader, false, WithMaxReadFailures(5))
	defer d.Close()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !waitClosed(d.Ticks(), 5*time.Second) {
		t.Fatal("expected ticks closed after the device was lost")
	}

	if !errors.Is(d.Err(), ErrDeviceUnavailable) {
		t.Errorf("expected ErrDeviceUnavailable, got %v", d.Err())
	}
}
