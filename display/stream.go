// Package display presents annotated frames, as an MJPEG stream over HTTP
// or in a local GoCV window.
package display

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/swdee/go-posecapture"
	"github.com/swdee/go-posecapture/logger"
	"github.com/swdee/go-posecapture/metrics"
	"gocv.io/x/gocv"
)

// DefaultJPEGQuality is used when no quality is configured
const DefaultJPEGQuality = 80

// StreamOption configures a Stream
type StreamOption func(*Stream)

// WithJPEGQuality sets the JPEG encoding quality 1-100
func WithJPEGQuality(q int) StreamOption {
	return func(s *Stream) {
		if q > 0 && q <= 100 {
			s.quality = q
		}
	}
}

// WithStreamLogger sets the logger
func WithStreamLogger(l logger.Logger) StreamOption {
	return func(s *Stream) {
		s.log = l
	}
}

// WithStreamMetrics sets the metrics manager used to count connected clients
func WithStreamMetrics(m *metrics.Manager) StreamOption {
	return func(s *Stream) {
		s.metrics = m
	}
}

// Stream serves presented frames to browsers as a multipart MJPEG stream.
// Each client holds only the latest encoded frame, a slow client skips
// frames instead of delaying the pipeline.
type Stream struct {
	sync.Mutex
	clients map[uuid.UUID]chan []byte
	quality int
	log     logger.Logger
	metrics *metrics.Manager
}

// NewStream returns a Stream with no clients
func NewStream(opts ...StreamOption) *Stream {

	s := &Stream{
		clients: make(map[uuid.UUID]chan []byte),
		quality: DefaultJPEGQuality,
		log:     logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Present encodes the frame once and offers it to every connected client.
// Frames are not encoded while nobody is watching.
func (s *Stream) Present(frame posecapture.AnnotatedFrame) {

	defer frame.Mat.Close()

	if s.Clients() == 0 || frame.Mat.Empty() {
		return
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame.Mat,
		[]int{gocv.IMWriteJpegQuality, s.quality})

	if err != nil {
		s.log.Warn(context.Background(), "failed to encode frame", logger.Error(err))
		return
	}

	jpg := buf.GetBytes()
	buf.Close()

	s.Lock()
	defer s.Unlock()

	for _, ch := range s.clients {
		offer(ch, jpg)
	}
}

// offer places buf in the single slot channel, replacing any frame the
// client has not yet read
func offer(ch chan []byte, buf []byte) {

	select {
	case ch <- buf:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- buf:
	default:
	}
}

// Clients returns the number of connected clients
func (s *Stream) Clients() int {
	s.Lock()
	defer s.Unlock()
	return len(s.clients)
}

func (s *Stream) register() (uuid.UUID, chan []byte) {

	id := uuid.New()
	ch := make(chan []byte, 1)

	s.Lock()
	s.clients[id] = ch
	s.Unlock()

	s.metrics.AddStreamClients(1)

	return id, ch
}

func (s *Stream) unregister(id uuid.UUID) {

	s.Lock()
	delete(s.clients, id)
	s.Unlock()

	s.metrics.AddStreamClients(-1)
}

// ServeHTTP streams frames to the client until it disconnects
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	id, ch := s.register()
	defer s.unregister(id)

	log := s.log.Named("stream")
	ctx := r.Context()

	log.Info(ctx, "client connected", logger.String("client", id.String()),
		logger.String("remote", r.RemoteAddr))

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	// send headers before the first frame is ready
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "client disconnected", logger.String("client", id.String()))
			return

		case jpg := <-ch:
			if err := writePart(w, jpg); err != nil {
				log.Debug(ctx, "client write failed", logger.String("client", id.String()),
					logger.Error(err))
				return
			}

			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// writePart writes one JPEG image as a multipart section
func writePart(w http.ResponseWriter, jpg []byte) error {

	if _, err := w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
		return err
	}

	if _, err := w.Write(jpg); err != nil {
		return err
	}

	_, err := w.Write([]byte("\r\n"))
	return err
}
