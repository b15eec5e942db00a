package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/bodyplay/internal/capture"
)

// DefaultStreamInterval caps the MJPEG stream at about 15 frames per second.
const DefaultStreamInterval = 66 * time.Millisecond

// StreamHandler serves the camera as an MJPEG stream. Frames are read from a
// slot filled by the capture pipeline, so viewers never touch the camera.
type StreamHandler struct {
	frames   *capture.Slot[[]byte]
	interval time.Duration
}

// NewStreamHandler creates a StreamHandler sending at most one frame per
// interval.
func NewStreamHandler(frames *capture.Slot[[]byte], interval time.Duration) *StreamHandler {
	return &StreamHandler{frames: frames, interval: interval}
}

// ServeHTTP streams frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	var seq uint64
	for {
		jpeg, next, err := h.frames.Wait(ctx, seq)
		if err != nil {
			return
		}
		seq = next
		if len(jpeg) == 0 {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		if h.interval > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.interval):
			}
		}
	}
}
