// Package detector turns camera frames into body pose landmark frames.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/bodyplay/internal/pose"
)

// Detector defines the interface for body pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of the most
	// prominent body. Returns a nil frame if no body is detected.
	Detect(frame *gocv.Mat) (pose.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// ModelComplexity selects the pose model: 0 lite, 1 full, 2 heavy.
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleTimeout shuts the service down after this long without a frame.
	IdleTimeout time.Duration

	// DataDir is searched for scripts/ and venv/ in addition to the working
	// and executable directories.
	DataDir string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ModelComplexity: 1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
