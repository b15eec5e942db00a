package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/bodyplay/internal/pose"
)

// MotionConfig tunes the motion detector.
type MotionConfig struct {
	// Threshold is the percentage of changed pixels that counts as motion.
	Threshold float64
	// BlurSize is the odd Gaussian kernel size applied before differencing.
	BlurSize int
	// DiffThreshold is the per-pixel intensity change that marks a pixel as
	// changed.
	DiffThreshold float32
	// Scale shrinks frames before analysis. Values outside (0,1] disable it.
	Scale float64
}

// DefaultMotionConfig returns the detector settings used by the pipeline.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		Threshold:     1.0,
		BlurSize:      21,
		DiffThreshold: 25,
		Scale:         0.5,
	}
}

// Motion is the result of comparing a frame with the previous one.
type Motion struct {
	Detected bool
	// Percent of pixels that changed, 0-100.
	Percent float64
	// Center of the changed pixels in normalized image coordinates. Zero
	// when nothing changed.
	Center pose.Point
}

// MotionDetector compares consecutive frames by blurred grayscale
// differencing.
type MotionDetector struct {
	config      MotionConfig
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a detector. Invalid settings are replaced by the
// defaults.
func NewMotionDetector(config MotionConfig) *MotionDetector {
	def := DefaultMotionConfig()
	if config.Threshold <= 0 {
		config.Threshold = def.Threshold
	}
	if config.BlurSize <= 0 {
		config.BlurSize = def.BlurSize
	}
	if config.BlurSize%2 == 0 {
		config.BlurSize++
	}
	if config.DiffThreshold <= 0 {
		config.DiffThreshold = def.DiffThreshold
	}
	if config.Scale <= 0 || config.Scale > 1 {
		config.Scale = 1
	}

	return &MotionDetector{
		config:   config,
		prevGray: gocv.NewMat(),
	}
}

// Detect compares frame with the previously seen frame. The first frame only
// establishes the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) Motion {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Motion{}
	}

	small := gocv.NewMat()
	defer small.Close()
	if m.config.Scale < 1 {
		gocv.Resize(*frame, &small, image.Point{}, m.config.Scale, m.config.Scale, gocv.InterpolationArea)
	} else {
		frame.CopyTo(&small)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := m.config.BlurSize
	gocv.GaussianBlur(gray, &blurred, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	// A size change (camera reconfigured) starts a new baseline.
	if !m.initialized || blurred.Rows() != m.prevGray.Rows() || blurred.Cols() != m.prevGray.Cols() {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return Motion{}
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, m.config.DiffThreshold, 255, gocv.ThresholdBinary)

	blurred.CopyTo(&m.prevGray)

	total := thresh.Rows() * thresh.Cols()
	if total == 0 {
		return Motion{}
	}
	changed := gocv.CountNonZero(thresh)
	result := Motion{Percent: float64(changed) / float64(total) * 100}
	result.Detected = result.Percent > m.config.Threshold

	if changed > 0 {
		mo := gocv.Moments(thresh, true)
		if m00 := mo["m00"]; m00 > 0 {
			result.Center = pose.Point{
				X: mo["m10"] / m00 / float64(thresh.Cols()),
				Y: mo["m01"] / m00 / float64(thresh.Rows()),
			}
		}
	}
	return result
}

// Reset drops the baseline so the next frame starts a new comparison.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// Close releases the detector's image buffers.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *MotionDetector) resetLocked() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold changes the changed-pixel percentage that counts as motion.
// Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.Threshold = threshold
}

// Config returns the active settings.
func (m *MotionDetector) Config() MotionConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}
