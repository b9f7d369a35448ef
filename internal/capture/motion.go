package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// blurSize is the Gaussian kernel applied before differencing.
	blurSize = 21
	// pixelDelta is the grey-level change that marks a pixel as changed.
	pixelDelta = 25
	// analysisWidth is the width frames are shrunk to before differencing.
	analysisWidth = 320
)

// MotionDetector reports motion between consecutive frames by frame
// differencing on a blurred, downscaled greyscale copy.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
	mu        sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage of
// pixels that must change, so 1.0 means 1%.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame with the previous one and returns whether motion was
// seen along with the changed-pixel percentage. The first frame after
// construction or Reset only primes the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()
	if gray.Cols() > analysisWidth {
		h := gray.Rows() * analysisWidth / gray.Cols()
		gocv.Resize(gray, &small, image.Pt(analysisWidth, h), 0, 0, gocv.InterpolationArea)
	} else {
		gray.CopyTo(&small)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(small, &blurred, image.Pt(blurSize, blurSize), 0, 0, gocv.BorderDefault)

	if !m.primed || m.prev.Rows() != blurred.Rows() || m.prev.Cols() != blurred.Cols() {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, pixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100.0

	blurred.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset drops the baseline so the next frame primes it again.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold sets the motion detection threshold.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}

// MotionSource is what the Gate needs from a motion detector.
type MotionSource interface {
	Detect(frame *gocv.Mat) (bool, float64)
	Reset()
}

// Gate keeps the attract screen cheap: while nothing moves the camera runs
// at the idle rate and face detection is skipped. Motion opens the gate for
// hold, during which the camera runs at the active rate.
type Gate struct {
	motion    MotionSource
	camera    Camera
	idleFPS   int
	activeFPS int
	hold      time.Duration

	lastMotion time.Time
	open       bool
	primed     bool
}

// NewGate creates a Gate that switches camera between idleFPS and activeFPS.
func NewGate(motion MotionSource, camera Camera, idleFPS, activeFPS int, hold time.Duration) *Gate {
	return &Gate{
		motion:    motion,
		camera:    camera,
		idleFPS:   idleFPS,
		activeFPS: activeFPS,
		hold:      hold,
	}
}

// Observe feeds one frame and reports whether the frame should be analyzed.
// The very first frame is always analyzed so somebody already standing in
// front of the kiosk at startup is not missed.
func (g *Gate) Observe(frame *gocv.Mat, now time.Time) bool {
	moved, _ := g.motion.Detect(frame)
	if moved || !g.primed {
		g.lastMotion = now
		g.primed = true
	}

	open := now.Sub(g.lastMotion) <= g.hold
	if open != g.open {
		g.open = open
		if open {
			g.camera.SetFPS(g.activeFPS)
		} else {
			g.camera.SetFPS(g.idleFPS)
		}
	}
	return open
}

// Force opens the gate at the active rate, used when leaving the attract
// screen so the interactive modes always run at full speed.
func (g *Gate) Force(now time.Time) {
	g.lastMotion = now
	g.primed = true
	g.motion.Reset()
	if !g.open {
		g.open = true
		g.camera.SetFPS(g.activeFPS)
	}
}

// Open reports the current gate state.
func (g *Gate) Open() bool {
	return g.open
}
