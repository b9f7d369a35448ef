// Package presence turns face detections into the attract-screen wake event
// and the sampled "somebody is still here" signal used outside of it.
package presence

import (
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/touchless/internal/detector"
)

// Event is the one-shot output of Update.
type Event int

const (
	EventNone Event = iota
	EventWake
)

func (e Event) String() string {
	if e == EventWake {
		return "WAKE"
	}
	return "NONE"
}

// Config holds the presence tunables.
type Config struct {
	// FaceHeightFraction is the face box height, as a fraction of the frame,
	// above which a face counts as close enough to the kiosk.
	FaceHeightFraction float64
	// WakeAfter is how long presence must last before a wake fires.
	WakeAfter time.Duration
	// SampleEvery is the frame stride of presence checks outside attract.
	SampleEvery int
}

// DefaultConfig returns the tuned kiosk values.
func DefaultConfig() Config {
	return Config{
		FaceHeightFraction: 0.10,
		WakeAfter:          800 * time.Millisecond,
		SampleEvery:        5,
	}
}

// Detector tracks continuous presence in front of the kiosk.
type Detector struct {
	faces  detector.FaceDetector
	cfg    Config
	logger *zap.Logger

	continuousSince time.Time
}

// NewDetector creates a presence detector over a face-detection capability.
func NewDetector(faces detector.FaceDetector, cfg Config, logger *zap.Logger) *Detector {
	return &Detector{
		faces:  faces,
		cfg:    cfg,
		logger: logger.Named("presence"),
	}
}

// IsPresent reports whether any face in frame is tall enough. A detector
// failure counts as nobody present.
func (d *Detector) IsPresent(frame *gocv.Mat) bool {
	faces, err := d.faces.Detect(frame)
	if err != nil {
		d.logger.Debug("face detection failed", zap.Error(err))
		return false
	}
	for _, f := range faces {
		if f.H > d.cfg.FaceHeightFraction {
			return true
		}
	}
	return false
}

// Update runs face detection on frame and advances the wake tracker.
func (d *Detector) Update(frame *gocv.Mat, now time.Time) Event {
	return d.Observe(d.IsPresent(frame), now)
}

// Observe advances the wake tracker with an already computed presence value.
// Wake fires once when presence has lasted longer than WakeAfter, after which
// a fresh interval is required.
func (d *Detector) Observe(present bool, now time.Time) Event {
	if !present {
		d.continuousSince = time.Time{}
		return EventNone
	}
	if d.continuousSince.IsZero() {
		d.continuousSince = now
		return EventNone
	}
	if now.Sub(d.continuousSince) > d.cfg.WakeAfter {
		d.continuousSince = time.Time{}
		d.logger.Debug("wake")
		return EventWake
	}
	return EventNone
}

// WakeProgress is how far the current presence interval is towards a wake,
// in [0,1]. It is 0 when nobody is present.
func (d *Detector) WakeProgress(now time.Time) float64 {
	if d.continuousSince.IsZero() || d.cfg.WakeAfter <= 0 {
		return 0
	}
	p := float64(now.Sub(d.continuousSince)) / float64(d.cfg.WakeAfter)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Reset forgets any presence interval in progress.
func (d *Detector) Reset() {
	d.continuousSince = time.Time{}
}

// Supervisor folds cursor detection and sampled presence into one
// "user is active" signal.
type Supervisor struct {
	presence *Detector
	every    uint64
}

// NewSupervisor samples presence every sampleEvery frames.
func NewSupervisor(presence *Detector, sampleEvery int) *Supervisor {
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	return &Supervisor{presence: presence, every: uint64(sampleEvery)}
}

// Active reports user activity for this frame. A detected cursor is always
// activity; otherwise, outside attract mode, face detection runs on every
// sampled frame only.
func (s *Supervisor) Active(cursorDetected, attract bool, frameIndex uint64, frame *gocv.Mat) bool {
	if cursorDetected {
		return true
	}
	if attract || frameIndex%s.every != 0 {
		return false
	}
	return s.presence.IsPresent(frame)
}
