// Package gesture turns the per-frame hand landmark stream into a steady
// cursor and discrete gestures: a pinch click and horizontal swipes.
package gesture

import (
	"image"
	"math"

	"github.com/ayusman/touchless/internal/detector"
)

// Gesture is the discrete event reported for a frame.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureClick
	GestureSwipeLeft
	GestureSwipeRight
)

var gestureNames = [...]string{
	GestureNone:       "NONE",
	GestureClick:      "CLICK",
	GestureSwipeLeft:  "SWIPE_LEFT",
	GestureSwipeRight: "SWIPE_RIGHT",
}

func (g Gesture) String() string {
	if g < 0 || int(g) >= len(gestureNames) {
		return "UNKNOWN"
	}
	return gestureNames[g]
}

// MarshalText renders the gesture by name in JSON snapshots.
func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// IsSwipe reports whether g is one of the swipe gestures.
func (g Gesture) IsSwipe() bool {
	return g == GestureSwipeLeft || g == GestureSwipeRight
}

// Cursor is the smoothed pointer position in normalized screen space.
type Cursor struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Detected bool    `json:"detected"`
}

// Result is the output of one Process call.
type Result struct {
	Cursor  Cursor
	Gesture Gesture
}

// Config holds the recognition tunables.
type Config struct {
	// Alpha is the EMA factor in (0,1]; 1 disables smoothing.
	Alpha float64
	// PinchThresholdPx is the index-thumb tip distance, in frame pixels,
	// below which the frame reports a click.
	PinchThresholdPx float64
	// SwipeWindow is the number of smoothed x samples compared end to end.
	SwipeWindow int
	// SwipeThreshold is the normalized x displacement across the window.
	SwipeThreshold float64
	// SwipeCooldownFrames suppresses swipe evaluation after a swipe.
	SwipeCooldownFrames int
	// MirrorSwipe swaps the swipe names for cameras whose image is not mirrored.
	MirrorSwipe bool
}

// DefaultConfig returns the tuned kiosk values.
func DefaultConfig() Config {
	return Config{
		Alpha:               0.75,
		PinchThresholdPx:    40,
		SwipeWindow:         7,
		SwipeThreshold:      0.12,
		SwipeCooldownFrames: 12,
	}
}

// Engine owns the smoothing memory and the swipe window. It is not safe for
// concurrent use; the frame loop is its only caller.
type Engine struct {
	cfg Config

	prevX, prevY float64

	window   []float64
	cooldown int
}

// NewEngine creates an Engine. Smoothing starts from (0,0).
func NewEngine(cfg Config) *Engine {
	if cfg.SwipeWindow < 2 {
		cfg.SwipeWindow = 2
	}
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = 1
	}
	return &Engine{
		cfg:    cfg,
		window: make([]float64, 0, cfg.SwipeWindow),
	}
}

// Process interprets one frame. hand is nil when no hand was seen; frame is
// the pixel size of the image the landmarks came from. An absent hand (or one
// with non-finite tips) leaves all engine state untouched.
func (e *Engine) Process(hand *detector.HandLandmarks, frame image.Point) Result {
	if !hand.Finite() {
		return Result{Cursor: Cursor{X: clamp01(e.prevX), Y: clamp01(e.prevY)}}
	}

	raw := hand.Points[detector.IndexTip]
	x := e.prevX + (raw.X-e.prevX)*e.cfg.Alpha
	y := e.prevY + (raw.Y-e.prevY)*e.cfg.Alpha
	e.prevX, e.prevY = x, y

	res := Result{
		Cursor: Cursor{X: clamp01(x), Y: clamp01(y), Detected: true},
	}

	if e.pinched(hand, frame) {
		res.Gesture = GestureClick
	}
	// A swipe is the rarer event, so it wins over a click on the same frame.
	if swipe := e.swipe(x); swipe != GestureNone {
		res.Gesture = swipe
	}
	return res
}

func (e *Engine) pinched(hand *detector.HandLandmarks, frame image.Point) bool {
	if frame.X <= 0 || frame.Y <= 0 {
		return false
	}
	d := hand.PixelDistance(detector.IndexTip, detector.ThumbTip, frame)
	return d < e.cfg.PinchThresholdPx
}

func (e *Engine) swipe(x float64) Gesture {
	if e.cooldown > 0 {
		e.cooldown--
		return GestureNone
	}

	if len(e.window) == e.cfg.SwipeWindow {
		copy(e.window, e.window[1:])
		e.window = e.window[:len(e.window)-1]
	}
	e.window = append(e.window, x)
	if len(e.window) < e.cfg.SwipeWindow {
		return GestureNone
	}

	d := e.window[len(e.window)-1] - e.window[0]
	var g Gesture
	switch {
	case d > e.cfg.SwipeThreshold:
		g = GestureSwipeRight
	case d < -e.cfg.SwipeThreshold:
		g = GestureSwipeLeft
	default:
		return GestureNone
	}

	e.window = e.window[:0]
	e.cooldown = e.cfg.SwipeCooldownFrames

	if e.cfg.MirrorSwipe {
		if g == GestureSwipeRight {
			return GestureSwipeLeft
		}
		return GestureSwipeRight
	}
	return g
}

// Reset forgets smoothing memory, the swipe window and any cooldown.
func (e *Engine) Reset() {
	e.prevX, e.prevY = 0, 0
	e.window = e.window[:0]
	e.cooldown = 0
}

// Smoothed returns the smoothing memory.
func (e *Engine) Smoothed() (x, y float64) {
	return e.prevX, e.prevY
}

// Cooldown returns the remaining swipe cooldown in frames.
func (e *Engine) Cooldown() int {
	return e.cooldown
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
