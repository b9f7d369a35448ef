package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/touchless/internal/capture"
	"github.com/ayusman/touchless/internal/detector"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
	"github.com/ayusman/touchless/internal/presence"
	"github.com/ayusman/touchless/internal/screens"
)

type recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

func (r *recorder) Publish(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, v.(Snapshot))
	return nil
}

func (r *recorder) last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[len(r.snapshots)-1]
}

type sink struct {
	wanted bool
	frames [][]byte
}

func (s *sink) Wanted() bool        { return s.wanted }
func (s *sink) Publish(jpeg []byte) { s.frames = append(s.frames, jpeg) }

type fixture struct {
	app    *App
	hands  *detector.MockDetector
	faces  *detector.MockFaceDetector
	events *recorder
	frames *sink
	frame  gocv.Mat
}

func newFixture(t *testing.T, camera capture.Camera) *fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("needs OpenCV")
	}

	logger := zap.NewNop()
	f := &fixture{
		hands:  detector.NewMockDetector(),
		faces:  detector.NewMockFaceDetector(),
		events: &recorder{},
		frames: &sink{},
		frame:  gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3),
	}
	t.Cleanup(func() { f.frame.Close() })

	if camera == nil {
		camera = capture.NewMockCamera([]*gocv.Mat{&f.frame}, true)
	}
	f.app = New(Config{
		Camera:      camera,
		Hands:       f.hands,
		Presence:    presence.NewDetector(f.faces, presence.DefaultConfig(), logger),
		SampleEvery: 5,
		Gesture:     gesture.DefaultConfig(),
		Kiosk:       kiosk.DefaultConfig(),
		Factory:     screens.NewFactory(context.Background(), screens.DefaultConfig(), nil, logger),
		Events:      f.events,
		Frames:      f.frames,
		Logger:      logger,
	})
	return f
}

// wake feeds a close face until the kiosk leaves attract mode.
func (f *fixture) wake(t *testing.T, start time.Time) time.Time {
	t.Helper()
	f.faces.SetFaces([]detector.FaceBox{detector.CloseFace()})
	now := start
	for i := 0; i < 20 && f.app.Mode() == kiosk.ModeAttract; i++ {
		f.app.processFrame(&f.frame, now)
		now = now.Add(100 * time.Millisecond)
	}
	require.Equal(t, kiosk.ModeMenu, f.app.Mode())
	return now
}

func TestApp_WakeToMenu(t *testing.T) {
	f := newFixture(t, nil)
	start := time.Unix(1000, 0)

	f.app.processFrame(&f.frame, start)
	assert.Equal(t, kiosk.ModeAttract, f.events.last().Mode)
	assert.Empty(t, f.events.last().Session)

	f.wake(t, start.Add(100*time.Millisecond))

	snap := f.events.last()
	assert.Equal(t, kiosk.ModeMenu, snap.Mode)
	assert.NotEmpty(t, snap.Session)
	assert.True(t, snap.Enabled)
	assert.IsType(t, screens.MenuView{}, snap.View)
	assert.Equal(t, snap, f.app.Snapshot())
}

func TestApp_WakeProgressReported(t *testing.T) {
	f := newFixture(t, nil)
	start := time.Unix(1000, 0)
	f.faces.SetFaces([]detector.FaceBox{detector.CloseFace()})

	f.app.processFrame(&f.frame, start)
	f.app.processFrame(&f.frame, start.Add(400*time.Millisecond))

	assert.InDelta(t, 0.5, f.events.last().WakeProgress, 1e-9)
}

func TestApp_DistantFaceDoesNotWake(t *testing.T) {
	f := newFixture(t, nil)
	f.faces.SetFaces([]detector.FaceBox{detector.DistantFace()})

	now := time.Unix(1000, 0)
	for i := 0; i < 30; i++ {
		f.app.processFrame(&f.frame, now)
		now = now.Add(100 * time.Millisecond)
	}
	assert.Equal(t, kiosk.ModeAttract, f.app.Mode())
}

func TestApp_IdleReturnsToAttract(t *testing.T) {
	f := newFixture(t, nil)
	now := f.wake(t, time.Unix(1000, 0))
	session := f.events.last().Session

	f.faces.SetFaces(nil)
	f.app.processFrame(&f.frame, now.Add(5*time.Second))
	assert.Equal(t, kiosk.ModeMenu, f.app.Mode())

	f.app.processFrame(&f.frame, now.Add(11*time.Second))
	assert.Equal(t, kiosk.ModeAttract, f.app.Mode())
	assert.Empty(t, f.events.last().Session)

	// A new visitor gets a new session.
	f.wake(t, now.Add(20*time.Second))
	assert.NotEqual(t, session, f.events.last().Session)
}

func TestApp_HandKeepsSessionAlive(t *testing.T) {
	f := newFixture(t, nil)
	now := f.wake(t, time.Unix(1000, 0))

	f.faces.SetFaces(nil)
	f.hands.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.9)})
	for i := 0; i < 30; i++ {
		now = now.Add(time.Second)
		f.app.processFrame(&f.frame, now)
	}
	assert.NotEqual(t, kiosk.ModeAttract, f.app.Mode())
	assert.True(t, f.events.last().Cursor.Detected)
}

func TestApp_HandDetectorErrorIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	now := f.wake(t, time.Unix(1000, 0))

	f.hands.SetError(errors.New("model crashed"))
	f.app.processFrame(&f.frame, now)

	assert.False(t, f.events.last().Cursor.Detected)
	assert.Equal(t, kiosk.ModeMenu, f.app.Mode())
}

func TestApp_Pause(t *testing.T) {
	f := newFixture(t, nil)
	now := f.wake(t, time.Unix(1000, 0))

	f.app.SetEnabled(false)
	assert.False(t, f.app.IsEnabled())
	calls := f.hands.Calls()

	f.app.processFrame(&f.frame, now)
	snap := f.events.last()
	assert.Equal(t, kiosk.ModeAttract, snap.Mode)
	assert.False(t, snap.Enabled)
	assert.Equal(t, calls, f.hands.Calls(), "no detection while paused")

	// Presence does not wake a paused kiosk.
	for i := 0; i < 20; i++ {
		now = now.Add(100 * time.Millisecond)
		f.app.processFrame(&f.frame, now)
	}
	assert.Equal(t, kiosk.ModeAttract, f.app.Mode())

	f.app.SetEnabled(true)
	f.wake(t, now)
}

func TestApp_PreviewOnlyWhenWatched(t *testing.T) {
	f := newFixture(t, nil)
	now := time.Unix(1000, 0)

	f.app.processFrame(&f.frame, now)
	assert.Empty(t, f.frames.frames)

	f.frames.wanted = true
	f.app.processFrame(&f.frame, now.Add(100*time.Millisecond))
	require.Len(t, f.frames.frames, 1)
	assert.Equal(t, []byte{0xFF, 0xD8}, f.frames.frames[0][:2], "JPEG magic")
}

func TestApp_GateSkipsStillFrames(t *testing.T) {
	f := newFixture(t, nil)
	motion := &stillMotion{}
	f.app.config.Gate = capture.NewGate(motion, f.app.Camera(), 5, 30, 200*time.Millisecond)
	f.faces.SetFaces([]detector.FaceBox{detector.CloseFace()})

	now := time.Unix(1000, 0)
	for i := 0; i < 30; i++ {
		f.app.processFrame(&f.frame, now)
		now = now.Add(100 * time.Millisecond)
	}

	// Only the frames inside the startup hold reached the face detector.
	assert.Equal(t, kiosk.ModeAttract, f.app.Mode())
	assert.Equal(t, 3, f.faces.Calls())
	assert.False(t, f.app.config.Gate.Open())
}

type stillMotion struct{}

func (stillMotion) Detect(*gocv.Mat) (bool, float64) { return false, 0 }
func (stillMotion) Reset()                           {}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	f := newFixture(t, nil)
	camera := f.app.Camera()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.app.Run(ctx) }()

	require.Eventually(t, func() bool {
		f.events.mu.Lock()
		defer f.events.mu.Unlock()
		return len(f.events.snapshots) > 0
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.False(t, camera.IsOpen())
}

func TestApp_RunFrameSourceFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("needs OpenCV")
	}
	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	camera := capture.NewMockCamera([]*gocv.Mat{&frame}, false)
	f := newFixture(t, camera)

	err := f.app.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrameSource)
	assert.ErrorIs(t, err, capture.ErrNoMoreFrames)
	assert.False(t, camera.IsOpen())
	assert.Len(t, f.events.snapshots, 1)
}
