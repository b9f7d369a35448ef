// Package app runs the kiosk frame loop: perception, gesture recognition,
// presence and the mode orchestrator, one frame at a time.
package app

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/touchless/internal/capture"
	"github.com/ayusman/touchless/internal/detector"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
	"github.com/ayusman/touchless/internal/presence"
)

// ErrFrameSource is returned by Run when the camera cannot deliver frames.
var ErrFrameSource = errors.New("frame source failed")

// Publisher receives one view snapshot per frame.
type Publisher interface {
	Publish(v any) error
}

// FrameSink receives JPEG preview frames while somebody is watching.
type FrameSink interface {
	Wanted() bool
	Publish(jpeg []byte)
}

// Config holds the loop's collaborators. Camera, Factory and Logger are
// required; a nil Hands, Presence or Gate disables that stage.
type Config struct {
	Camera   capture.Camera
	Hands    detector.HandDetector
	Presence *presence.Detector
	// Gate skips face detection on still frames in attract mode.
	Gate *capture.Gate
	// SampleEvery is the presence sampling interval outside attract mode.
	SampleEvery int

	Gesture gesture.Config
	Kiosk   kiosk.Config
	Factory kiosk.Factory

	Events Publisher
	Frames FrameSink
	Logger *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Snapshot is the state published after every frame.
type Snapshot struct {
	Session      string          `json:"session,omitempty"`
	Frame        uint64          `json:"frame"`
	Time         time.Time       `json:"time"`
	Enabled      bool            `json:"enabled"`
	Mode         kiosk.Mode      `json:"mode"`
	Game         kiosk.GameKind  `json:"game,omitempty"`
	Cursor       gesture.Cursor  `json:"cursor"`
	Gesture      gesture.Gesture `json:"gesture"`
	WakeProgress float64         `json:"wake_progress,omitempty"`
	View         any             `json:"view,omitempty"`
}

// App is the kiosk application.
type App struct {
	config     Config
	logger     *zap.Logger
	camera     capture.Camera
	engine     *gesture.Engine
	orch       *kiosk.Orchestrator
	supervisor *presence.Supervisor

	frameIndex uint64
	session    string

	enabled  bool
	mu       sync.RWMutex
	snapshot Snapshot
}

// New creates a new App with the given configuration. Detection starts
// enabled.
func New(config Config) *App {
	if config.Now == nil {
		config.Now = time.Now
	}
	logger := config.Logger.Named("app")

	a := &App{
		config:  config,
		logger:  logger,
		camera:  config.Camera,
		engine:  gesture.NewEngine(config.Gesture),
		orch:    kiosk.New(config.Factory, config.Kiosk, config.Logger),
		enabled: true,
	}
	if config.Presence != nil {
		a.supervisor = presence.NewSupervisor(config.Presence, config.SampleEvery)
	}
	return a
}

// SetEnabled pauses or resumes interaction. While paused frames are still
// read for the preview but the kiosk stays on the attract screen.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled != enabled {
		a.logger.Info("interaction toggled", zap.Bool("enabled", enabled))
	}
	a.enabled = enabled
}

// IsEnabled returns whether interaction is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Snapshot returns the state after the last processed frame.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Mode returns the orchestrator mode. Only safe from the frame loop or
// after Run has returned.
func (a *App) Mode() kiosk.Mode {
	return a.orch.Mode()
}

func (a *App) publish(s Snapshot) {
	a.mu.Lock()
	a.snapshot = s
	a.mu.Unlock()

	if a.config.Events == nil {
		return
	}
	if err := a.config.Events.Publish(s); err != nil {
		a.logger.Debug("publish snapshot", zap.Error(err))
	}
}

func newSession() string {
	return uuid.NewString()
}
