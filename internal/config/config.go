// Package config holds every tunable of the kiosk with its default value,
// YAML file loading, environment overrides and validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned (wrapped with the offending field) when a value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete runtime configuration.
type Config struct {
	Camera   Camera   `yaml:"camera"`
	Detector Detector `yaml:"detector"`
	Gesture  Gesture  `yaml:"gesture"`
	Presence Presence `yaml:"presence"`
	Dwell    Dwell    `yaml:"dwell"`
	Kiosk    Kiosk    `yaml:"kiosk"`
	Games    Games    `yaml:"games"`
	Content  Content  `yaml:"content"`
	Server   Server   `yaml:"server"`
	Store    Store    `yaml:"store"`
	Log      Log      `yaml:"log"`
}

// Camera configures the frame source and the attract-mode motion gate.
type Camera struct {
	DeviceID  int  `yaml:"device_id"`
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	IdleFPS   int  `yaml:"idle_fps"`
	ActiveFPS int  `yaml:"active_fps"`
	Mirror    bool `yaml:"mirror"`
	// MotionThreshold is the percentage of changed pixels that counts as motion.
	MotionThreshold float64 `yaml:"motion_threshold"`
	// MotionHold keeps the camera at active FPS for this long after the last motion.
	MotionHold time.Duration `yaml:"motion_hold"`
}

// Detector configures the perception backends.
type Detector struct {
	MediaPipeScript string  `yaml:"mediapipe_script"`
	Python          string  `yaml:"python"`
	MinConfidence   float64 `yaml:"min_confidence"`
	FaceModel       string  `yaml:"face_model"`
	FaceConfidence  float64 `yaml:"face_confidence"`
}

// Gesture configures cursor smoothing, pinch and swipe recognition.
type Gesture struct {
	Alpha               float64 `yaml:"alpha"`
	PinchThresholdPx    float64 `yaml:"pinch_threshold_px"`
	SwipeWindow         int     `yaml:"swipe_window"`
	SwipeThreshold      float64 `yaml:"swipe_threshold"`
	SwipeCooldownFrames int     `yaml:"swipe_cooldown_frames"`
	// MirrorSwipe names a sweep towards increasing x SWIPE_LEFT, the
	// direction that pages forward. Keep it equal to camera.mirror.
	MirrorSwipe bool `yaml:"mirror_swipe"`
}

// Presence configures face presence, wake and attention sampling.
type Presence struct {
	FaceHeightFraction float64       `yaml:"face_height_fraction"`
	WakeAfter          time.Duration `yaml:"wake_after"`
	SampleEvery        int           `yaml:"sample_every"`
}

// Dwell holds the per-widget dwell thresholds.
type Dwell struct {
	Menu         time.Duration `yaml:"menu"`
	Info         time.Duration `yaml:"info"`
	GameHub      time.Duration `yaml:"game_hub"`
	QuizAnswer   time.Duration `yaml:"quiz_answer"`
	QuizGameOver time.Duration `yaml:"quiz_game_over"`
	Back         time.Duration `yaml:"back"`
	ArcadeHold   time.Duration `yaml:"arcade_hold"`
}

// Kiosk configures the top-level mode machine.
type Kiosk struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// Games configures the mini-games.
type Games struct {
	QuizFeedback       time.Duration `yaml:"quiz_feedback"`
	QuizReturnAfter    time.Duration `yaml:"quiz_return_after"`
	ArcadeTargets      int           `yaml:"arcade_targets"`
	ArcadeTargetRadius float64       `yaml:"arcade_target_radius"`
	ArcadeEndPause     time.Duration `yaml:"arcade_end_pause"`
	MazeReveal         time.Duration `yaml:"maze_reveal"`
	MazeEndPause       time.Duration `yaml:"maze_end_pause"`
}

// Content configures remote quiz and maze generation.
type Content struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Models  []string      `yaml:"models"`
	Timeout time.Duration `yaml:"timeout"`
	// Retention is how long generated content is kept in the store.
	Retention time.Duration `yaml:"retention"`
}

// Server configures the operator HTTP surface.
type Server struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// Store configures the SQLite database.
type Store struct {
	Path string `yaml:"path"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level"`
}

// DefaultModels is the ordered list of Gemini models tried for generation.
var DefaultModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-001",
	"gemini-1.5-flash-002",
	"gemini-1.5-flash-8b",
	"gemini-2.0-flash-lite-preview-02-05",
	"gemini-1.5-pro",
	"gemini-1.5-pro-001",
	"gemini-pro",
	"gemini-2.0-flash",
	"gemini-2.5-flash",
}

// Default returns the configuration the kiosk ships with.
func Default() Config {
	return Config{
		Camera: Camera{
			DeviceID:        0,
			Width:           640,
			Height:          480,
			IdleFPS:         5,
			ActiveFPS:       15,
			Mirror:          true,
			MotionThreshold: 1.0,
			MotionHold:      2 * time.Second,
		},
		Detector: Detector{
			MinConfidence:  0.7,
			FaceModel:      "models/face_detection_yunet.onnx",
			FaceConfidence: 0.5,
		},
		Gesture: Gesture{
			Alpha:               0.75,
			PinchThresholdPx:    40,
			SwipeWindow:         7,
			SwipeThreshold:      0.12,
			SwipeCooldownFrames: 12,
			MirrorSwipe:         true,
		},
		Presence: Presence{
			FaceHeightFraction: 0.10,
			WakeAfter:          800 * time.Millisecond,
			SampleEvery:        5,
		},
		Dwell: Dwell{
			Menu:         2 * time.Second,
			Info:         1500 * time.Millisecond,
			GameHub:      1500 * time.Millisecond,
			QuizAnswer:   time.Second,
			QuizGameOver: 1500 * time.Millisecond,
			Back:         time.Second,
			ArcadeHold:   300 * time.Millisecond,
		},
		Kiosk: Kiosk{
			IdleTimeout: 10 * time.Second,
		},
		Games: Games{
			QuizFeedback:       2 * time.Second,
			QuizReturnAfter:    4 * time.Second,
			ArcadeTargets:      5,
			ArcadeTargetRadius: 0.08,
			ArcadeEndPause:     3 * time.Second,
			MazeReveal:         2200 * time.Millisecond,
			MazeEndPause:       2500 * time.Millisecond,
		},
		Content: Content{
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
			Models:    append([]string(nil), DefaultModels...),
			Timeout:   15 * time.Second,
			Retention: 7 * 24 * time.Hour,
		},
		Server: Server{
			Addr: ":8080",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a YAML file on top of the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads YAML from r on top of the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := decodeInto(r, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeInto(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Validate checks ranges. The returned error wraps ErrInvalid.
func (c *Config) Validate() error {
	checks := []struct {
		ok    bool
		field string
	}{
		{c.Camera.Width > 0 && c.Camera.Height > 0, "camera.width/height"},
		{c.Camera.IdleFPS > 0 && c.Camera.ActiveFPS > 0, "camera.idle_fps/active_fps"},
		{c.Camera.MotionThreshold > 0, "camera.motion_threshold"},
		{c.Gesture.Alpha > 0 && c.Gesture.Alpha <= 1, "gesture.alpha"},
		{c.Gesture.PinchThresholdPx > 0, "gesture.pinch_threshold_px"},
		{c.Gesture.SwipeWindow >= 2, "gesture.swipe_window"},
		{c.Gesture.SwipeThreshold > 0, "gesture.swipe_threshold"},
		{c.Gesture.SwipeCooldownFrames >= 0, "gesture.swipe_cooldown_frames"},
		{c.Presence.FaceHeightFraction > 0 && c.Presence.FaceHeightFraction < 1, "presence.face_height_fraction"},
		{c.Presence.WakeAfter > 0, "presence.wake_after"},
		{c.Presence.SampleEvery >= 1, "presence.sample_every"},
		{c.Dwell.Menu > 0, "dwell.menu"},
		{c.Dwell.Info > 0, "dwell.info"},
		{c.Dwell.GameHub > 0, "dwell.game_hub"},
		{c.Dwell.QuizAnswer > 0, "dwell.quiz_answer"},
		{c.Dwell.QuizGameOver > 0, "dwell.quiz_game_over"},
		{c.Dwell.Back > 0, "dwell.back"},
		{c.Dwell.ArcadeHold > 0, "dwell.arcade_hold"},
		{c.Kiosk.IdleTimeout > 0, "kiosk.idle_timeout"},
		{c.Games.ArcadeTargets >= 1, "games.arcade_targets"},
		{c.Games.ArcadeTargetRadius > 0 && c.Games.ArcadeTargetRadius < 0.5, "games.arcade_target_radius"},
		{len(c.Content.Models) > 0, "content.models"},
		{c.Content.Timeout > 0, "content.timeout"},
		{c.Content.Retention > 0, "content.retention"},
		{c.Server.Addr != "", "server.addr"},
	}

	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", ErrInvalid, chk.field)
		}
	}
	return nil
}

// OverrideKeys lists the dotted keys that may be changed at runtime through
// the settings API. Paths, secrets and the listen address are not among them.
var OverrideKeys = []string{
	"camera.mirror",
	"camera.motion_threshold",
	"gesture.alpha",
	"gesture.pinch_threshold_px",
	"gesture.swipe_window",
	"gesture.swipe_threshold",
	"gesture.swipe_cooldown_frames",
	"gesture.mirror_swipe",
	"presence.face_height_fraction",
	"presence.wake_after",
	"presence.sample_every",
	"dwell.menu",
	"dwell.info",
	"dwell.game_hub",
	"dwell.quiz_answer",
	"dwell.quiz_game_over",
	"dwell.back",
	"dwell.arcade_hold",
	"kiosk.idle_timeout",
	"games.quiz_feedback",
	"games.arcade_targets",
	"log.level",
}

// IsOverrideKey reports whether key may be set through ApplyOverrides.
func IsOverrideKey(key string) bool {
	for _, k := range OverrideKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ApplyOverrides applies dotted-key string values (as stored in the settings
// table) on top of c. Values are parsed with YAML scalar rules, so "1.5s",
// "true" and "0.8" all land in their typed fields.
func (c *Config) ApplyOverrides(overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range OverrideKeys {
		value, ok := overrides[key]
		if !ok {
			continue
		}
		section, field, _ := strings.Cut(key, ".")
		mapping := childMapping(root, section)
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: field},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}
	for key := range overrides {
		if !IsOverrideKey(key) {
			return fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
		}
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}

	next := *c
	if err := decodeInto(bytes.NewReader(data), &next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	*c = next
	return nil
}

func childMapping(root *yaml.Node, name string) *yaml.Node {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == name {
			return root.Content[i+1]
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, child)
	return child
}
