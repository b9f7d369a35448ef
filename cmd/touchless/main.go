package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/touchless/internal/app"
	"github.com/ayusman/touchless/internal/capture"
	"github.com/ayusman/touchless/internal/config"
	"github.com/ayusman/touchless/internal/content"
	"github.com/ayusman/touchless/internal/detector"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
	"github.com/ayusman/touchless/internal/logging"
	"github.com/ayusman/touchless/internal/presence"
	"github.com/ayusman/touchless/internal/screens"
	"github.com/ayusman/touchless/internal/server"
	"github.com/ayusman/touchless/internal/store"
	"github.com/ayusman/touchless/internal/tray"
)

var _ content.Recorder = (*store.ContentRepository)(nil)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (defaults are used when empty)")
	withTray := flag.Bool("tray", false, "Show the operator system-tray menu")
	flag.Parse()

	if err := run(*configPath, *withTray); err != nil {
		fmt.Fprintf(os.Stderr, "touchless: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, withTray bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dbPath, err := databasePath(cfg.Store.Path)
	if err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// Operator overrides from the settings API sit on top of file and env.
	base := cfg
	overrides, err := st.Settings().All()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("stored settings: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("starting touchless",
		zap.String("db", dbPath),
		zap.Int("overrides", len(overrides)),
		zap.String("addr", cfg.Server.Addr),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	generated := st.GeneratedContent()
	if n, err := generated.Purge(ctx, cfg.Content.Retention); err != nil {
		logger.Warn("purge generated content", zap.Error(err))
	} else if n > 0 {
		logger.Info("purged stale content", zap.Int64("rows", n))
	}

	client := content.NewClient(content.ClientConfig{
		APIKey:  cfg.Content.APIKey,
		BaseURL: cfg.Content.BaseURL,
		Models:  cfg.Content.Models,
		Timeout: cfg.Content.Timeout,
	}, logger)
	if cfg.Content.APIKey == "" {
		logger.Warn("no Gemini API key, games use the built-in content")
	}
	generator := content.NewGemini(client, generated, logger)
	factory := screens.NewFactory(ctx, screenConfig(cfg), generator, logger)

	camera := capture.NewCamera(capture.Options{
		DeviceID: cfg.Camera.DeviceID,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		FPS:      cfg.Camera.ActiveFPS,
		Mirror:   cfg.Camera.Mirror,
	})
	motion := capture.NewMotionDetector(cfg.Camera.MotionThreshold)
	defer motion.Close()
	gate := capture.NewGate(motion, camera, cfg.Camera.IdleFPS, cfg.Camera.ActiveFPS, cfg.Camera.MotionHold)

	hands, closeHands := handDetector(cfg, logger)
	defer closeHands()
	faces, closeFaces := faceDetector(cfg, logger)
	defer closeFaces()

	hub := server.NewHub(logger)
	frames := server.NewFrameBuffer()

	watcher := presence.NewDetector(faces, presence.Config{
		FaceHeightFraction: cfg.Presence.FaceHeightFraction,
		WakeAfter:          cfg.Presence.WakeAfter,
		SampleEvery:        cfg.Presence.SampleEvery,
	}, logger)

	application := app.New(app.Config{
		Camera:      camera,
		Hands:       hands,
		Presence:    watcher,
		Gate:        gate,
		SampleEvery: cfg.Presence.SampleEvery,
		Gesture:     gestureConfig(cfg),
		Kiosk:       kiosk.Config{IdleTimeout: cfg.Kiosk.IdleTimeout},
		Factory:     factory,
		Events:      hub,
		Frames:      frames,
		Logger:      logger,
	})

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info("serving static files", zap.String("dir", staticDir))
	}
	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Base:      base,
		Hub:       hub,
		Frames:    frames,
		Logger:    logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.Server.Addr)
	})
	g.Go(func() error {
		return application.Run(gctx)
	})

	if !withTray {
		return wait(g, logger)
	}

	t := tray.New(application, logger)
	t.OnOpenViewer(func() {
		if err := openBrowser(viewerURL(cfg.Server.Addr)); err != nil {
			logger.Warn("open viewer", zap.Error(err))
		}
	})
	t.OnQuit(cancel)

	done := make(chan error, 1)
	go func() {
		done <- wait(g, logger)
		t.Quit()
	}()
	go trackMode(gctx, t, application)

	// systray owns the main goroutine until Quit.
	t.Run()
	cancel()
	return <-done
}

func wait(g *errgroup.Group, logger *zap.Logger) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stopped", zap.Error(err))
		return err
	}
	logger.Info("stopped")
	return nil
}

func trackMode(ctx context.Context, t *tray.Tray, a *app.App) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mode := a.Snapshot().Mode.String()
			if !a.IsEnabled() {
				mode = "paused"
			}
			if mode != last {
				t.SetMode(mode)
				last = mode
			}
		}
	}
}

func gestureConfig(cfg config.Config) gesture.Config {
	return gesture.Config{
		Alpha:               cfg.Gesture.Alpha,
		PinchThresholdPx:    cfg.Gesture.PinchThresholdPx,
		SwipeWindow:         cfg.Gesture.SwipeWindow,
		SwipeThreshold:      cfg.Gesture.SwipeThreshold,
		SwipeCooldownFrames: cfg.Gesture.SwipeCooldownFrames,
		MirrorSwipe:         cfg.Gesture.MirrorSwipe,
	}
}

func screenConfig(cfg config.Config) screens.Config {
	return screens.Config{
		MenuDwell:       cfg.Dwell.Menu,
		InfoDwell:       cfg.Dwell.Info,
		HubDwell:        cfg.Dwell.GameHub,
		AnswerDwell:     cfg.Dwell.QuizAnswer,
		GameOverDwell:   cfg.Dwell.QuizGameOver,
		BackDwell:       cfg.Dwell.Back,
		QuizFeedback:    cfg.Games.QuizFeedback,
		QuizReturnAfter: cfg.Games.QuizReturnAfter,
		ArcadeTargets:   cfg.Games.ArcadeTargets,
		ArcadeRadius:    cfg.Games.ArcadeTargetRadius,
		ArcadeHold:      cfg.Dwell.ArcadeHold,
		ArcadeEndPause:  cfg.Games.ArcadeEndPause,
		MazeReveal:      cfg.Games.MazeReveal,
		MazeEndPause:    cfg.Games.MazeEndPause,
	}
}

// handDetector starts MediaPipe. Without it the kiosk still runs the
// attract screen and the viewer, it just never sees a hand.
func handDetector(cfg config.Config, logger *zap.Logger) (detector.HandDetector, func()) {
	hands, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        1,
		MinConfidence:   cfg.Detector.MinConfidence,
		MinTrackingConf: 0.5,
		Script:          cfg.Detector.MediaPipeScript,
		Python:          cfg.Detector.Python,
	}, logger)
	if err != nil {
		logger.Error("hand detector unavailable", zap.Error(err))
		return detector.NewMockDetector(), func() {}
	}
	return hands, func() { hands.Close() }
}

func faceDetector(cfg config.Config, logger *zap.Logger) (detector.FaceDetector, func()) {
	fc := detector.DefaultFaceConfig()
	fc.ModelPath = cfg.Detector.FaceModel
	fc.ConfidenceThresh = cfg.Detector.FaceConfidence

	faces, err := detector.NewYuNet(fc)
	if err != nil {
		logger.Error("face detector unavailable, the kiosk will not wake", zap.Error(err))
		return detector.NewMockFaceDetector(), func() {}
	}
	return faces, func() { faces.Close() }
}

// databasePath returns path, or ~/.touchless/touchless.db when empty.
func databasePath(path string) (string, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".touchless", "touchless.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return path, nil
}

// findWebDir searches for the viewer assets in "web", "../web", "../../web"
// and ~/.touchless/web, returning "" when none exists.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".touchless", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
