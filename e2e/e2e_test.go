package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/touchless/internal/app"
	"github.com/ayusman/touchless/internal/capture"
	"github.com/ayusman/touchless/internal/config"
	"github.com/ayusman/touchless/internal/content"
	"github.com/ayusman/touchless/internal/detector"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
	"github.com/ayusman/touchless/internal/presence"
	"github.com/ayusman/touchless/internal/screens"
	"github.com/ayusman/touchless/internal/server"
	"github.com/ayusman/touchless/internal/store"
)

type snapshot struct {
	Session string `json:"session"`
	Mode    string `json:"mode"`
	Enabled bool   `json:"enabled"`
}

func TestE2E_VisitorWakesKiosk(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	logger := zap.NewNop()
	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hub := server.NewHub(logger)
	frames := server.NewFrameBuffer()
	faces := detector.NewMockFaceDetector()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application := app.New(app.Config{
		Camera:      capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		Hands:       detector.NewMockDetector(),
		Presence:    presence.NewDetector(faces, presence.DefaultConfig(), logger),
		SampleEvery: 5,
		Gesture:     gesture.DefaultConfig(),
		Kiosk:       kiosk.DefaultConfig(),
		Factory:     screens.NewFactory(ctx, screens.DefaultConfig(), content.Static{}, logger),
		Events:      hub,
		Frames:      frames,
		Logger:      logger,
	})

	srv := server.New(server.Config{
		Store:  s,
		Base:   config.Default(),
		Hub:    hub,
		Frames: frames,
		Logger: logger,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/events", nil)
	if err != nil {
		t.Fatalf("dial events error = %v", err)
	}
	defer conn.Close()

	next := func() snapshot {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var snap snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("read snapshot error = %v", err)
		}
		return snap
	}

	t.Run("AttractWithoutVisitor", func(t *testing.T) {
		if snap := next(); snap.Mode != "ATTRACT" {
			t.Errorf("mode = %q, want ATTRACT", snap.Mode)
		}
	})

	t.Run("CloseFaceWakes", func(t *testing.T) {
		faces.SetFaces([]detector.FaceBox{detector.CloseFace()})

		deadline := time.Now().Add(5 * time.Second)
		for {
			snap := next()
			if snap.Mode == "MENU" {
				if snap.Session == "" {
					t.Error("session id missing after wake")
				}
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("kiosk did not wake, last mode %q", snap.Mode)
			}
		}
	})

	t.Run("StateEndpoint", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/state")
		if err != nil {
			t.Fatalf("get state error = %v", err)
		}
		defer resp.Body.Close()

		var snap snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			t.Fatalf("decode state error = %v", err)
		}
		if snap.Mode == "ATTRACT" || !snap.Enabled {
			t.Errorf("state = %+v, want an enabled interactive mode", snap)
		}
	})

	t.Run("PauseReturnsToAttract", func(t *testing.T) {
		application.SetEnabled(false)

		deadline := time.Now().Add(5 * time.Second)
		for {
			snap := next()
			if !snap.Enabled {
				if snap.Mode != "ATTRACT" {
					t.Errorf("paused mode = %q, want ATTRACT", snap.Mode)
				}
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("pause never published")
			}
		}
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop")
	}
}

func TestE2E_SettingsApplyOnRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	dbPath := filepath.Join(t.TempDir(), "data.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}

	srv := server.New(server.Config{Store: s, Base: config.Default()})
	ts := httptest.NewServer(srv)

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings",
		strings.NewReader(`{"kiosk.idle_timeout": "30s", "dwell.menu": "1.2s"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("put settings error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put settings status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	ts.Close()
	s.Close()

	// Second start: the stored overrides land on top of the defaults.
	s, err = store.New(dbPath)
	if err != nil {
		t.Fatalf("reopen store error = %v", err)
	}
	defer s.Close()

	overrides, err := s.Settings().All()
	if err != nil {
		t.Fatalf("Settings().All() error = %v", err)
	}
	cfg := config.Default()
	if err := cfg.ApplyOverrides(overrides); err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}
	if cfg.Kiosk.IdleTimeout != 30*time.Second {
		t.Errorf("IdleTimeout = %v, want 30s", cfg.Kiosk.IdleTimeout)
	}
	if cfg.Dwell.Menu != 1200*time.Millisecond {
		t.Errorf("Dwell.Menu = %v, want 1.2s", cfg.Dwell.Menu)
	}
}
