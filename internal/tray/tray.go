// Package tray provides the operator system-tray menu for the kiosk.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

// Controller is the part of the kiosk the tray can pause and resume.
type Controller interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// Tray represents the operator system tray.
type Tray struct {
	controller Controller
	logger     *zap.Logger
	onViewer   func()
	onQuit     func()
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuMode   *systray.MenuItem
}

// New creates a Tray driving controller.
func New(controller Controller, logger *zap.Logger) *Tray {
	return &Tray{
		controller: controller,
		logger:     logger.Named("tray"),
	}
}

// OnOpenViewer sets the callback for the "Open Viewer" item.
func (t *Tray) OnOpenViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback for the "Quit" item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit is called and must run
// on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Touchless")
	systray.SetTooltip("Touchless kiosk")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.controller.IsEnabled()), "Pause or resume interaction")
	systray.AddSeparator()
	t.menuMode = systray.AddMenuItem(modeTitle(""), "Current kiosk mode")
	t.menuMode.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the kiosk viewer in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Touchless")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.toggle()
			case <-menuViewer.ClickedCh:
				t.openViewer()
			case <-menuQuit.ClickedCh:
				t.quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.logger.Debug("tray closed")
}

// toggle flips the controller and returns the new state.
func (t *Tray) toggle() bool {
	enabled := !t.controller.IsEnabled()
	t.controller.SetEnabled(enabled)
	t.logger.Info("interaction toggled from tray", zap.Bool("enabled", enabled))

	t.mu.RLock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	t.mu.RUnlock()
	return enabled
}

func (t *Tray) openViewer() {
	t.mu.RLock()
	callback := t.onViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) quit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetMode updates the mode display in the menu.
func (t *Tray) SetMode(mode string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(mode))
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Interaction On"
	}
	return "○ Paused"
}

func modeTitle(mode string) string {
	if mode == "" {
		return "Mode: starting"
	}
	return "Mode: " + mode
}
