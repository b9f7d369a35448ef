package screens

import (
	"time"

	"github.com/ayusman/touchless/internal/dwell"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
)

// Menu is the main menu with the INFO, PLAY and MAP cards.
type Menu struct {
	cards *panel
}

// MenuView is the menu snapshot.
type MenuView struct {
	Screen  string       `json:"screen"`
	Buttons []ButtonView `json:"buttons"`
}

// NewMenu creates the main menu.
func NewMenu(cfg Config) *Menu {
	return &Menu{cards: newPanel(cfg.MenuDwell,
		button{kiosk.TargetInfo, "Facultati si specializari", dwell.Rect{X: 0.1, Y: 0.4, W: 0.25, H: 0.3}},
		button{kiosk.TargetPlay, "Jocuri", dwell.Rect{X: 0.375, Y: 0.4, W: 0.25, H: 0.3}},
		button{kiosk.TargetMap, "Harta campusului", dwell.Rect{X: 0.65, Y: 0.4, W: 0.25, H: 0.3}},
	)}
}

func (m *Menu) Enter(time.Time) { m.cards.reset() }

func (m *Menu) Update(cursor gesture.Cursor, _ gesture.Gesture, now time.Time) kiosk.Nav {
	if target := m.cards.update(cursor, now); target != "" {
		return kiosk.Select(target)
	}
	return kiosk.Stay()
}

func (m *Menu) Exit() {}

func (m *Menu) View() any {
	return MenuView{Screen: "menu", Buttons: m.cards.view()}
}
