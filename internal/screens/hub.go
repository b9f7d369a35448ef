package screens

import (
	"time"

	"github.com/ayusman/touchless/internal/dwell"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
)

// GameHub lets the visitor pick one of the mini-games.
type GameHub struct {
	cards *panel
	back  *panel
}

// HubView is the game hub snapshot.
type HubView struct {
	Screen  string       `json:"screen"`
	Buttons []ButtonView `json:"buttons"`
	Back    ButtonView   `json:"back"`
}

// NewGameHub creates the game hub.
func NewGameHub(cfg Config) *GameHub {
	return &GameHub{
		cards: newPanel(cfg.HubDwell,
			button{kiosk.TargetQuiz, "Quiz IT", dwell.Rect{X: 0.1, Y: 0.4, W: 0.25, H: 0.3}},
			button{kiosk.TargetArcade, "Prinde tintele", dwell.Rect{X: 0.375, Y: 0.4, W: 0.25, H: 0.3}},
			button{kiosk.TargetMaze, "Labirint", dwell.Rect{X: 0.65, Y: 0.4, W: 0.25, H: 0.3}},
		),
		back: newPanel(cfg.BackDwell, button{kiosk.TargetBack, "Inapoi", backRect}),
	}
}

func (h *GameHub) Enter(time.Time) {
	h.cards.reset()
	h.back.reset()
}

func (h *GameHub) Update(cursor gesture.Cursor, _ gesture.Gesture, now time.Time) kiosk.Nav {
	if h.back.update(cursor, now) != "" {
		return kiosk.Back()
	}
	if target := h.cards.update(cursor, now); target != "" {
		return kiosk.Select(target)
	}
	return kiosk.Stay()
}

func (h *GameHub) Exit() {}

func (h *GameHub) View() any {
	return HubView{Screen: "game_hub", Buttons: h.cards.view(), Back: h.back.view()[0]}
}
