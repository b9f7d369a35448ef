// Package kiosk sequences the attract screen, the main menu and the content
// modes. The Orchestrator is the only owner of the current mode and the
// only caller of the active screen.
package kiosk

import (
	"time"

	"github.com/ayusman/touchless/internal/gesture"
)

// Mode is the top-level kiosk mode.
type Mode int

const (
	ModeAttract Mode = iota
	ModeMenu
	ModeInfo
	ModeGame
)

var modeNames = [...]string{
	ModeAttract: "ATTRACT",
	ModeMenu:    "MENU",
	ModeInfo:    "INFO",
	ModeGame:    "GAME",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "UNKNOWN"
	}
	return modeNames[m]
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// GameKind is the submode while in ModeGame.
type GameKind int

const (
	GameNone GameKind = iota
	GameHub
	GameQuiz
	GameArcade
	GameMaze
)

var gameNames = [...]string{
	GameNone:   "",
	GameHub:    "HUB",
	GameQuiz:   "QUIZ",
	GameArcade: "ARCADE",
	GameMaze:   "MAZE",
}

func (g GameKind) String() string {
	if g < 0 || int(g) >= len(gameNames) {
		return "UNKNOWN"
	}
	return gameNames[g]
}

func (g GameKind) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// Selection targets understood by the Orchestrator.
const (
	TargetInfo   = "INFO"
	TargetPlay   = "PLAY"
	TargetMap    = "MAP"
	TargetQuiz   = "QUIZ"
	TargetArcade = "ARCADE"
	TargetMaze   = "MAZE"
	TargetHub    = "HUB"
	TargetBack   = "BACK"
)

// NavKind is what a screen asks of the Orchestrator after an update.
type NavKind int

const (
	NavNone NavKind = iota
	// NavBack is a confirmed back action.
	NavBack
	// NavExhausted means the screen has nothing more to show.
	NavExhausted
	// NavSelect carries a confirmed selection in Target.
	NavSelect
)

// Nav is a navigation request.
type Nav struct {
	Kind   NavKind
	Target string
}

// Stay is the zero Nav.
func Stay() Nav { return Nav{} }

// Back requests a return to the menu.
func Back() Nav { return Nav{Kind: NavBack} }

// Exhausted reports that the screen is done.
func Exhausted() Nav { return Nav{Kind: NavExhausted} }

// Select reports a confirmed selection.
func Select(target string) Nav { return Nav{Kind: NavSelect, Target: target} }

// Screen is a controller the Orchestrator swaps in and out. Screens are
// built fresh on every entry and never reused after Exit.
type Screen interface {
	Enter(now time.Time)
	Update(cursor gesture.Cursor, g gesture.Gesture, now time.Time) Nav
	Exit()
	// View returns a JSON-encodable snapshot for the renderer.
	View() any
}

// Factory builds screens.
type Factory interface {
	Menu() Screen
	Info() Screen
	Game(kind GameKind) Screen
}
