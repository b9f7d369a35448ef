// Package screens holds the kiosk's screen controllers: the main menu, the
// information hub, the game hub and the three mini-games. Each controller
// implements kiosk.Screen and is built fresh by the Factory on every entry.
package screens

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/touchless/internal/content"
	"github.com/ayusman/touchless/internal/dwell"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
)

// Config holds dwell thresholds and game timings.
type Config struct {
	MenuDwell     time.Duration
	InfoDwell     time.Duration
	HubDwell      time.Duration
	AnswerDwell   time.Duration
	GameOverDwell time.Duration
	BackDwell     time.Duration

	QuizFeedback    time.Duration
	QuizReturnAfter time.Duration

	ArcadeTargets  int
	ArcadeRadius   float64
	ArcadeHold     time.Duration
	ArcadeEndPause time.Duration

	MazeReveal   time.Duration
	MazeEndPause time.Duration

	// Seed fixes the arcade target sequence. Zero picks a random seed.
	Seed uint64
}

// DefaultConfig returns the tuned screen values.
func DefaultConfig() Config {
	return Config{
		MenuDwell:     2 * time.Second,
		InfoDwell:     1500 * time.Millisecond,
		HubDwell:      1500 * time.Millisecond,
		AnswerDwell:   time.Second,
		GameOverDwell: 1500 * time.Millisecond,
		BackDwell:     time.Second,

		QuizFeedback:    2 * time.Second,
		QuizReturnAfter: 4 * time.Second,

		ArcadeTargets:  5,
		ArcadeRadius:   0.08,
		ArcadeHold:     300 * time.Millisecond,
		ArcadeEndPause: 3 * time.Second,

		MazeReveal:   2200 * time.Millisecond,
		MazeEndPause: 2500 * time.Millisecond,
	}
}

// backRect is the shared back button in the top-left corner.
var backRect = dwell.Rect{X: 0.02, Y: 0.03, W: 0.16, H: 0.1}

// Factory builds screen controllers. It implements kiosk.Factory.
type Factory struct {
	cfg    Config
	gen    content.Generator
	logger *zap.Logger

	// ctx bounds background content generation started by game screens.
	ctx context.Context
}

// NewFactory creates a Factory. Generation started by quiz and maze screens
// stops when ctx is done.
func NewFactory(ctx context.Context, cfg Config, gen content.Generator, logger *zap.Logger) *Factory {
	if gen == nil {
		gen = content.Static{}
	}
	return &Factory{
		cfg:    cfg,
		gen:    gen,
		logger: logger.Named("screens"),
		ctx:    ctx,
	}
}

var _ kiosk.Factory = (*Factory)(nil)

func (f *Factory) Menu() kiosk.Screen { return NewMenu(f.cfg) }

func (f *Factory) Info() kiosk.Screen { return NewInfo(f.cfg) }

func (f *Factory) Game(kind kiosk.GameKind) kiosk.Screen {
	switch kind {
	case kiosk.GameHub:
		return NewGameHub(f.cfg)
	case kiosk.GameQuiz:
		return NewQuiz(f.ctx, f.cfg, f.gen, f.logger)
	case kiosk.GameArcade:
		return NewArcade(f.cfg, f.rng())
	case kiosk.GameMaze:
		return NewMaze(f.ctx, f.cfg, f.gen, f.logger)
	}
	f.logger.Warn("no screen for game", zap.Stringer("game", kind))
	return nil
}

func (f *Factory) rng() *rand.Rand {
	seed := f.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ButtonView is one dwell button as the renderer sees it.
type ButtonView struct {
	Name     string     `json:"name"`
	Label    string     `json:"label,omitempty"`
	Rect     dwell.Rect `json:"rect"`
	Hovered  bool       `json:"hovered"`
	Progress float64    `json:"progress"`
}

type button struct {
	name  string
	label string
	rect  dwell.Rect
}

// panel is a group of buttons sharing one dwell selector.
type panel struct {
	buttons []button
	targets []dwell.Target
	sel     *dwell.Selector
	last    dwell.Outcome
}

func newPanel(threshold time.Duration, buttons ...button) *panel {
	p := &panel{buttons: buttons, sel: dwell.New(threshold)}
	for _, b := range buttons {
		p.targets = append(p.targets, dwell.Target{Name: b.name, Region: b.rect})
	}
	return p
}

// update returns the confirmed button name, or "".
func (p *panel) update(cursor gesture.Cursor, now time.Time) string {
	p.last = p.sel.Update(cursor, p.targets, now)
	return p.last.Confirmed
}

func (p *panel) reset() {
	p.sel.Reset()
	p.last = dwell.Outcome{}
}

func (p *panel) view() []ButtonView {
	out := make([]ButtonView, len(p.buttons))
	for i, b := range p.buttons {
		out[i] = ButtonView{Name: b.name, Label: b.label, Rect: b.rect}
		if p.last.Hovered == b.name {
			out[i].Hovered = true
			out[i].Progress = p.last.Progress
		}
	}
	return out
}
