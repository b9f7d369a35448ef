package kiosk

import (
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/touchless/internal/gesture"
)

// Config holds the orchestrator tunables.
type Config struct {
	// IdleTimeout returns any interactive mode to attract once exceeded.
	IdleTimeout time.Duration
}

// DefaultConfig returns the tuned kiosk values.
func DefaultConfig() Config {
	return Config{IdleTimeout: 10 * time.Second}
}

// Input is everything the Orchestrator needs from one frame.
type Input struct {
	Now     time.Time
	Cursor  gesture.Cursor
	Gesture gesture.Gesture
	// Wake is the presence wake event, only meaningful in attract mode.
	Wake bool
	// Active is the attention signal: a cursor or a sampled presence.
	Active bool
}

// Output describes the kiosk after a Step.
type Output struct {
	Mode    Mode
	Game    GameKind
	Changed bool
	View    any
}

// Orchestrator is the top-level mode machine.
type Orchestrator struct {
	cfg     Config
	factory Factory
	logger  *zap.Logger

	mode         Mode
	game         GameKind
	screen       Screen
	lastActivity time.Time
}

// New creates an Orchestrator in attract mode.
func New(factory Factory, cfg Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		factory: factory,
		logger:  logger.Named("kiosk"),
		mode:    ModeAttract,
	}
}

// Step advances the kiosk by one frame.
func (o *Orchestrator) Step(in Input) Output {
	before, beforeGame := o.mode, o.game
	o.step(in)
	return Output{
		Mode:    o.mode,
		Game:    o.game,
		Changed: o.mode != before || o.game != beforeGame,
		View:    o.view(),
	}
}

func (o *Orchestrator) step(in Input) {
	if o.mode == ModeAttract {
		if in.Wake {
			o.lastActivity = in.Now
			o.enter(ModeMenu, GameNone, in.Now)
		}
		return
	}

	if in.Active {
		o.lastActivity = in.Now
	}
	if in.Now.Sub(o.lastActivity) > o.cfg.IdleTimeout {
		o.logger.Info("idle timeout", zap.Stringer("from", o.mode))
		o.enter(ModeAttract, GameNone, in.Now)
		return
	}

	if o.screen == nil {
		return
	}
	nav := o.screen.Update(in.Cursor, in.Gesture, in.Now)
	o.navigate(nav, in.Now)
}

func (o *Orchestrator) navigate(nav Nav, now time.Time) {
	switch nav.Kind {
	case NavNone:
		return
	case NavBack, NavExhausted:
		if o.mode != ModeMenu {
			o.enter(ModeMenu, GameNone, now)
		}
		return
	}

	switch o.mode {
	case ModeMenu:
		switch nav.Target {
		case TargetInfo:
			o.enter(ModeInfo, GameNone, now)
		case TargetPlay:
			o.enter(ModeGame, GameHub, now)
		case TargetMap:
			o.logger.Info("map selected, nothing to show")
		default:
			o.logger.Warn("unknown menu selection", zap.String("target", nav.Target))
		}
	case ModeGame:
		switch nav.Target {
		case TargetQuiz:
			o.enter(ModeGame, GameQuiz, now)
		case TargetArcade:
			o.enter(ModeGame, GameArcade, now)
		case TargetMaze:
			o.enter(ModeGame, GameMaze, now)
		case TargetHub:
			o.enter(ModeGame, GameHub, now)
		default:
			o.logger.Warn("unknown game selection", zap.String("target", nav.Target))
		}
	default:
		o.logger.Debug("selection ignored", zap.Stringer("mode", o.mode), zap.String("target", nav.Target))
	}
}

// enter leaves the current screen and builds the next one fresh.
func (o *Orchestrator) enter(mode Mode, game GameKind, now time.Time) {
	if o.screen != nil {
		o.screen.Exit()
		o.screen = nil
	}

	switch mode {
	case ModeMenu:
		o.screen = o.factory.Menu()
	case ModeInfo:
		o.screen = o.factory.Info()
	case ModeGame:
		o.screen = o.factory.Game(game)
	}

	o.logger.Info("mode change",
		zap.Stringer("from", o.mode),
		zap.Stringer("to", mode),
		zap.Stringer("game", game),
	)
	o.mode, o.game = mode, game

	if o.screen != nil {
		o.screen.Enter(now)
	}
}

// ForceAttract drops whatever is on screen and returns to attract mode.
func (o *Orchestrator) ForceAttract(now time.Time) {
	if o.mode != ModeAttract {
		o.enter(ModeAttract, GameNone, now)
	}
}

func (o *Orchestrator) view() any {
	if o.screen == nil {
		return nil
	}
	return o.screen.View()
}

// Mode returns the current mode.
func (o *Orchestrator) Mode() Mode { return o.mode }

// Game returns the current game submode.
func (o *Orchestrator) Game() GameKind { return o.game }

// LastActivity returns the time of the last activity seen outside attract.
func (o *Orchestrator) LastActivity() time.Time { return o.lastActivity }
