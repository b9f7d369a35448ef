package screens

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ayusman/touchless/internal/dwell"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
)

// Arcade is the catch-the-target game: hold the cursor on each target
// until it is caught and a new one spawns elsewhere.
type Arcade struct {
	cfg Config
	rng *rand.Rand
	sel *dwell.Selector

	target   dwell.Circle
	caught   int
	last     dwell.Outcome
	finished time.Time
}

// ArcadeView is the arcade snapshot.
type ArcadeView struct {
	Screen   string       `json:"screen"`
	Target   dwell.Circle `json:"target"`
	Caught   int          `json:"caught"`
	Goal     int          `json:"goal"`
	Progress float64      `json:"progress"`
	Done     bool         `json:"done"`
}

// NewArcade creates an arcade screen drawing target positions from rng.
func NewArcade(cfg Config, rng *rand.Rand) *Arcade {
	return &Arcade{
		cfg: cfg,
		rng: rng,
		sel: dwell.New(cfg.ArcadeHold),
	}
}

func (a *Arcade) Enter(time.Time) {
	a.caught = 0
	a.finished = time.Time{}
	a.target = dwell.Circle{CX: 0.5, CY: 0.5, R: a.cfg.ArcadeRadius}
	a.sel.Reset()
}

// targetName changes with every spawn so a caught target never latches its
// successor.
func (a *Arcade) targetName() string {
	return fmt.Sprintf("TARGET-%d", a.caught)
}

func (a *Arcade) Update(cursor gesture.Cursor, _ gesture.Gesture, now time.Time) kiosk.Nav {
	if a.Done() {
		if now.Sub(a.finished) >= a.cfg.ArcadeEndPause {
			return kiosk.Exhausted()
		}
		return kiosk.Stay()
	}

	a.last = a.sel.Update(cursor, []dwell.Target{{Name: a.targetName(), Region: a.target}}, now)
	if a.last.Confirmed == "" {
		return kiosk.Stay()
	}

	a.caught++
	if a.Done() {
		a.finished = now
		return kiosk.Stay()
	}
	a.target = a.spawn()
	return kiosk.Stay()
}

func (a *Arcade) spawn() dwell.Circle {
	return dwell.Circle{
		CX: 0.1 + a.rng.Float64()*0.8,
		CY: 0.2 + a.rng.Float64()*0.6,
		R:  a.cfg.ArcadeRadius,
	}
}

func (a *Arcade) Exit() {}

func (a *Arcade) View() any {
	return ArcadeView{
		Screen:   "arcade",
		Target:   a.target,
		Caught:   a.caught,
		Goal:     a.cfg.ArcadeTargets,
		Progress: a.last.Progress,
		Done:     a.Done(),
	}
}

// Done reports whether every target has been caught.
func (a *Arcade) Done() bool { return a.caught >= a.cfg.ArcadeTargets }

// Target returns the current target.
func (a *Arcade) Target() dwell.Circle { return a.target }
