// Package dwell implements dwell-to-confirm selection: holding the cursor over
// a named region for a threshold duration confirms it once.
package dwell

import (
	"math"
	"time"

	"github.com/ayusman/touchless/internal/gesture"
)

// Region is a hit area in normalized screen coordinates.
type Region interface {
	Contains(x, y float64) bool
}

// Rect is an axis-aligned rectangle. Edges are exclusive.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Contains(x, y float64) bool {
	return r.X < x && x < r.X+r.W && r.Y < y && y < r.Y+r.H
}

// Circle is a round target. The rim is exclusive.
type Circle struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	R  float64 `json:"r"`
}

func (c Circle) Contains(x, y float64) bool {
	return math.Hypot(x-c.CX, y-c.CY) < c.R
}

// Target names a region. Targets are hit-tested in slice order and the first
// match wins when regions overlap.
type Target struct {
	Name   string
	Region Region
}

// Outcome is the result of one Update.
type Outcome struct {
	Hovered   string  `json:"hovered,omitempty"`
	Progress  float64 `json:"progress"`
	Confirmed string  `json:"confirmed,omitempty"`
}

// Selector holds the dwell state of one widget group. Each screen owns its
// selectors and drops them on exit.
type Selector struct {
	threshold time.Duration

	hovered    string
	hoverStart time.Time
	progress   float64

	// latched is the last confirmed target. It reads as empty space until
	// the cursor leaves it, so holding still never confirms twice.
	latched string
}

// New creates a selector that confirms after threshold.
func New(threshold time.Duration) *Selector {
	return &Selector{threshold: threshold}
}

// Update hit-tests cursor against targets at time now.
func (s *Selector) Update(cursor gesture.Cursor, targets []Target, now time.Time) Outcome {
	hit := ""
	if cursor.Detected {
		for _, t := range targets {
			if t.Region != nil && t.Region.Contains(cursor.X, cursor.Y) {
				hit = t.Name
				break
			}
		}
	}

	if s.latched != "" {
		if hit == s.latched {
			hit = ""
		} else {
			s.latched = ""
		}
	}

	if hit != s.hovered {
		s.hovered = hit
		s.hoverStart = now
		s.progress = 0
		return Outcome{Hovered: hit}
	}
	if hit == "" {
		return Outcome{}
	}

	p := 1.0
	if s.threshold > 0 {
		p = math.Min(float64(now.Sub(s.hoverStart))/float64(s.threshold), 1)
	}
	if p < 1 {
		s.progress = math.Max(p, 0)
		return Outcome{Hovered: hit, Progress: s.progress}
	}

	s.latched = hit
	s.hovered = ""
	s.progress = 0
	return Outcome{Hovered: hit, Progress: 1, Confirmed: hit}
}

// Reset clears hover, progress and the confirmation latch.
func (s *Selector) Reset() {
	s.hovered = ""
	s.hoverStart = time.Time{}
	s.progress = 0
	s.latched = ""
}

// Hovered returns the target currently accumulating dwell time.
func (s *Selector) Hovered() string { return s.hovered }

// Progress returns the dwell progress of the hovered target.
func (s *Selector) Progress() float64 { return s.progress }

// Threshold returns the dwell duration.
func (s *Selector) Threshold() time.Duration { return s.threshold }
