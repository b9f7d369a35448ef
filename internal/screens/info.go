package screens

import (
	"time"

	"github.com/ayusman/touchless/internal/dwell"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
)

var infoRects = map[string]dwell.Rect{
	"AIA":   {X: 0.1, Y: 0.2, W: 0.35, H: 0.3},
	"CTI":   {X: 0.55, Y: 0.2, W: 0.35, H: 0.3},
	"IE":    {X: 0.1, Y: 0.6, W: 0.35, H: 0.3},
	"IETTI": {X: 0.55, Y: 0.6, W: 0.35, H: 0.3},
}

// Info is the information hub. It lists the specializations and pages
// through the selected one with swipes.
type Info struct {
	list *panel
	back *panel

	active *Specialization
	page   int
}

// InfoView is the information hub snapshot.
type InfoView struct {
	Screen  string       `json:"screen"`
	Mode    string       `json:"mode"`
	Buttons []ButtonView `json:"buttons,omitempty"`
	Back    ButtonView   `json:"back"`

	Track     string `json:"track,omitempty"`
	TrackName string `json:"track_name,omitempty"`
	Page      int    `json:"page,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	Text      string `json:"text,omitempty"`
}

// NewInfo creates the information hub.
func NewInfo(cfg Config) *Info {
	var buttons []button
	for _, s := range specializations {
		buttons = append(buttons, button{s.Key, s.Name, infoRects[s.Key]})
	}
	return &Info{
		list: newPanel(cfg.InfoDwell, buttons...),
		back: newPanel(cfg.BackDwell, button{kiosk.TargetBack, "Inapoi", backRect}),
	}
}

func (s *Info) Enter(time.Time) {
	s.list.reset()
	s.back.reset()
	s.active = nil
	s.page = 0
}

func (s *Info) Update(cursor gesture.Cursor, g gesture.Gesture, now time.Time) kiosk.Nav {
	if s.back.update(cursor, now) != "" {
		return kiosk.Back()
	}

	if s.active == nil {
		if key := s.list.update(cursor, now); key != "" {
			if sp, ok := lookupSpecialization(key); ok {
				s.active = &sp
				s.page = 0
			}
		}
		return kiosk.Stay()
	}

	switch g {
	case gesture.GestureSwipeLeft:
		if s.page < len(s.active.Pages)-1 {
			s.page++
		}
	case gesture.GestureSwipeRight:
		if s.page == 0 {
			return kiosk.Back()
		}
		s.page--
	}
	return kiosk.Stay()
}

func (s *Info) Exit() {}

func (s *Info) View() any {
	v := InfoView{Screen: "info", Mode: "SELECTION", Back: s.back.view()[0]}
	if s.active == nil {
		v.Buttons = s.list.view()
		return v
	}
	v.Mode = "DETAIL"
	v.Track = s.active.Key
	v.TrackName = s.active.Name
	v.Page = s.page + 1
	v.PageCount = len(s.active.Pages)
	v.Text = s.active.Pages[s.page]
	return v
}

// Detail returns the open specialization and zero-based page.
func (s *Info) Detail() (key string, page int, ok bool) {
	if s.active == nil {
		return "", 0, false
	}
	return s.active.Key, s.page, true
}
