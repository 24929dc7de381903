// Package overlay draws coloured borders around controlled windows. The
// engine publishes a State and the X11 Manager renders it.
package overlay

import (
	"fmt"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/platform"
	"github.com/1broseidon/multibox/internal/tiling"
)

// Class is a window's role in the current switching session.
type Class int

const (
	ClassNone Class = iota
	ClassSelected
	ClassSwitched
	ClassMarked
)

func (c Class) String() string {
	switch c {
	case ClassSelected:
		return "selected"
	case ClassSwitched:
		return "switched"
	case ClassMarked:
		return "marked"
	default:
		return "none"
	}
}

// Highlight describes one controlled window.
type Highlight struct {
	Ordinal     int
	Window      platform.WindowID
	Role        controller.Role
	Group       int
	Class       Class
	Bounds      tiling.Rect
	InActiveSet bool
}

// State is everything the overlay needs to draw one frame.
type State struct {
	Session bool
	Active  bool
	// Mode is the engine mode name: group, all_group or mirror_all.
	Mode string
	// Flash is set while the multi-click key is held.
	Flash      bool
	Highlights []Highlight
}

// Colors holds parsed border colours.
type Colors struct {
	LeftGroup  uint32
	RightGroup uint32
	AllGroups  uint32
	MultiClick uint32
	Session    uint32
	Selected   uint32
	Switched   uint32
	Marked     uint32
	Label      uint32
	LabelBg    uint32
}

// ParseColors converts configured "#rrggbb" strings.
func ParseColors(c config.OverlayColors) (Colors, error) {
	var out Colors
	fields := []struct {
		name string
		in   string
		out  *uint32
	}{
		{"left_group", c.LeftGroup, &out.LeftGroup},
		{"right_group", c.RightGroup, &out.RightGroup},
		{"all_groups", c.AllGroups, &out.AllGroups},
		{"multi_click", c.MultiClick, &out.MultiClick},
		{"session", c.Session, &out.Session},
		{"selected", c.Selected, &out.Selected},
		{"switched", c.Switched, &out.Switched},
		{"marked", c.Marked, &out.Marked},
		{"label", c.Label, &out.Label},
		{"label_bg", c.LabelBg, &out.LabelBg},
	}
	for _, f := range fields {
		v, err := config.ParseColor(f.in)
		if err != nil {
			return Colors{}, fmt.Errorf("overlay color %s: %w", f.name, err)
		}
		*f.out = v
	}
	return out, nil
}

// Border is one border to draw.
type Border struct {
	Rect  tiling.Rect
	Color uint32
	// Label is the ordinal shown in session, empty outside it.
	Label string
}

// Borders resolves a State into the borders to draw. Outside a session only
// the active set of an active engine is outlined.
func (c Colors) Borders(s State) []Border {
	var out []Border
	for _, h := range s.Highlights {
		if h.Bounds.Empty() {
			continue
		}
		if s.Session {
			out = append(out, Border{
				Rect:  h.Bounds,
				Color: c.sessionColor(h.Class),
				Label: ordinalLabel(h.Ordinal),
			})
			continue
		}
		if !s.Active || !h.InActiveSet {
			continue
		}
		out = append(out, Border{Rect: h.Bounds, Color: c.modeColor(s, h)})
	}
	return out
}

func (c Colors) sessionColor(class Class) uint32 {
	switch class {
	case ClassSelected:
		return c.Selected
	case ClassSwitched:
		return c.Switched
	case ClassMarked:
		return c.Marked
	default:
		return c.Session
	}
}

func (c Colors) modeColor(s State, h Highlight) uint32 {
	if s.Flash {
		return c.MultiClick
	}
	if s.Mode == config.ModeMirrorAll {
		return c.AllGroups
	}
	if h.Role == controller.Right {
		return c.RightGroup
	}
	return c.LeftGroup
}
