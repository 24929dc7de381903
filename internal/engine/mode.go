package engine

import (
	"fmt"
	"strings"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/controller"
)

// Mode selects which controllers receive input.
type Mode int

const (
	// ModeGroup routes bound keys to the current group only.
	ModeGroup Mode = iota
	// ModeAllGroup routes bound keys to every group.
	ModeAllGroup
	// ModeMirrorAll sends every key verbatim to every controller.
	ModeMirrorAll
)

// Modes lists every mode in cycle order.
var Modes = []Mode{ModeGroup, ModeAllGroup, ModeMirrorAll}

func (m Mode) String() string {
	switch m {
	case ModeGroup:
		return config.ModeGroup
	case ModeAllGroup:
		return config.ModeAllGroup
	case ModeMirrorAll:
		return config.ModeMirrorAll
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// DisplayName is the label shown in menus.
func (m Mode) DisplayName() string {
	switch m {
	case ModeGroup:
		return "Group"
	case ModeAllGroup:
		return "All groups"
	case ModeMirrorAll:
		return "Mirror all"
	default:
		return m.String()
	}
}

// ParseMode accepts a mode name as used in the config file.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.ModeGroup:
		return ModeGroup, nil
	case config.ModeAllGroup, "allgroup":
		return ModeAllGroup, nil
	case config.ModeMirrorAll, "mirror", "mirrorall":
		return ModeMirrorAll, nil
	}
	return ModeGroup, fmt.Errorf("unknown mode %q (want group, all_group or mirror_all)", s)
}

// ParseModes parses a list of mode names, dropping duplicates.
func ParseModes(names []string) ([]Mode, error) {
	seen := make(map[Mode]bool)
	var out []Mode
	for _, n := range names {
		m, err := ParseMode(n)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out, nil
}

// ActiveControllers returns the controllers that mode m targets. groupIndex
// is the zero-based current group; out of range falls back to the first.
func ActiveControllers(r *controller.Roster, m Mode, groupIndex int) []*controller.Controller {
	switch m {
	case ModeGroup:
		g, ok := r.Group(clampGroup(r, groupIndex))
		if !ok {
			return nil
		}
		return g.All()
	default:
		return r.All()
	}
}

func clampGroup(r *controller.Roster, idx int) int {
	if idx < 0 || idx >= r.Len() {
		return 0
	}
	return idx
}

// nextMode returns the mode after cur in cyclable, wrapping. A current mode
// outside the list moves to its first entry.
func nextMode(cur Mode, cyclable []Mode) (Mode, bool) {
	if len(cyclable) == 0 {
		return cur, false
	}
	for i, m := range cyclable {
		if m == cur {
			return cyclable[(i+1)%len(cyclable)], true
		}
	}
	return cyclable[0], true
}
