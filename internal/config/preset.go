package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/multibox/internal/platform"
	"github.com/1broseidon/multibox/internal/tiling"
	"gopkg.in/yaml.v3"
)

// RegionMode selects where a region's bounds come from.
type RegionMode string

const (
	RegionManual  RegionMode = "manual"
	RegionDisplay RegionMode = "display"
)

// LayoutRegion is a rectangle windows are tiled into. In display mode the
// bounds follow the work area of monitor DisplayIndex when it exists.
type LayoutRegion struct {
	X            int        `yaml:"x"`
	Y            int        `yaml:"y"`
	Width        int        `yaml:"width"`
	Height       int        `yaml:"height"`
	Mode         RegionMode `yaml:"mode,omitempty"`
	DisplayIndex int        `yaml:"display"`
}

// DefaultRegion is a single 1920x1080 manual region at the origin.
func DefaultRegion() LayoutRegion {
	return LayoutRegion{X: 0, Y: 0, Width: 1920, Height: 1080, Mode: RegionManual, DisplayIndex: -1}
}

func (r LayoutRegion) String() string {
	return fmt.Sprintf("(%d,%d) %dx%d", r.X, r.Y, r.Width, r.Height)
}

// Rect returns the stored bounds.
func (r LayoutRegion) Rect() tiling.Rect {
	return tiling.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Resolve returns the region's bounds, reading them from displays when the
// region follows a monitor.
func (r LayoutRegion) Resolve(displays []platform.Display) tiling.Rect {
	if r.Mode == RegionDisplay && r.DisplayIndex >= 0 && r.DisplayIndex < len(displays) {
		d := displays[r.DisplayIndex]
		if !d.Usable.Empty() {
			return d.Usable
		}
		return d.Bounds
	}
	return r.Rect()
}

// RegionList supports either the compact string form:
//
//	regions: "0,0,1920,1080,0,-1;1920,0,1920,1080,1,1"
//
// or a list of mappings:
//
//	regions:
//	  - {x: 0, y: 0, width: 1920, height: 1080}
//	  - {mode: display, display: 1}
type RegionList []LayoutRegion

func (l *RegionList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = RegionList{DefaultRegion()}
		return nil
	case yaml.ScalarNode:
		regions, err := ParseRegions(value.Value)
		if err != nil {
			warnf("line %d: regions %q: %v; using %s", value.Line, value.Value, err, FormatRegions(regions))
		}
		*l = regions
		return nil
	case yaml.SequenceNode:
		out := make(RegionList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.MappingNode {
				return fmt.Errorf("regions entries must be mappings")
			}
			r := DefaultRegion()
			if err := item.Decode(&r); err != nil {
				return err
			}
			if r.Mode == "" {
				r.Mode = RegionManual
			}
			out = append(out, r)
		}
		if len(out) == 0 {
			out = RegionList{DefaultRegion()}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("regions must be a string or a list")
	}
}

func (l RegionList) MarshalYAML() (any, error) {
	return FormatRegions(l), nil
}

// ParseRegions decodes "x,y,w,h,mode,display;..." where mode is 0 for
// manual and 1 for display. The four-part form "x,y,w,h" is accepted as a
// manual region. Malformed segments are skipped and reported; when nothing
// parses the default region is returned with the error.
func ParseRegions(s string) (RegionList, error) {
	if strings.TrimSpace(s) == "" {
		return RegionList{DefaultRegion()}, nil
	}

	var out RegionList
	var errs []error
	for i, seg := range strings.Split(s, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		r, err := parseRegion(seg)
		if err != nil {
			errs = append(errs, fmt.Errorf("region %d: %w", i+1, err))
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		out = RegionList{DefaultRegion()}
	}
	return out, errors.Join(errs...)
}

func parseRegion(seg string) (LayoutRegion, error) {
	parts := strings.Split(seg, ",")
	if len(parts) < 4 {
		return LayoutRegion{}, fmt.Errorf("want x,y,w,h[,mode,display], got %q", seg)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return LayoutRegion{}, fmt.Errorf("invalid number %q", p)
		}
		nums[i] = n
	}
	r := LayoutRegion{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3], Mode: RegionManual, DisplayIndex: -1}
	if len(nums) >= 6 {
		if nums[4] == 1 {
			r.Mode = RegionDisplay
		}
		r.DisplayIndex = nums[5]
	}
	return r, nil
}

// FormatRegions encodes regions in the compact string form.
func FormatRegions(regions []LayoutRegion) string {
	if len(regions) == 0 {
		return FormatRegions([]LayoutRegion{DefaultRegion()})
	}
	parts := make([]string, 0, len(regions))
	for _, r := range regions {
		mode := 0
		if r.Mode == RegionDisplay {
			mode = 1
		}
		parts = append(parts, fmt.Sprintf("%d,%d,%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height, mode, r.DisplayIndex))
	}
	return strings.Join(parts, ";")
}

// LayoutPreset is a saved grid, region list and hotkey.
type LayoutPreset struct {
	Enabled bool       `yaml:"enabled"`
	Columns int        `yaml:"columns"`
	Rows    int        `yaml:"rows"`
	Regions RegionList `yaml:"regions"`
	Hotkey  string     `yaml:"hotkey,omitempty"`
}

// DefaultPreset is disabled, 4x2, one default region and no hotkey.
func DefaultPreset() LayoutPreset {
	return LayoutPreset{
		Enabled: false,
		Columns: 4,
		Rows:    2,
		Regions: RegionList{DefaultRegion()},
	}
}

// UnmarshalYAML fills fields missing from the document with preset defaults.
func (p *LayoutPreset) UnmarshalYAML(value *yaml.Node) error {
	type plain LayoutPreset
	out := plain(DefaultPreset())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*p = LayoutPreset(out)
	return nil
}

// Validate checks grid dimensions and regions.
func (p LayoutPreset) Validate() error {
	if p.Columns < 1 {
		return fmt.Errorf("columns must be >= 1")
	}
	if p.Rows < 1 {
		return fmt.Errorf("rows must be >= 1")
	}
	if len(p.Regions) == 0 {
		return fmt.Errorf("regions must not be empty")
	}
	for i, r := range p.Regions {
		switch r.Mode {
		case RegionManual, RegionDisplay, "":
		default:
			return fmt.Errorf("regions.%d: invalid mode %q (want manual or display)", i, r.Mode)
		}
		if r.Mode != RegionDisplay && (r.Width <= 0 || r.Height <= 0) {
			return fmt.Errorf("regions.%d: width and height must be positive", i)
		}
	}
	return nil
}

// Rects resolves every region against the current displays.
func (p LayoutPreset) Rects(displays []platform.Display) []tiling.Rect {
	out := make([]tiling.Rect, 0, len(p.Regions))
	for _, r := range p.Regions {
		out = append(out, r.Resolve(displays))
	}
	return out
}

// Layout computes the tiling for windowCount windows.
func (p LayoutPreset) Layout(windowCount int, displays []platform.Display) tiling.GridLayout {
	return tiling.CalculateGridLayout(windowCount, p.Columns, p.Rows, p.Rects(displays))
}

func (p LayoutPreset) String() string {
	if !p.Enabled {
		return "(Disabled)"
	}
	info := "No regions"
	if len(p.Regions) > 0 {
		info = p.Regions[0].String()
	}
	if len(p.Regions) > 1 {
		info += fmt.Sprintf(" +%d more", len(p.Regions)-1)
	}
	return fmt.Sprintf("%dx%d grid @ %s [%s]", p.Columns, p.Rows, info, HotkeyDisplayName(p.Hotkey))
}

// HotkeyDisplayName renders a keybind string such as "Mod4-Mod1-1" as
// "Alt+Super+1". An empty chord renders as "None".
func HotkeyDisplayName(chord string) string {
	chord = strings.TrimSpace(chord)
	if chord == "" {
		return "None"
	}
	parts := strings.Split(chord, "-")
	key := parts[len(parts)-1]
	if key == "" && len(parts) > 1 {
		// "Mod1--" binds the minus key.
		key = "-"
		parts = parts[:len(parts)-1]
	}

	var alt, ctrl, shift, super bool
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(mod) {
		case "mod1", "alt":
			alt = true
		case "control", "ctrl":
			ctrl = true
		case "shift":
			shift = true
		case "mod4", "super":
			super = true
		}
	}

	var b strings.Builder
	if alt {
		b.WriteString("Alt+")
	}
	if ctrl {
		b.WriteString("Ctrl+")
	}
	if shift {
		b.WriteString("Shift+")
	}
	if super {
		b.WriteString("Super+")
	}
	b.WriteString(key)
	return b.String()
}
