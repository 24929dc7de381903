package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/multibox/internal/controller"
	"gopkg.in/yaml.v3"
)

// PresetCount is the number of addressable layout presets.
const PresetCount = 4

// Mode names accepted in cyclable_modes.
const (
	ModeGroup     = "group"
	ModeAllGroup  = "all_group"
	ModeMirrorAll = "mirror_all"
)

// Hotkeys holds xgbutil keybind strings. An empty string disables a hotkey.
type Hotkeys struct {
	Mode           string `yaml:"mode"`
	GroupMode      string `yaml:"group_mode"`
	AllGroupMode   string `yaml:"all_group_mode"`
	MirrorAllMode  string `yaml:"mirror_all_mode"`
	MultiClick     string `yaml:"multi_click"`
	ZeroPower      string `yaml:"zero_power"`
	AutoFind       string `yaml:"auto_find"`
	LayoutPriority string `yaml:"layout_priority"`
	Release        string `yaml:"release"`
	Palette        string `yaml:"palette"`
}

// KeyBinding maps a game action to the physical keys driving each role.
// Key is the keysym the game expects; Left and Right are the keysyms the
// operator presses for left and right controllers.
type KeyBinding struct {
	Title string `yaml:"title"`
	Key   string `yaml:"key"`
	Left  string `yaml:"left,omitempty"`
	Right string `yaml:"right,omitempty"`
}

// Trigger is either a pointer button number or a keysym.
type Trigger struct {
	Button int    `yaml:"button,omitempty"`
	Key    string `yaml:"key,omitempty"`
}

// IsZero reports whether the trigger is unbound.
func (t Trigger) IsZero() bool {
	return t.Button == 0 && strings.TrimSpace(t.Key) == ""
}

func (t Trigger) String() string {
	if t.Button != 0 {
		return "button " + strconv.Itoa(t.Button)
	}
	if t.Key != "" {
		return t.Key
	}
	return "None"
}

// Switching configures the window reassignment session.
type Switching struct {
	Enabled  bool    `yaml:"enabled"`
	Modifier string  `yaml:"modifier"`
	Select   Trigger `yaml:"select"`
	Remove   Trigger `yaml:"remove"`
}

// AutoFind lists the programs whose windows are picked up automatically.
type AutoFind struct {
	Executables []string `yaml:"executables"`
	Classes     []string `yaml:"classes"`
}

// OverlayColors are "#rrggbb" strings.
type OverlayColors struct {
	LeftGroup  string `yaml:"left_group"`
	RightGroup string `yaml:"right_group"`
	AllGroups  string `yaml:"all_groups"`
	MultiClick string `yaml:"multi_click"`
	Session    string `yaml:"session"`
	Selected   string `yaml:"selected"`
	Switched   string `yaml:"switched"`
	Marked     string `yaml:"marked"`
	Label      string `yaml:"label"`
	LabelBg    string `yaml:"label_bg"`
}

// Overlay configures the border windows drawn around controlled windows.
type Overlay struct {
	Enabled   bool          `yaml:"enabled"`
	Thickness int           `yaml:"thickness"`
	Colors    OverlayColors `yaml:"colors"`
}

// Settle bounds the geometry verification after windows are moved.
type Settle struct {
	IntervalMS int `yaml:"interval_ms"`
	Attempts   int `yaml:"attempts"`
}

// LoggingConfig configures the action log.
type LoggingConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: ~/.local/share/multibox/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Config holds the application configuration.
//
// The *_global flags set hotkey scope: a global hotkey is grabbed at all
// times, a local one only while a managed window has input focus.
type Config struct {
	Include          IncludeList    `yaml:"include,omitempty"`
	Display          string         `yaml:"display,omitempty"`
	XAuthority       string         `yaml:"xauthority,omitempty"`
	Hotkeys          Hotkeys        `yaml:"hotkeys"`
	ModeHotkeyGlobal bool           `yaml:"mode_hotkey_global"`
	MultiClickGlobal bool           `yaml:"multi_click_global"`
	ZeroPowerGlobal  bool           `yaml:"zero_power_global"`
	CyclableModes    []string       `yaml:"cyclable_modes"`
	KeyBindings      []KeyBinding   `yaml:"key_bindings"`
	Switching        Switching      `yaml:"switching"`
	Presets          []LayoutPreset `yaml:"presets"`
	LayoutPriority   string         `yaml:"layout_priority"`
	AutoFind         AutoFind       `yaml:"auto_find"`
	Groups           int            `yaml:"groups"`
	Overlay          Overlay        `yaml:"overlay"`
	Settle           Settle         `yaml:"settle"`
	PaletteBackend   string         `yaml:"palette_backend"`
	LogLevel         string         `yaml:"log_level"`
	Logging          LoggingConfig  `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	presets := make([]LayoutPreset, PresetCount)
	for i := range presets {
		presets[i] = DefaultPreset()
	}
	return &Config{
		Hotkeys: Hotkeys{
			Mode:           "Pause",
			AutoFind:       "Mod4-Mod1-f",
			LayoutPriority: "Mod4-Mod1-p",
			Release:        "Mod4-Escape",
			Palette:        "Mod4-Mod1-g",
		},
		ModeHotkeyGlobal: true,
		MultiClickGlobal: true,
		ZeroPowerGlobal:  true,
		CyclableModes:    []string{ModeGroup, ModeAllGroup, ModeMirrorAll},
		KeyBindings:      defaultKeyBindings(),
		Switching: Switching{
			Enabled:  true,
			Modifier: "Alt_L",
			Select:   Trigger{Button: 1},
			Remove:   Trigger{Button: 3},
		},
		Presets:        presets,
		LayoutPriority: string(controller.PriorityPair),
		Groups:         1,
		Overlay: Overlay{
			Enabled:   true,
			Thickness: 4,
			Colors: OverlayColors{
				LeftGroup:  "#3498db",
				RightGroup: "#e67e22",
				AllGroups:  "#27ae60",
				MultiClick: "#cd5c5c",
				Session:    "#95a5a6",
				Selected:   "#f1c40f",
				Switched:   "#9b59b6",
				Marked:     "#e74c3c",
				Label:      "#f5f7fa",
				LabelBg:    "#1f2933",
			},
		},
		Settle: Settle{
			IntervalMS: 10,
			Attempts:   5,
		},
		PaletteBackend: "auto",
		LogLevel:       "info",
	}
}

func defaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Title: "Forward", Key: "Up", Left: "w", Right: "Up"},
		{Title: "Backward", Key: "Down", Left: "s", Right: "Down"},
		{Title: "Left", Key: "Left", Left: "a", Right: "Left"},
		{Title: "Right", Key: "Right", Left: "d", Right: "Right"},
		{Title: "Jump", Key: "Control_L", Left: "space", Right: "Control_R"},
		{Title: "Throw", Key: "Delete", Left: "Delete", Right: "Delete"},
	}
}

// Preset returns preset n (1-based).
func (c *Config) Preset(n int) (LayoutPreset, bool) {
	if c == nil || n < 1 || n > len(c.Presets) {
		return LayoutPreset{}, false
	}
	return c.Presets[n-1], true
}

// Priority returns the configured layout priority.
func (c *Config) Priority() controller.Priority {
	p, err := controller.ParsePriority(strings.TrimSpace(c.LayoutPriority))
	if err != nil {
		return controller.PriorityPair
	}
	return p
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/multibox/actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	save.Include = nil

	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.PaletteBackend {
	case "auto", "rofi", "fuzzel", "dmenu", "wofi":
	default:
		return &ValidationError{Path: "palette_backend", Err: fmt.Errorf("palette_backend must be one of: auto, rofi, fuzzel, dmenu, wofi")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if _, err := controller.ParsePriority(c.LayoutPriority); err != nil {
		return &ValidationError{Path: "layout_priority", Err: err}
	}
	if c.Groups < 1 {
		return &ValidationError{Path: "groups", Err: fmt.Errorf("groups must be >= 1")}
	}
	if len(c.CyclableModes) == 0 {
		return &ValidationError{Path: "cyclable_modes", Err: fmt.Errorf("cyclable_modes must not be empty")}
	}
	for _, m := range c.CyclableModes {
		switch m {
		case ModeGroup, ModeAllGroup, ModeMirrorAll:
		default:
			return &ValidationError{Path: "cyclable_modes", Err: fmt.Errorf("unknown mode %q (want group, all_group or mirror_all)", m)}
		}
	}
	for i, b := range c.KeyBindings {
		if strings.TrimSpace(b.Title) == "" {
			return &ValidationError{Path: fmt.Sprintf("key_bindings.%d.title", i), Err: fmt.Errorf("title is required")}
		}
		if strings.TrimSpace(b.Key) == "" {
			return &ValidationError{Path: fmt.Sprintf("key_bindings.%d.key", i), Err: fmt.Errorf("key is required")}
		}
		if isDigitKey(b.Left) || isDigitKey(b.Right) {
			return &ValidationError{Path: fmt.Sprintf("key_bindings.%d", i), Err: fmt.Errorf("digit keys are reserved for group selection")}
		}
	}
	if c.Switching.Enabled {
		if strings.TrimSpace(c.Switching.Modifier) == "" {
			return &ValidationError{Path: "switching.modifier", Err: fmt.Errorf("modifier is required when switching is enabled")}
		}
		if c.Switching.Select.IsZero() {
			return &ValidationError{Path: "switching.select", Err: fmt.Errorf("select trigger is required when switching is enabled")}
		}
	}
	for _, tr := range []struct {
		path string
		t    Trigger
	}{{"switching.select", c.Switching.Select}, {"switching.remove", c.Switching.Remove}} {
		if tr.t.Button != 0 && tr.t.Key != "" {
			return &ValidationError{Path: tr.path, Err: fmt.Errorf("set either button or key, not both")}
		}
		if tr.t.Button < 0 || tr.t.Button > 9 {
			return &ValidationError{Path: tr.path + ".button", Err: fmt.Errorf("button must be between 1 and 9")}
		}
	}
	if len(c.Presets) > PresetCount {
		return &ValidationError{Path: "presets", Err: fmt.Errorf("at most %d presets are supported", PresetCount)}
	}
	for i, p := range c.Presets {
		if err := p.Validate(); err != nil {
			return &ValidationError{Path: fmt.Sprintf("presets.%d", i), Err: err}
		}
	}
	if c.Overlay.Thickness < 1 {
		return &ValidationError{Path: "overlay.thickness", Err: fmt.Errorf("thickness must be >= 1")}
	}
	for name, v := range c.Overlay.Colors.byName() {
		if _, err := ParseColor(v); err != nil {
			return &ValidationError{Path: "overlay.colors." + name, Err: err}
		}
	}
	if c.Settle.IntervalMS < 0 {
		return &ValidationError{Path: "settle.interval_ms", Err: fmt.Errorf("interval_ms must be >= 0")}
	}
	if c.Settle.Attempts < 1 {
		return &ValidationError{Path: "settle.attempts", Err: fmt.Errorf("attempts must be >= 1")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	var warnings []string
	found := false
	for _, b := range c.KeyBindings {
		if b.Title == "Throw" {
			found = true
			break
		}
	}
	if c.Hotkeys.ZeroPower != "" && !found {
		warnings = append(warnings, "hotkeys.zero_power is set but no key binding is titled \"Throw\"; it will do nothing")
	}
	if len(c.AutoFind.Executables) == 0 && len(c.AutoFind.Classes) == 0 && c.Hotkeys.AutoFind != "" {
		warnings = append(warnings, "hotkeys.auto_find is set but auto_find has no executables or classes")
	}
	return warnings
}

// padPresets fills missing presets with defaults.
func (c *Config) padPresets() {
	for len(c.Presets) < PresetCount {
		c.Presets = append(c.Presets, DefaultPreset())
	}
}

func (o OverlayColors) byName() map[string]string {
	return map[string]string{
		"left_group":  o.LeftGroup,
		"right_group": o.RightGroup,
		"all_groups":  o.AllGroups,
		"multi_click": o.MultiClick,
		"session":     o.Session,
		"selected":    o.Selected,
		"switched":    o.Switched,
		"marked":      o.Marked,
		"label":       o.Label,
		"label_bg":    o.LabelBg,
	}
}

// ParseColor parses "#rrggbb" into 0xrrggbb.
func ParseColor(s string) (uint32, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) != 6 {
		return 0, fmt.Errorf("invalid color %q (want #rrggbb)", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q (want #rrggbb)", s)
	}
	return uint32(n), nil
}

func isDigitKey(key string) bool {
	key = strings.TrimSpace(key)
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return true
	}
	return strings.HasPrefix(key, "KP_") && len(key) == 4 && key[3] >= '0' && key[3] <= '9'
}
