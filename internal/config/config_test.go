package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/multibox/internal/controller"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if len(cfg.Presets) != PresetCount {
		t.Fatalf("expected %d presets, got %d", PresetCount, len(cfg.Presets))
	}
	for i, p := range cfg.Presets {
		if p.Enabled || p.Columns != 4 || p.Rows != 2 || len(p.Regions) != 1 {
			t.Fatalf("preset %d has unexpected defaults: %+v", i+1, p)
		}
	}
	if cfg.Priority() != controller.PriorityPair {
		t.Fatalf("expected pair priority, got %q", cfg.Priority())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Hotkeys.Mode != DefaultConfig().Hotkeys.Mode {
		t.Fatalf("expected default mode hotkey, got %q", res.Config.Hotkeys.Mode)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Config.Switching.Enabled || res.Config.Switching.Modifier != "Alt_L" {
		t.Fatalf("expected default switching config, got %+v", res.Config.Switching)
	}
}

func TestLoadFromPath_PartialSectionsKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"hotkeys:",
		"  multi_click: Mod4-c",
		"switching:",
		"  select:",
		"    key: x",
		"    button: 0",
		"presets:",
		"  - enabled: true",
		"    regions: \"0,0,1920,1080;1920,0,2560,1440,1,1\"",
		"    hotkey: Mod4-Mod1-1",
		"layout_priority: role",
		"zero_power_global: false",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Hotkeys.MultiClick != "Mod4-c" {
		t.Fatalf("multi_click = %q", cfg.Hotkeys.MultiClick)
	}
	if cfg.Hotkeys.Mode != "Pause" {
		t.Fatalf("expected untouched hotkeys to keep defaults, got mode %q", cfg.Hotkeys.Mode)
	}
	if cfg.Switching.Select.Key != "x" || cfg.Switching.Modifier != "Alt_L" {
		t.Fatalf("unexpected switching %+v", cfg.Switching)
	}
	if len(cfg.Presets) != PresetCount {
		t.Fatalf("expected presets padded to %d, got %d", PresetCount, len(cfg.Presets))
	}
	p1 := cfg.Presets[0]
	if !p1.Enabled || p1.Columns != 4 || p1.Rows != 2 {
		t.Fatalf("preset 1 = %+v", p1)
	}
	if len(p1.Regions) != 2 || p1.Regions[1].Mode != RegionDisplay || p1.Regions[1].DisplayIndex != 1 {
		t.Fatalf("preset 1 regions = %+v", p1.Regions)
	}
	if cfg.Presets[3].Enabled {
		t.Fatalf("padded preset should be disabled")
	}
	if cfg.Priority() != controller.PriorityRole {
		t.Fatalf("priority = %q, want role", cfg.Priority())
	}
	if cfg.ZeroPowerGlobal || !cfg.MultiClickGlobal || !cfg.ModeHotkeyGlobal {
		t.Fatalf("scope flags = mode %v multi %v zero %v", cfg.ModeHotkeyGlobal, cfg.MultiClickGlobal, cfg.ZeroPowerGlobal)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "groups: 1\nsettle:\n  attempts: 0\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Path != "settle.attempts" {
		t.Fatalf("path = %q, want settle.attempts", verr.Path)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("line = %d, want 3", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), path+":3:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "groups: 2\nlog_level: debug\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "groups: 3\n")

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include:\n  - config.d\ngroups: 4\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Groups != 4 {
		t.Fatalf("expected groups 4, got %d", res.Config.Groups)
	}
	if res.Config.LogLevel != "debug" {
		t.Fatalf("expected included log_level, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad palette", func(c *Config) { c.PaletteBackend = "zenity" }, "palette_backend"},
		{"bad priority", func(c *Config) { c.LayoutPriority = "column" }, "layout_priority"},
		{"zero groups", func(c *Config) { c.Groups = 0 }, "groups"},
		{"unknown mode", func(c *Config) { c.CyclableModes = []string{"individual"} }, "cyclable_modes"},
		{"digit binding", func(c *Config) { c.KeyBindings = []KeyBinding{{Title: "x", Key: "a", Left: "1"}} }, "key_bindings.0"},
		{"button and key", func(c *Config) { c.Switching.Remove = Trigger{Button: 3, Key: "r"} }, "switching.remove"},
		{"no select", func(c *Config) { c.Switching.Select = Trigger{} }, "switching.select"},
		{"bad color", func(c *Config) { c.Overlay.Colors.Marked = "red" }, "overlay.colors.marked"},
		{"bad preset", func(c *Config) { c.Presets[1].Columns = 0 }, "presets.1"},
		{"too many presets", func(c *Config) { c.Presets = append(c.Presets, DefaultPreset()) }, "presets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "hotkeys:\n  zero_power: Mod4-z\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "hotkeys.zero_power")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "Mod4-z" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("explain = %v, %+v", val, src)
	}

	val, src, err = Explain(res, "key_bindings.5.title")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "Throw" || src.Kind != SourceDefault {
		t.Fatalf("explain = %v, %+v", val, src)
	}

	if _, _, err := Explain(res, "presets.9"); err == nil {
		t.Fatalf("expected error for out of range path")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Presets[0].Enabled = true
	cfg.Presets[0].Regions = RegionList{
		{X: 0, Y: 0, Width: 2560, Height: 1440, Mode: RegionManual, DisplayIndex: -1},
		{Mode: RegionDisplay, DisplayIndex: 1},
	}
	cfg.Groups = 3

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := res.Config.Presets[0]
	if !got.Enabled || len(got.Regions) != 2 || got.Regions[0].Width != 2560 || got.Regions[1].Mode != RegionDisplay {
		t.Fatalf("round-tripped preset = %+v", got)
	}
	if res.Config.Groups != 3 {
		t.Fatalf("groups = %d, want 3", res.Config.Groups)
	}
}

func TestParseColor(t *testing.T) {
	if v, err := ParseColor("#3498db"); err != nil || v != 0x3498db {
		t.Fatalf("ParseColor = %x, %v", v, err)
	}
	for _, bad := range []string{"", "#123", "zzzzzz", "#1234567"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) should fail", bad)
		}
	}
}
