package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/input"
)

// mapKeys resolves key names from a fixed table.
type mapKeys map[string]uint32

func (m mapKeys) Keycode(s string) (uint32, error) {
	code, ok := m[s]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", s)
	}
	return code, nil
}

func (m mapKeys) Chord(s string) (input.Chord, error) {
	parts := strings.Split(s, "-")
	var mods input.Modifiers
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "Mod1":
			mods |= input.ModAlt
		case "Mod4":
			mods |= input.ModSuper
		case "Shift":
			mods |= input.ModShift
		case "Control":
			mods |= input.ModControl
		default:
			return input.Chord{}, fmt.Errorf("unknown modifier %q", p)
		}
	}
	code, err := m.Keycode(parts[len(parts)-1])
	if err != nil {
		return input.Chord{}, err
	}
	return input.Chord{Code: code, Mods: mods}, nil
}

func usKeys() mapKeys {
	m := mapKeys{
		"Pause": keyPause, "Escape": keyEscape, "f": 41, "p": 33, "g": 42,
		"Up": keyUp, "Down": 116, "Left": keyLeft, "Right": 114,
		"w": keyW, "s": 39, "a": keyA, "d": 40,
		"space": 65, "Control_L": 37, "Control_R": 105,
		"Delete": keyDelete, "Alt_L": keyAltL, "x": keyX,
	}
	for d := 1; d <= 9; d++ {
		m[fmt.Sprint(d)] = uint32(key1 + d - 1)
	}
	m["0"] = key0
	for d, code := range []uint32{90, 87, 88, 89, 83, 84, 85, 79, 80, 81} {
		m[fmt.Sprintf("KP_%d", d)] = code
	}
	return m
}

func TestResolveOptionsDefaults(t *testing.T) {
	opts, err := ResolveOptions(config.DefaultConfig(), usKeys())
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}

	if opts.Mode != (input.Chord{Code: keyPause}) {
		t.Errorf("Mode = %+v", opts.Mode)
	}
	if want := (input.Chord{Code: keyEscape, Mods: input.ModSuper}); opts.Release != want {
		t.Errorf("Release = %+v, want %+v", opts.Release, want)
	}
	if !opts.MultiClick.IsZero() {
		t.Errorf("MultiClick should be unbound by default")
	}

	// Forward: w on the left side and Up on the right both send Up.
	if left, right := opts.Bindings.Lookup(keyW); len(left) != 1 || left[0] != keyUp || len(right) != 0 {
		t.Errorf("w maps to %v/%v", left, right)
	}
	if left, right := opts.Bindings.Lookup(keyUp); len(left) != 0 || len(right) != 1 || right[0] != keyUp {
		t.Errorf("Up maps to %v/%v", left, right)
	}
	if b, ok := opts.Bindings.Find("Throw"); !ok || b.Left != keyDelete {
		t.Errorf("Throw binding = %+v, %v", b, ok)
	}

	if !opts.Switching.Enabled || opts.Switching.Modifier != keyAltL {
		t.Errorf("Switching = %+v", opts.Switching)
	}
	if opts.Switching.Select != (input.Trigger{Button: 1}) || opts.Switching.Remove != (input.Trigger{Button: 3}) {
		t.Errorf("triggers = %+v / %+v", opts.Switching.Select, opts.Switching.Remove)
	}
	if d, ok := opts.Digits.Digit(key0); !ok || d != 0 {
		t.Errorf("digit for key0 = %d, %v", d, ok)
	}
	if d, ok := opts.Digits.Digit(key4); !ok || d != 4 {
		t.Errorf("digit for key4 = %d, %v", d, ok)
	}
	if d, ok := opts.Digits.Digit(89); !ok || d != 3 {
		t.Errorf("digit for KP_3 = %d, %v", d, ok)
	}
	if d, ok := opts.Digits.Digit(90); !ok || d != 0 {
		t.Errorf("digit for KP_0 = %d, %v", d, ok)
	}
	if len(opts.CyclableModes) != 3 {
		t.Errorf("CyclableModes = %v", opts.CyclableModes)
	}
	if opts.SettleAttempts != 5 {
		t.Errorf("SettleAttempts = %d", opts.SettleAttempts)
	}
}

func TestResolveOptionsKeyTrigger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Switching.Select = config.Trigger{Key: "x"}

	opts, err := ResolveOptions(cfg, usKeys())
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	if opts.Switching.Select != (input.Trigger{Key: keyX}) {
		t.Fatalf("Select = %+v", opts.Switching.Select)
	}
}

func TestResolveOptionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"mode", func(c *config.Config) { c.Hotkeys.Mode = "Bogus" }, "hotkeys.mode"},
		{"modifier", func(c *config.Config) { c.Hotkeys.Release = "Hyper-x" }, "hotkeys.release"},
		{"binding", func(c *config.Config) { c.KeyBindings[1].Left = "nokey" }, "key_bindings.1.left"},
		{"switch", func(c *config.Config) { c.Switching.Modifier = "Meta_L" }, "switching.modifier"},
		{"trigger", func(c *config.Config) { c.Switching.Remove = config.Trigger{Key: "nokey"} }, "switching.remove"},
		{"cyclable", func(c *config.Config) { c.CyclableModes = []string{"bogus"} }, "cyclable_modes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			_, err := ResolveOptions(cfg, usKeys())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
