package engine

import (
	"fmt"
	"time"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/keymap"
)

const (
	DefaultTickInterval   = 50 * time.Millisecond
	DefaultSettleInterval = 10 * time.Millisecond
	DefaultSettleAttempts = 5
)

// Switching configures the reassignment session.
type Switching struct {
	Enabled bool
	// Modifier is the keycode that opens the session while held.
	Modifier uint32
	Select   input.Trigger
	Remove   input.Trigger
}

// Options are the engine's resolved settings.
type Options struct {
	Mode          input.Chord
	GroupMode     input.Chord
	AllGroupMode  input.Chord
	MirrorAllMode input.Chord
	MultiClick    input.Chord
	ZeroPower     input.Chord
	Release       input.Chord

	CyclableModes []Mode
	Bindings      *keymap.Table
	Switching     Switching
	Digits        input.DigitKeys

	Presets    []config.LayoutPreset
	Priority   controller.Priority
	LastPreset int
	Groups     int

	SettleInterval time.Duration
	SettleAttempts int
	TickInterval   time.Duration
}

// DefaultOptions has no key chords bound.
func DefaultOptions() Options {
	return Options{
		CyclableModes:  append([]Mode(nil), Modes...),
		Bindings:       keymap.Build(nil),
		Presets:        config.DefaultConfig().Presets,
		Priority:       controller.PriorityPair,
		LastPreset:     1,
		Groups:         1,
		SettleInterval: DefaultSettleInterval,
		SettleAttempts: DefaultSettleAttempts,
		TickInterval:   DefaultTickInterval,
	}
}

// KeyResolver turns keybind strings into keycodes.
type KeyResolver interface {
	// Chord parses "Mod4-Mod1-f" style strings. An empty string yields the
	// zero chord.
	Chord(s string) (input.Chord, error)
	// Keycode resolves a single key name such as "Delete" or "Alt_L".
	Keycode(s string) (uint32, error)
}

// ResolveOptions builds Options from cfg.
func ResolveOptions(cfg *config.Config, keys KeyResolver) (Options, error) {
	opts := DefaultOptions()

	chords := []struct {
		name string
		in   string
		out  *input.Chord
	}{
		{"hotkeys.mode", cfg.Hotkeys.Mode, &opts.Mode},
		{"hotkeys.group_mode", cfg.Hotkeys.GroupMode, &opts.GroupMode},
		{"hotkeys.all_group_mode", cfg.Hotkeys.AllGroupMode, &opts.AllGroupMode},
		{"hotkeys.mirror_all_mode", cfg.Hotkeys.MirrorAllMode, &opts.MirrorAllMode},
		{"hotkeys.multi_click", cfg.Hotkeys.MultiClick, &opts.MultiClick},
		{"hotkeys.zero_power", cfg.Hotkeys.ZeroPower, &opts.ZeroPower},
		{"hotkeys.release", cfg.Hotkeys.Release, &opts.Release},
	}
	for _, c := range chords {
		if c.in == "" {
			continue
		}
		chord, err := keys.Chord(c.in)
		if err != nil {
			return Options{}, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.out = chord
	}

	modes, err := ParseModes(cfg.CyclableModes)
	if err != nil {
		return Options{}, fmt.Errorf("cyclable_modes: %w", err)
	}
	opts.CyclableModes = modes

	bindings := make([]keymap.Binding, 0, len(cfg.KeyBindings))
	for i, kb := range cfg.KeyBindings {
		b := keymap.Binding{Title: kb.Title}
		fields := []struct {
			name string
			in   string
			out  *uint32
		}{
			{"key", kb.Key, &b.Key},
			{"left", kb.Left, &b.Left},
			{"right", kb.Right, &b.Right},
		}
		for _, f := range fields {
			if f.in == "" {
				continue
			}
			code, err := keys.Keycode(f.in)
			if err != nil {
				return Options{}, fmt.Errorf("key_bindings.%d.%s: %w", i, f.name, err)
			}
			*f.out = code
		}
		bindings = append(bindings, b)
	}
	opts.Bindings = keymap.Build(bindings)

	opts.Switching.Enabled = cfg.Switching.Enabled
	if cfg.Switching.Modifier != "" {
		code, err := keys.Keycode(cfg.Switching.Modifier)
		if err != nil {
			return Options{}, fmt.Errorf("switching.modifier: %w", err)
		}
		opts.Switching.Modifier = code
	}
	if opts.Switching.Select, err = resolveTrigger(keys, cfg.Switching.Select); err != nil {
		return Options{}, fmt.Errorf("switching.select: %w", err)
	}
	if opts.Switching.Remove, err = resolveTrigger(keys, cfg.Switching.Remove); err != nil {
		return Options{}, fmt.Errorf("switching.remove: %w", err)
	}

	opts.Digits = make(input.DigitKeys, 20)
	for d := 0; d <= 9; d++ {
		code, err := keys.Keycode(fmt.Sprintf("%d", d))
		if err != nil {
			return Options{}, fmt.Errorf("digit %d: %w", d, err)
		}
		opts.Digits[code] = d
		// Keyboards without a keypad simply have no KP_ keysyms.
		if code, err := keys.Keycode(fmt.Sprintf("KP_%d", d)); err == nil {
			opts.Digits[code] = d
		}
	}

	opts.Presets = append([]config.LayoutPreset(nil), cfg.Presets...)
	opts.Priority = cfg.Priority()
	opts.Groups = cfg.Groups
	if cfg.Settle.IntervalMS > 0 {
		opts.SettleInterval = time.Duration(cfg.Settle.IntervalMS) * time.Millisecond
	}
	if cfg.Settle.Attempts > 0 {
		opts.SettleAttempts = cfg.Settle.Attempts
	}
	return opts, nil
}

func resolveTrigger(keys KeyResolver, t config.Trigger) (input.Trigger, error) {
	if t.Button > 0 {
		return input.Trigger{Button: uint32(t.Button)}, nil
	}
	if t.Key == "" {
		return input.Trigger{}, nil
	}
	code, err := keys.Keycode(t.Key)
	if err != nil {
		return input.Trigger{}, err
	}
	return input.Trigger{Key: code}, nil
}
