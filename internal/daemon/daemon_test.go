package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/hotkeys"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/platform"
)

type fakePruner struct {
	calls int
	gone  []platform.WindowID
}

func (f *fakePruner) PruneDead() []platform.WindowID {
	f.calls++
	gone := f.gone
	f.gone = nil
	return gone
}

func TestReconcileNow(t *testing.T) {
	p := &fakePruner{gone: []platform.WindowID{0x400001}}
	r := NewReconciler(ReconcilerConfig{}, p)
	if r.interval != DefaultReconcileInterval {
		t.Fatalf("interval = %v, want %v", r.interval, DefaultReconcileInterval)
	}

	gone := r.ReconcileNow()
	if len(gone) != 1 || gone[0] != 0x400001 {
		t.Fatalf("gone = %v, want [0x400001]", gone)
	}
	if gone := r.ReconcileNow(); len(gone) != 0 {
		t.Fatalf("second pass gone = %v, want none", gone)
	}
	if p.calls != 2 {
		t.Fatalf("calls = %d, want 2", p.calls)
	}
}

type panicPruner struct{}

func (panicPruner) PruneDead() []platform.WindowID { panic("boom") }

func TestReconcileRecoversPanic(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{}, panicPruner{})
	if gone := r.ReconcileNow(); gone != nil {
		t.Fatalf("gone = %v, want nil", gone)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

type fakeGrabber struct {
	grabbed  map[string]string
	ungrabs  int
	failures map[string]bool
}

func newFakeGrabber() *fakeGrabber {
	return &fakeGrabber{grabbed: make(map[string]string), failures: make(map[string]bool)}
}

func (g *fakeGrabber) Grab(name, seq string) error {
	if g.failures[seq] {
		return fmt.Errorf("failed to register %s hotkey %q: taken", name, seq)
	}
	g.grabbed[name] = seq
	return nil
}

func (g *fakeGrabber) UngrabAll() {
	g.ungrabs++
	g.grabbed = make(map[string]string)
}

// seqKeys gives every sequence a distinct keycode and no modifiers.
type seqKeys struct {
	codes map[string]uint32
}

func (k *seqKeys) Chord(s string) (input.Chord, error) {
	if s == "bad" {
		return input.Chord{}, errors.New("bad chord")
	}
	if k.codes == nil {
		k.codes = make(map[string]uint32)
	}
	code, ok := k.codes[s]
	if !ok {
		code = uint32(len(k.codes) + 10)
		k.codes[s] = code
	}
	return input.Chord{Code: code}, nil
}

func (k *seqKeys) Keycode(s string) (uint32, error) {
	c, err := k.Chord(s)
	return c.Code, err
}

type nopEngine struct{ events int }

func (e *nopEngine) ProcessInput(input.Event) bool {
	e.events++
	return false
}

func TestBindHotkeys(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Hotkeys.ZeroPower = "Delete"
	cfg.Presets[1].Enabled = true
	cfg.Presets[1].Hotkey = "Mod4-Mod1-2"
	cfg.Presets[2].Hotkey = "Mod4-Mod1-3" // disabled preset

	keys := &seqKeys{}
	g := newFakeGrabber()
	eng := &nopEngine{}
	r := hotkeys.NewRouter(eng)

	var ran []string
	n := BindHotkeys(cfg, keys, g, r, Actions{
		AutoFind:       func() { ran = append(ran, "auto_find") },
		TogglePriority: func() { ran = append(ran, "priority") },
		Palette:        func() { ran = append(ran, "palette") },
		ApplyPreset:    func(n int) { ran = append(ran, fmt.Sprintf("preset %d", n)) },
	}, false)

	// mode, zero_power, release, auto_find, layout_priority, palette, preset 2
	if n != 7 {
		t.Fatalf("grabbed = %d (%v), want 7", n, g.grabbed)
	}
	if g.grabbed["mode"] != "Pause" {
		t.Fatalf("mode grab = %q, want Pause", g.grabbed["mode"])
	}
	if _, ok := g.grabbed["preset 3"]; ok {
		t.Fatalf("disabled preset must not be grabbed")
	}

	press := func(seq string) {
		chord, _ := keys.Chord(seq)
		r.Handle(input.Event{Kind: input.Hotkey, Code: chord.Code})
		r.Handle(input.Event{Kind: input.KeyUp, Code: chord.Code})
	}
	press(cfg.Hotkeys.AutoFind)
	press(cfg.Hotkeys.LayoutPriority)
	press("Mod4-Mod1-2")
	press(cfg.Hotkeys.Mode)

	want := []string{"auto_find", "priority", "preset 2"}
	if strings.Join(ran, ",") != strings.Join(want, ",") {
		t.Fatalf("ran = %v, want %v", ran, want)
	}
	// The mode key is grabbed but belongs to the engine.
	if eng.events != 2 {
		t.Fatalf("engine events = %d, want 2", eng.events)
	}
}

func TestBindHotkeysSkipsFailures(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ModeHotkeyGlobal = false
	cfg.Hotkeys.Palette = "bad"

	g := newFakeGrabber()
	g.failures[cfg.Hotkeys.AutoFind] = true
	r := hotkeys.NewRouter(&nopEngine{})

	// release, layout_priority, palette
	if n := BindHotkeys(cfg, &seqKeys{}, g, r, Actions{}, false); n != 3 {
		t.Fatalf("grabbed = %d (%v), want 3", n, g.grabbed)
	}
	if _, ok := g.grabbed["mode"]; ok {
		t.Fatalf("mode key must not be grabbed when it is not global")
	}
	if g.ungrabs != 1 {
		t.Fatalf("ungrabs = %d, want 1", g.ungrabs)
	}
}

func TestBindHotkeysScope(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Hotkeys.MultiClick = "Mod4-c"
	cfg.Hotkeys.ZeroPower = "Delete"
	cfg.ModeHotkeyGlobal = false
	cfg.MultiClickGlobal = false
	cfg.ZeroPowerGlobal = true

	tests := []struct {
		name    string
		focused bool
		want    map[string]bool
	}{
		{"unfocused", false, map[string]bool{"mode": false, "multi_click": false, "zero_power": true}},
		{"managed window focused", true, map[string]bool{"mode": true, "multi_click": true, "zero_power": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFakeGrabber()
			BindHotkeys(cfg, &seqKeys{}, g, hotkeys.NewRouter(&nopEngine{}), Actions{}, tt.focused)
			for name, want := range tt.want {
				if _, got := g.grabbed[name]; got != want {
					t.Errorf("%s grabbed = %v, want %v", name, got, want)
				}
			}
			if _, ok := g.grabbed["release"]; !ok {
				t.Errorf("release is always global")
			}
		})
	}
}
