package daemon

import (
	"fmt"
	"log"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/engine"
	"github.com/1broseidon/multibox/internal/hotkeys"
)

// Grabber registers passive key grabs on the root window.
type Grabber interface {
	Grab(name, keySequence string) error
	UngrabAll()
}

// Actions are the daemon commands reachable from hotkeys.
type Actions struct {
	AutoFind       func()
	TogglePriority func()
	Palette        func()
	ApplyPreset    func(n int)
}

// BindHotkeys grabs every configured hotkey and binds the daemon commands on
// the router. Engine chords are only grabbed; the engine matches them itself
// once the event arrives. The mode, multi-click and zero-power keys honour
// their *_global flags: a local one is grabbed only while focused is true,
// that is while a managed window has input focus. A hotkey that fails to
// register is logged and skipped. It returns how many hotkeys were grabbed.
func BindHotkeys(cfg *config.Config, keys engine.KeyResolver, g Grabber, r *hotkeys.Router, a Actions, focused bool) int {
	g.UngrabAll()
	r.Reset()

	type binding struct {
		name string
		seq  string
		run  func()
	}
	hk := cfg.Hotkeys
	var bindings []binding
	scoped := func(name, seq string, global bool) {
		if global || focused {
			bindings = append(bindings, binding{name: name, seq: seq})
		}
	}
	scoped("mode", hk.Mode, cfg.ModeHotkeyGlobal)
	scoped("multi_click", hk.MultiClick, cfg.MultiClickGlobal)
	scoped("zero_power", hk.ZeroPower, cfg.ZeroPowerGlobal)
	bindings = append(bindings,
		binding{name: "group_mode", seq: hk.GroupMode},
		binding{name: "all_group_mode", seq: hk.AllGroupMode},
		binding{name: "mirror_all_mode", seq: hk.MirrorAllMode},
		binding{name: "release", seq: hk.Release},
		binding{name: "auto_find", seq: hk.AutoFind, run: a.AutoFind},
		binding{name: "layout_priority", seq: hk.LayoutPriority, run: a.TogglePriority},
		binding{name: "palette", seq: hk.Palette, run: a.Palette},
	)
	for i, p := range cfg.Presets {
		if !p.Enabled || p.Hotkey == "" || a.ApplyPreset == nil {
			continue
		}
		n := i + 1
		bindings = append(bindings, binding{
			name: fmt.Sprintf("preset %d", n),
			seq:  p.Hotkey,
			run:  func() { a.ApplyPreset(n) },
		})
	}

	grabbed := 0
	for _, b := range bindings {
		if b.seq == "" {
			continue
		}
		if err := g.Grab(b.name, b.seq); err != nil {
			log.Printf("Warning: %v", err)
			continue
		}
		grabbed++
		if b.run == nil {
			continue
		}
		chord, err := keys.Chord(b.seq)
		if err != nil {
			log.Printf("Warning: %s hotkey %q: %v", b.name, b.seq, err)
			continue
		}
		r.Bind(b.name, chord, b.run)
	}
	log.Printf("Hotkeys registered: %d", grabbed)
	return grabbed
}
