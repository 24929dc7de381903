package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/multibox/internal/input"
)

// Sink receives hotkey presses and releases.
type Sink func(input.Event) bool

// Binder holds the passive key grabs on the root window used while the
// engine does not own the keyboard.
type Binder struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	sink Sink

	mu    sync.Mutex
	bound []string
}

var ignoreModsOnce sync.Once

// NewBinder creates a binder delivering to sink. Releases of grabbed keys
// arrive on the root window and are forwarded as key-up events.
func NewBinder(xu *xgbutil.XUtil, root xproto.Window, sink Sink) *Binder {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	b := &Binder{xu: xu, root: root, sink: sink}
	xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		b.sink(input.Event{
			Kind: input.KeyUp,
			Code: uint32(ev.Detail),
			Mods: input.Modifiers(ev.State),
			X:    int(ev.RootX),
			Y:    int(ev.RootY),
		})
	}).Connect(xu, root)
	return b
}

// Grab registers keySequence as a passive grab. An empty sequence is a no-op.
func (b *Binder) Grab(name, keySequence string) error {
	if keySequence == "" {
		return nil
	}
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		b.sink(input.Event{
			Kind: input.Hotkey,
			Code: uint32(ev.Detail),
			Mods: input.Modifiers(ev.State),
			X:    int(ev.RootX),
			Y:    int(ev.RootY),
		})
	}).Connect(b.xu, b.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("failed to register %s hotkey %q: %w", name, keySequence, err)
	}

	b.mu.Lock()
	b.bound = append(b.bound, keySequence)
	b.mu.Unlock()
	return nil
}

// UngrabAll drops every passive grab made through Grab.
func (b *Binder) UngrabAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	keybind.DetachPress(b.xu, b.root)
	if len(b.bound) > 0 {
		log.Printf("Hotkey: released %d grab(s)", len(b.bound))
	}
	b.bound = nil
}

// Bound returns the registered key sequences.
func (b *Binder) Bound() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bound...)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
