package engine

import (
	"log"

	"github.com/1broseidon/multibox/internal/actionlog"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/keymap"
	"github.com/1broseidon/multibox/internal/tiling"
)

// ProcessInput classifies ev and either handles it as a command or routes it
// to the controllers of the current mode. It reports whether ev was consumed
// and must not reach its original destination.
func (e *Engine) ProcessInput(ev input.Event) bool {
	e.lock()
	defer e.unlock()

	if ev.Kind.IsPointer() {
		return e.processPointer(ev)
	}
	if e.processMeta(ev) {
		return true
	}
	return e.route(ev)
}

func isPress(ev input.Event) bool {
	return ev.Kind == input.KeyDown || ev.Kind == input.Hotkey
}

// processMeta handles command keys and reports whether ev was one.
func (e *Engine) processMeta(ev input.Event) bool {
	opts := &e.opts

	if opts.Mode.MatchesKey(ev) {
		extra := ev.Mods.Significant() &^ opts.Mode.Mods.Significant()
		if extra.Standard() {
			// Chorded with another modifier: an ordinary key for the game.
			return false
		}
		if isPress(ev) {
			e.modeKey()
		}
		return true
	}

	if e.session != nil {
		return e.processSessionKey(ev)
	}

	switch {
	case opts.GroupMode.Matches(ev):
		if isPress(ev) {
			e.setMode(ModeGroup)
		}
		return true
	case opts.AllGroupMode.Matches(ev):
		if isPress(ev) {
			e.setMode(ModeAllGroup)
		}
		return true
	case opts.MirrorAllMode.Matches(ev):
		if isPress(ev) {
			e.setMode(ModeMirrorAll)
		}
		return true
	case opts.MultiClick.Matches(ev):
		if isPress(ev) {
			if !e.multiClickHeld {
				e.multiClickHeld = true
				e.multiClick()
			}
		} else {
			e.multiClickHeld = false
			e.publish()
		}
		return true
	case opts.ZeroPower.Matches(ev):
		if isPress(ev) {
			if !e.zeroPowerHeld {
				e.zeroPowerHeld = true
				e.zeroPower()
			}
		} else {
			e.zeroPowerHeld = false
		}
		return true
	case opts.Release.Matches(ev):
		if isPress(ev) {
			e.release()
		}
		return true
	}

	if e.isSwitchModifier(ev) && isPress(ev) {
		e.enterSession()
		return true
	}

	if d, ok := opts.Digits.Digit(ev.Code); ok && ev.Kind.IsKey() &&
		e.mode == ModeGroup && e.roster.Len() > 1 {
		if isPress(ev) {
			index := d - 1
			if d == 0 {
				index = 9
			}
			if index < e.roster.Len() {
				e.selectGroup(index)
			}
		}
		return true
	}

	return false
}

// modeKey activates the engine or cycles to the next mode.
func (e *Engine) modeKey() {
	if !e.active {
		_ = e.activate()
		return
	}
	if next, ok := nextMode(e.mode, e.opts.CyclableModes); ok {
		e.setMode(next)
	}
}

// route forwards an ordinary key to the active set. In group modes the key
// is translated through the per-role binding tables; in mirror mode it is
// sent unchanged.
func (e *Engine) route(ev input.Event) bool {
	if !e.active {
		return false
	}
	if e.session != nil {
		return true
	}

	kind := ev.Kind
	if kind == input.Hotkey {
		kind = input.KeyDown
	}
	targets := e.activeWithWindows()

	if e.mode == ModeMirrorAll {
		msg := input.Message{Kind: kind, Code: ev.Code, Mods: ev.Mods}
		for _, c := range targets {
			e.post(c, msg)
		}
		return true
	}

	left, right := e.opts.Bindings.Lookup(ev.Code)
	for _, c := range targets {
		keys := left
		if c.Role() == controller.Right {
			keys = right
		}
		for _, k := range keys {
			e.post(c, input.Message{Kind: kind, Code: k, Mods: ev.Mods})
		}
	}
	return true
}

func (e *Engine) processPointer(ev input.Event) bool {
	if e.session == nil {
		return false
	}
	sw := e.opts.Switching
	switch {
	case sw.Select.Down(ev):
		e.sessionSelect(ev)
	case sw.Remove.Down(ev):
		e.sessionMark(ev)
	}
	return true
}

// pointer returns the root pointer position for ev.
func (e *Engine) pointer(ev input.Event) (int, int, bool) {
	if ev.Kind.IsPointer() {
		return ev.X, ev.Y, true
	}
	x, y, err := e.deps.Windows.PointerPosition()
	if err != nil {
		e.log.Debug("pointer query failed", "error", err)
		return 0, 0, false
	}
	return x, y, true
}

// controllerAt returns the first assigned controller whose client area
// contains the point.
func (e *Engine) controllerAt(x, y int) (*controller.Controller, tiling.Rect, bool) {
	for _, c := range e.roster.WithWindows() {
		r, err := e.deps.Windows.ClientRect(c.Window())
		if err != nil {
			continue
		}
		if r.Contains(x, y) {
			return c, r, true
		}
	}
	return nil, tiling.Rect{}, false
}

// multiClick clicks the same client-relative spot in every active window.
func (e *Engine) multiClick() {
	x, y, ok := e.pointer(input.Event{})
	if !ok {
		return
	}
	_, rect, found := e.controllerAt(x, y)
	if !found {
		if !e.active {
			_ = e.activate()
		}
		return
	}
	relX, relY := x-rect.X, y-rect.Y

	if !e.active {
		if err := e.activate(); err != nil {
			return
		}
		e.setMode(ModeMirrorAll)
	}

	targets := e.activeWithWindows()
	for _, c := range targets {
		e.post(c, input.Message{Kind: input.ButtonDown, Code: 1, X: relX, Y: relY})
		e.post(c, input.Message{Kind: input.ButtonUp, Code: 1, X: relX, Y: relY})
	}
	e.record(actionlog.ActionMultiClick, -1, map[string]any{"x": relX, "y": relY, "targets": len(targets)})
	e.publish()
}

// zeroPower taps the Throw binding's role key in every active window.
func (e *Engine) zeroPower() {
	b, ok := e.opts.Bindings.Find(keymap.ThrowTitle)
	if !ok {
		log.Printf("Engine: zero-power key pressed but no %q binding exists", keymap.ThrowTitle)
		return
	}

	var targets []*controller.Controller
	if e.active {
		targets = e.activeWithWindows()
	} else {
		if err := e.activate(); err != nil {
			return
		}
		e.setMode(ModeMirrorAll)
		targets = e.roster.WithWindows()
	}

	for _, c := range targets {
		key := b.Left
		if c.Role() == controller.Right {
			key = b.Right
		}
		if key == 0 {
			continue
		}
		e.post(c, input.Message{Kind: input.KeyDown, Code: key})
		e.post(c, input.Message{Kind: input.KeyUp, Code: key})
	}
	e.record(actionlog.ActionZeroPower, -1, map[string]any{"targets": len(targets)})
}
