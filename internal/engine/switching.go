package engine

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/1broseidon/multibox/internal/actionlog"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/overlay"
	"github.com/1broseidon/multibox/internal/platform"
)

// session is the state of one switching session. It exists only while the
// switching modifier is held.
type session struct {
	id       string
	modifier uint32
	first    *controller.Controller
	second   *controller.Controller
	switched map[*controller.Controller]bool
	marked   map[*controller.Controller]bool

	release    Release
	stopTicker func()
}

func newSession(modifier uint32) *session {
	return &session{
		id:       uuid.NewString(),
		modifier: modifier,
		switched: make(map[*controller.Controller]bool),
		marked:   make(map[*controller.Controller]bool),
	}
}

// forget drops every reference to c.
func (s *session) forget(c *controller.Controller) {
	if s.first == c {
		s.first = nil
	}
	if s.second == c {
		s.second = nil
	}
	delete(s.switched, c)
	delete(s.marked, c)
}

func (s *session) class(c *controller.Controller) overlay.Class {
	switch {
	case s.marked[c]:
		return overlay.ClassMarked
	case c == s.first || c == s.second:
		return overlay.ClassSelected
	case s.switched[c]:
		return overlay.ClassSwitched
	default:
		return overlay.ClassNone
	}
}

// InSession reports whether a switching session is open.
func (e *Engine) InSession() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

func (e *Engine) isSwitchModifier(ev input.Event) bool {
	sw := e.opts.Switching
	return sw.Enabled && sw.Modifier != 0 && ev.Kind.IsKey() && ev.Code == sw.Modifier
}

func (e *Engine) enterSession() {
	if e.session != nil {
		return
	}
	if err := e.activate(); err != nil {
		return
	}

	s := newSession(e.opts.Switching.Modifier)
	rel, err := e.deps.Hook.Install()
	if err != nil {
		log.Printf("Switching: pointer grab failed, pointer triggers disabled: %v", err)
	}
	s.release = rel
	e.session = s
	s.stopTicker = e.deps.Ticker.Start(e.opts.TickInterval, e.tick)

	log.Printf("Switching: session %s started", s.id)
	e.record(actionlog.ActionSessionOpen, -1, nil)
	e.emit(ChangeSession, "open")
	e.publish()
}

func (e *Engine) tick() {
	e.lock()
	defer e.unlock()
	if e.session == nil {
		return
	}
	e.publish()
}

// exitSession disconnects marked controllers, releases the pointer grab and
// re-tiles with the last preset.
func (e *Engine) exitSession() {
	s := e.session
	if s == nil {
		return
	}
	e.record(actionlog.ActionSessionClose, -1, map[string]any{
		"switched": len(s.switched),
		"marked":   len(s.marked),
	})
	e.session = nil
	if s.stopTicker != nil {
		s.stopTicker()
	}
	if s.release != nil {
		s.release()
	}

	disconnected := 0
	for _, c := range e.roster.WithWindows() {
		if !s.marked[c] {
			continue
		}
		w := c.Window()
		e.roster.Clear(c)
		disconnected++
		e.deps.Recorder.Log(actionlog.ActionDisconnect, s.id, c.Ordinal(), map[string]any{"window": fmt.Sprintf("0x%x", uint32(w))})
	}
	if disconnected > 0 {
		e.emit(ChangeGroups, fmt.Sprintf("disconnected %d", disconnected))
	}

	if err := e.applyPreset(e.lastPreset); err != nil {
		e.log.Debug("no preset applied on session exit", "preset", e.lastPreset, "error", err)
	}

	log.Printf("Switching: session %s ended (%d disconnected)", s.id, disconnected)
	e.emit(ChangeSession, "closed")
	e.publish()
}

// processSessionKey handles keyboard input while a session is open. Every
// key is consumed. The session ends on release of the modifier that opened
// it, even if a reload has changed the configured one since.
func (e *Engine) processSessionKey(ev input.Event) bool {
	sw := e.opts.Switching
	switch {
	case ev.Kind.IsKey() && ev.Code == e.session.modifier:
		if ev.Kind == input.KeyUp {
			e.exitSession()
		}
	case sw.Select.Down(ev):
		e.sessionSelect(ev)
	case sw.Remove.Down(ev):
		e.sessionMark(ev)
	case isPress(ev):
		if d, ok := e.opts.Digits.Digit(ev.Code); ok && d >= 1 {
			e.reslot(d, ev)
		}
	}
	return true
}

// sessionSelect implements the two-step select-then-swap gesture.
func (e *Engine) sessionSelect(ev input.Event) {
	s := e.session
	x, y, ok := e.pointer(ev)
	if !ok {
		return
	}
	c, _, found := e.controllerAt(x, y)
	if !found {
		return
	}
	if s.marked[c] {
		delete(s.marked, c)
		e.record(actionlog.ActionUnmark, c.Ordinal(), nil)
	}

	switch {
	case s.first == nil:
		s.first = c
	case c != s.first && s.second == nil:
		s.second = c
		e.swap(s.first, s.second)
		s.first, s.second = nil, nil
	case c == s.first:
		s.first = nil
	}
	e.publish()
}

func (e *Engine) swap(a, b *controller.Controller) {
	e.roster.Swap(a, b)
	e.session.switched[a] = true
	e.session.switched[b] = true

	log.Printf("Switching: swapped %s and %s", a, b)
	e.record(actionlog.ActionSwap, a.Ordinal(), map[string]any{"with": b.Ordinal()})
	e.emit(ChangeGroups, fmt.Sprintf("swapped %s %s", a, b))
	e.settle(a.Window(), b.Window())
}

// sessionMark toggles the controller under the pointer for removal.
func (e *Engine) sessionMark(ev input.Event) {
	s := e.session
	x, y, ok := e.pointer(ev)
	if !ok {
		return
	}
	c, _, found := e.controllerAt(x, y)
	if !found {
		return
	}
	if s.marked[c] {
		delete(s.marked, c)
		e.record(actionlog.ActionUnmark, c.Ordinal(), nil)
	} else {
		if s.first == c {
			s.first = nil
		}
		if s.second == c {
			s.second = nil
		}
		s.marked[c] = true
		e.record(actionlog.ActionMark, c.Ordinal(), nil)
	}
	e.publish()
}

// reslot moves the window under the pointer to ordinal digit: odd digits
// are left slots and even digits right slots of group ceil(digit/2).
func (e *Engine) reslot(digit int, ev input.Event) {
	x, y, ok := e.pointer(ev)
	if !ok {
		return
	}

	var w platform.WindowID
	if c, _, found := e.controllerAt(x, y); found {
		w = c.Window()
	} else {
		w = e.unmanagedAt(x, y)
	}
	if w == platform.NoWindow || !e.deps.Windows.IsLive(w) {
		return
	}

	if prev := e.roster.ClearWindow(w); prev != nil {
		e.session.forget(prev)
	}
	group := (digit + 1) / 2
	role := controller.Left
	if digit%2 == 0 {
		role = controller.Right
	}
	target := e.roster.FreeSlot(group, role)
	e.roster.Assign(target, w)

	log.Printf("Switching: window 0x%x moved to %s", uint32(w), target)
	e.record(actionlog.ActionReslot, target.Ordinal(), map[string]any{"window": fmt.Sprintf("0x%x", uint32(w))})
	e.emit(ChangeGroups, fmt.Sprintf("reslot %s", target))
	e.settle(w)
	e.publish()
}

// unmanagedAt returns the visible top-level window at the point when no
// controller holds it.
func (e *Engine) unmanagedAt(x, y int) platform.WindowID {
	top, err := e.deps.Windows.TopLevelAt(x, y)
	if err != nil || top == platform.NoWindow {
		return platform.NoWindow
	}
	if e.roster.Owner(top) != nil {
		return platform.NoWindow
	}
	visible, err := e.deps.Windows.VisibleWindows()
	if err != nil {
		return platform.NoWindow
	}
	for _, w := range visible {
		if w == top {
			return top
		}
	}
	return platform.NoWindow
}

// publish sends the current highlight state to the overlay.
func (e *Engine) publish() {
	inActive := make(map[*controller.Controller]bool)
	for _, c := range ActiveControllers(e.roster, e.mode, e.groupIndex) {
		inActive[c] = true
	}

	var highlights []overlay.Highlight
	for _, c := range e.roster.WithWindows() {
		rect, err := e.deps.Windows.ClientRect(c.Window())
		if err != nil {
			rect = platform.Rect{}
		}
		h := overlay.Highlight{
			Ordinal:     c.Ordinal(),
			Window:      c.Window(),
			Role:        c.Role(),
			Group:       c.Group(),
			Bounds:      rect,
			InActiveSet: inActive[c],
		}
		if e.session != nil {
			h.Class = e.session.class(c)
		}
		highlights = append(highlights, h)
	}

	e.deps.Overlay.Publish(overlay.State{
		Session:    e.session != nil,
		Active:     e.active,
		Mode:       e.mode.String(),
		Flash:      e.multiClickHeld,
		Highlights: highlights,
	})
}
