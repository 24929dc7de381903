// Package engine routes keyboard and pointer input from one operator to
// many game-client windows. It owns the controller roster, the current
// routing mode and the switching session used to rearrange windows.
//
// Every exported method takes the engine lock and runs to completion;
// observers are notified after the lock is released.
package engine

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/multibox/internal/actionlog"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/platform"
)

var (
	ErrLastGroup   = controller.ErrLastGroup
	ErrNoSuchGroup = controller.ErrNoSuchGroup
	// ErrPresetDisabled is returned when applying a disabled preset.
	ErrPresetDisabled = errors.New("preset is disabled")
	// ErrNoSuchPreset is returned for a preset number outside 1-4.
	ErrNoSuchPreset = errors.New("no such preset")
)

// Engine is the input-routing state machine.
type Engine struct {
	mu   sync.Mutex
	deps Deps
	opts Options
	log  *slog.Logger

	roster     *controller.Roster
	mode       Mode
	groupIndex int
	active     bool

	multiClickHeld bool
	zeroPowerHeld  bool

	session *session

	focused      platform.WindowID
	focusManaged bool

	priority     controller.Priority
	lastPreset   int
	postFailures int
	failureShown bool

	groupsDirty bool
	pending     []Change
	observers   []Observer
	started     time.Time
}

// New builds an engine with opts.Groups empty groups.
func New(deps Deps, opts Options) (*Engine, error) {
	if deps.Poster == nil {
		return nil, fmt.Errorf("engine: poster is required")
	}
	if deps.Windows == nil {
		return nil, fmt.Errorf("engine: windows is required")
	}
	deps.fill()
	opts = normalizeOptions(opts)

	return &Engine{
		deps:       deps,
		opts:       opts,
		log:        deps.Logger,
		roster:     controller.NewRoster(opts.Groups),
		mode:       ModeGroup,
		priority:   opts.Priority,
		lastPreset: opts.LastPreset,
		started:    time.Now(),
	}, nil
}

func normalizeOptions(opts Options) Options {
	def := DefaultOptions()
	if opts.Bindings == nil {
		opts.Bindings = def.Bindings
	}
	if opts.Priority == "" {
		opts.Priority = def.Priority
	}
	if opts.LastPreset < 1 {
		opts.LastPreset = def.LastPreset
	}
	if opts.Groups < 1 {
		opts.Groups = def.Groups
	}
	if opts.SettleInterval <= 0 {
		opts.SettleInterval = def.SettleInterval
	}
	if opts.SettleAttempts <= 0 {
		opts.SettleAttempts = def.SettleAttempts
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = def.TickInterval
	}
	return opts
}

// Subscribe registers o for change notifications.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

func (e *Engine) lock() {
	e.mu.Lock()
}

// unlock persists dirty assignments, releases the lock and then delivers
// queued changes.
func (e *Engine) unlock() {
	if e.groupsDirty {
		e.groupsDirty = false
		e.refocus()
		if err := e.deps.Settings.SaveAssignments(e.roster); err != nil {
			e.log.Warn("failed to save assignments", "error", err)
		}
	}
	pending := e.pending
	e.pending = nil
	observers := append([]Observer(nil), e.observers...)
	e.mu.Unlock()

	for _, c := range pending {
		for _, o := range observers {
			o.EngineChanged(c)
		}
	}
}

func (e *Engine) emit(kind ChangeKind, detail string) {
	if kind == ChangeGroups {
		e.groupsDirty = true
	}
	e.pending = append(e.pending, Change{
		Kind:    kind,
		Mode:    e.mode,
		Active:  e.active,
		Session: e.session != nil,
		Detail:  detail,
	})
}

// SetFocusedWindow records the window holding input focus and marks the
// controller owning it, if any. It reports whether a managed window has
// focus.
func (e *Engine) SetFocusedWindow(w platform.WindowID) bool {
	e.lock()
	defer e.unlock()
	e.focused = w
	e.refocus()
	return e.focusManaged
}

// ManagedWindowFocused reports whether a controller's window has focus.
func (e *Engine) ManagedWindowFocused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focusManaged
}

// refocus re-derives every controller's focus flag after the focused window
// or the assignments changed.
func (e *Engine) refocus() {
	managed := false
	for _, c := range e.roster.All() {
		on := c.HasWindow() && c.Window() == e.focused
		c.SetActive(on)
		managed = managed || on
	}
	if managed != e.focusManaged {
		e.focusManaged = managed
		e.emit(ChangeFocus, fmt.Sprintf("0x%x", uint32(e.focused)))
	}
}

func (e *Engine) record(action actionlog.Action, ordinal int, details map[string]any) {
	id := ""
	if e.session != nil {
		id = e.session.id
	}
	e.deps.Recorder.Log(action, id, ordinal, details)
}

// UpdateOptions swaps in reloaded settings. The roster, the layout priority
// and the last preset are runtime state and survive; groups are only added,
// never removed, to reach opts.Groups. An open session is closed when the
// reload disables switching.
func (e *Engine) UpdateOptions(opts Options) {
	e.lock()
	defer e.unlock()

	e.opts = normalizeOptions(opts)
	if e.session != nil && !e.opts.Switching.Enabled {
		log.Printf("Switching: closing session %s, switching disabled by reload", e.session.id)
		e.exitSession()
	}
	if e.roster.Len() < e.opts.Groups {
		e.roster.EnsureGroup(e.opts.Groups)
		e.emit(ChangeGroups, "reload")
	}
	e.emit(ChangeSetting, "reload")
	e.publish()
}

// Mode returns the current mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode switches to m.
func (e *Engine) SetMode(m Mode) {
	e.lock()
	defer e.unlock()
	e.setMode(m)
}

func (e *Engine) setMode(m Mode) {
	if e.mode == m {
		return
	}
	e.mode = m
	log.Printf("Engine: mode %s", m)
	e.record(actionlog.ActionMode, -1, map[string]any{"mode": m.String()})
	e.emit(ChangeMode, m.String())
	e.emit(ChangeActiveSet, "")
	e.publish()
}

// Active reports whether the engine owns the keyboard.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Activate grabs the keyboard so input is routed to controllers.
func (e *Engine) Activate() error {
	e.lock()
	defer e.unlock()
	return e.activate()
}

func (e *Engine) activate() error {
	if e.active {
		return nil
	}
	if err := e.deps.Focus.Acquire(); err != nil {
		log.Printf("Engine: failed to acquire keyboard: %v", err)
		return fmt.Errorf("acquire keyboard: %w", err)
	}
	e.active = true
	log.Printf("Engine: active in %s mode", e.mode)
	e.record(actionlog.ActionActivate, -1, map[string]any{"mode": e.mode.String()})
	e.emit(ChangeActivation, "active")
	e.publish()
	return nil
}

// ReleaseFocus closes any switching session and gives the keyboard back.
func (e *Engine) ReleaseFocus() {
	e.lock()
	defer e.unlock()
	e.release()
}

func (e *Engine) release() {
	if e.session != nil {
		e.exitSession()
	}
	if !e.active {
		return
	}
	e.deps.Focus.Release()
	e.active = false
	e.multiClickHeld = false
	e.zeroPowerHeld = false
	log.Printf("Engine: released")
	e.record(actionlog.ActionRelease, -1, nil)
	e.emit(ChangeActivation, "released")
	e.publish()
}

// SelectGroup makes group index (zero-based) current.
func (e *Engine) SelectGroup(index int) error {
	e.lock()
	defer e.unlock()
	if _, ok := e.roster.Group(index); !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchGroup, index+1)
	}
	e.selectGroup(index)
	return nil
}

func (e *Engine) selectGroup(index int) {
	if clampGroup(e.roster, e.groupIndex) == index {
		return
	}
	e.groupIndex = index
	e.record(actionlog.ActionGroupSelect, -1, map[string]any{"group": index + 1})
	e.emit(ChangeActiveSet, fmt.Sprintf("group %d", index+1))
	e.publish()
}

// AddGroup appends an empty group and returns its number.
func (e *Engine) AddGroup() int {
	e.lock()
	defer e.unlock()
	g := e.roster.AddGroup()
	e.record(actionlog.ActionGroupAdd, -1, map[string]any{"group": g.Number})
	e.emit(ChangeGroups, fmt.Sprintf("added group %d", g.Number))
	return g.Number
}

// RemoveGroup drops group index (zero-based), disconnecting its windows.
// The last group cannot be removed.
func (e *Engine) RemoveGroup(index int) error {
	e.lock()
	defer e.unlock()

	g, ok := e.roster.Group(index)
	if ok && e.session != nil && e.roster.Len() > 1 {
		for _, c := range g.All() {
			e.session.forget(c)
		}
	}
	if err := e.roster.RemoveGroup(index); err != nil {
		return err
	}
	if e.groupIndex > index {
		e.groupIndex--
	}
	e.groupIndex = clampGroup(e.roster, e.groupIndex)
	e.record(actionlog.ActionGroupRemove, -1, map[string]any{"group": index + 1})
	e.emit(ChangeGroups, fmt.Sprintf("removed group %d", index+1))
	e.emit(ChangeActiveSet, "")
	e.publish()
	return nil
}

// ActiveSet returns the controllers the current mode targets.
func (e *Engine) ActiveSet() []*controller.Controller {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ActiveControllers(e.roster, e.mode, e.groupIndex)
}

func (e *Engine) activeWithWindows() []*controller.Controller {
	var out []*controller.Controller
	for _, c := range ActiveControllers(e.roster, e.mode, e.groupIndex) {
		if c.HasWindow() {
			out = append(out, c)
		}
	}
	return out
}

// PruneDead disconnects controllers whose window no longer exists and
// returns the windows removed.
func (e *Engine) PruneDead() []platform.WindowID {
	e.lock()
	defer e.unlock()

	var gone []platform.WindowID
	for _, c := range e.roster.WithWindows() {
		w := c.Window()
		if e.deps.Windows.IsLive(w) {
			continue
		}
		e.roster.Clear(c)
		if e.session != nil {
			e.session.forget(c)
		}
		gone = append(gone, w)
		e.record(actionlog.ActionPrune, c.Ordinal(), map[string]any{"window": fmt.Sprintf("0x%x", uint32(w))})
	}
	if len(gone) > 0 {
		e.emit(ChangeGroups, fmt.Sprintf("pruned %d", len(gone)))
		e.publish()
	}
	return gone
}

// Restore reassigns saved slots whose window is still live and returns how
// many were restored.
func (e *Engine) Restore(snap controller.Snapshot) int {
	e.lock()
	defer e.unlock()

	slots := make([]controller.Slot, 0, len(snap))
	for s := range snap {
		slots = append(slots, s)
	}
	sortSlots(slots)

	n := 0
	for _, s := range slots {
		w := snap[s]
		if w == platform.NoWindow || !e.deps.Windows.IsLive(w) {
			continue
		}
		e.roster.Restore(s, w)
		n++
	}
	if n > 0 {
		e.emit(ChangeGroups, fmt.Sprintf("restored %d", n))
		e.publish()
	}
	return n
}

// post sends msg to c's window, flagging c on failure. Only the first
// failure of the run is reported.
func (e *Engine) post(c *controller.Controller, msg input.Message) {
	if err := e.deps.Poster.Post(c.Window(), msg); err != nil {
		if c.MarkPostError() {
			e.postFailures++
			e.record(actionlog.ActionPostFail, c.Ordinal(), map[string]any{"error": err.Error()})
		}
		if !e.failureShown {
			e.failureShown = true
			log.Printf("Engine: failed to post input to %s (window 0x%x): %v", c, uint32(c.Window()), err)
			e.emit(ChangePostFailure, c.String())
		}
	}
}
