package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/keymap"
	"github.com/1broseidon/multibox/internal/overlay"
	"github.com/1broseidon/multibox/internal/platform"
)

// Keycodes used by the tests. Values follow a US layout under Xorg.
const (
	keyPause  = 127
	keyF1     = 67
	keyF2     = 68
	keyF3     = 69
	keyC      = 54
	keyZ      = 52
	keyEscape = 9
	keyW      = 25
	keyA      = 38
	keyUp     = 111
	keyLeft   = 113
	keyDelete = 119
	keyInsert = 118
	keyX      = 53
	keyAltL   = 64
	key1      = 10
	key2      = 11
	key4      = 13
	key0      = 19
)

var errGone = errors.New("window gone")

type posted struct {
	Window platform.WindowID
	Msg    input.Message
}

type fakePoster struct {
	posts []posted
	fail  map[platform.WindowID]error
}

func (p *fakePoster) Post(id platform.WindowID, msg input.Message) error {
	if err := p.fail[id]; err != nil {
		return err
	}
	p.posts = append(p.posts, posted{Window: id, Msg: msg})
	return nil
}

func (p *fakePoster) to(id platform.WindowID) []input.Message {
	var out []input.Message
	for _, ps := range p.posts {
		if ps.Window == id {
			out = append(out, ps.Msg)
		}
	}
	return out
}

type move struct {
	Window platform.WindowID
	Rect   platform.Rect
}

type fakeWindows struct {
	pointerX, pointerY int
	rects              map[platform.WindowID]platform.Rect
	dead               map[platform.WindowID]bool
	top                platform.WindowID
	visible            []platform.WindowID
	moves              []move
	// jitter windows report a different rect on every read.
	jitter map[platform.WindowID]int
}

func newFakeWindows() *fakeWindows {
	return &fakeWindows{
		rects:  make(map[platform.WindowID]platform.Rect),
		dead:   make(map[platform.WindowID]bool),
		jitter: make(map[platform.WindowID]int),
	}
}

func (w *fakeWindows) add(id platform.WindowID, r platform.Rect) {
	w.rects[id] = r
	w.visible = append(w.visible, id)
}

func (w *fakeWindows) PointerPosition() (int, int, error) {
	return w.pointerX, w.pointerY, nil
}

func (w *fakeWindows) ClientRect(id platform.WindowID) (platform.Rect, error) {
	r, ok := w.rects[id]
	if !ok || w.dead[id] {
		return platform.Rect{}, errGone
	}
	if _, ok := w.jitter[id]; ok {
		w.jitter[id]++
		r.X += w.jitter[id]
	}
	return r, nil
}

func (w *fakeWindows) TopLevelAt(x, y int) (platform.WindowID, error) {
	return w.top, nil
}

func (w *fakeWindows) VisibleWindows() ([]platform.WindowID, error) {
	return w.visible, nil
}

func (w *fakeWindows) IsLive(id platform.WindowID) bool {
	_, ok := w.rects[id]
	return ok && !w.dead[id]
}

func (w *fakeWindows) MoveResize(id platform.WindowID, r platform.Rect) error {
	w.moves = append(w.moves, move{Window: id, Rect: r})
	return nil
}

func (w *fakeWindows) Displays() ([]platform.Display, error) {
	return nil, nil
}

func (w *fakeWindows) moveOrder() []platform.WindowID {
	var out []platform.WindowID
	for _, m := range w.moves {
		out = append(out, m.Window)
	}
	return out
}

type fakeOverlay struct {
	last  overlay.State
	count int
}

func (o *fakeOverlay) Publish(s overlay.State) {
	o.last = s
	o.count++
}

func (o *fakeOverlay) class(w platform.WindowID) overlay.Class {
	for _, h := range o.last.Highlights {
		if h.Window == w {
			return h.Class
		}
	}
	return overlay.ClassNone
}

type fakeFocus struct {
	acquired int
	released int
	err      error
}

func (f *fakeFocus) Acquire() error {
	if f.err != nil {
		return f.err
	}
	f.acquired++
	return nil
}

func (f *fakeFocus) Release() { f.released++ }

type fakeHook struct {
	installed int
	released  int
}

func (h *fakeHook) Install() (Release, error) {
	h.installed++
	return func() { h.released++ }, nil
}

type fakeTicker struct {
	fn      func()
	started int
	stopped int
}

func (t *fakeTicker) Start(_ time.Duration, fn func()) func() {
	t.fn = fn
	t.started++
	return func() { t.stopped++ }
}

type fakeClock struct {
	sleeps int
}

func (c *fakeClock) Sleep(time.Duration) { c.sleeps++ }

type fakeSettings struct {
	lastPreset int
	priority   controller.Priority
	saves      int
}

func (s *fakeSettings) SaveLastPreset(n int) error {
	s.lastPreset = n
	return nil
}

func (s *fakeSettings) SaveLayoutPriority(p controller.Priority) error {
	s.priority = p
	return nil
}

func (s *fakeSettings) SaveAssignments(*controller.Roster) error {
	s.saves++
	return nil
}

type changeLog struct {
	changes []Change
}

func (l *changeLog) EngineChanged(c Change) { l.changes = append(l.changes, c) }

func (l *changeLog) count(kind ChangeKind) int {
	n := 0
	for _, c := range l.changes {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

type env struct {
	poster   *fakePoster
	windows  *fakeWindows
	overlay  *fakeOverlay
	focus    *fakeFocus
	hook     *fakeHook
	ticker   *fakeTicker
	clock    *fakeClock
	settings *fakeSettings
	changes  *changeLog
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Mode = input.Chord{Code: keyPause}
	opts.GroupMode = input.Chord{Code: keyF1}
	opts.AllGroupMode = input.Chord{Code: keyF2}
	opts.MirrorAllMode = input.Chord{Code: keyF3}
	opts.MultiClick = input.Chord{Code: keyC, Mods: input.ModSuper}
	opts.ZeroPower = input.Chord{Code: keyZ, Mods: input.ModSuper}
	opts.Release = input.Chord{Code: keyEscape, Mods: input.ModSuper}
	// W drives both sides: left windows get W, right windows get Up.
	opts.Bindings = keymap.Build([]keymap.Binding{
		{Title: "Forward", Key: keyW, Left: keyW},
		{Title: "ForwardRight", Key: keyUp, Right: keyW},
		{Title: "LeftOnly", Key: keyA, Left: keyA},
		{Title: "RightOnly", Key: keyLeft, Right: keyLeft},
		{Title: keymap.ThrowTitle, Key: keyDelete, Left: keyDelete, Right: keyInsert},
	})
	opts.Switching = Switching{
		Enabled:  true,
		Modifier: keyAltL,
		Select:   input.Trigger{Button: 1},
		Remove:   input.Trigger{Button: 3},
	}
	opts.Digits = input.DigitKeys{}
	for d := 1; d <= 9; d++ {
		opts.Digits[uint32(key1+d-1)] = d
	}
	opts.Digits[key0] = 0

	opts.Presets = config.DefaultConfig().Presets
	p := config.DefaultPreset()
	p.Enabled = true
	p.Columns = 2
	p.Rows = 2
	p.Regions = config.RegionList{{X: 0, Y: 0, Width: 1000, Height: 1000, Mode: config.RegionManual, DisplayIndex: -1}}
	opts.Presets[0] = p
	return opts
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *env) {
	t.Helper()
	en := &env{
		poster:   &fakePoster{fail: make(map[platform.WindowID]error)},
		windows:  newFakeWindows(),
		overlay:  &fakeOverlay{},
		focus:    &fakeFocus{},
		hook:     &fakeHook{},
		ticker:   &fakeTicker{},
		clock:    &fakeClock{},
		settings: &fakeSettings{},
		changes:  &changeLog{},
	}
	e, err := New(Deps{
		Poster:   en.poster,
		Windows:  en.windows,
		Overlay:  en.overlay,
		Focus:    en.focus,
		Hook:     en.hook,
		Ticker:   en.ticker,
		Clock:    en.clock,
		Settings: en.settings,
	}, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Subscribe(en.changes)
	return e, en
}

func slot(group, pair int, role controller.Role) controller.Slot {
	return controller.Slot{Group: group, Pair: pair, Role: role}
}

// newQuadEngine assigns four 500x500 windows in a 1000x1000 square:
// 1 and 2 to group 1, 3 and 4 to group 2.
func newQuadEngine(t *testing.T) (*Engine, *env) {
	t.Helper()
	e, en := newTestEngine(t, testOptions())
	en.windows.add(1, platform.Rect{X: 0, Y: 0, Width: 500, Height: 500})
	en.windows.add(2, platform.Rect{X: 500, Y: 0, Width: 500, Height: 500})
	en.windows.add(3, platform.Rect{X: 0, Y: 500, Width: 500, Height: 500})
	en.windows.add(4, platform.Rect{X: 500, Y: 500, Width: 500, Height: 500})
	n := e.Restore(controller.Snapshot{
		slot(1, 1, controller.Left):  1,
		slot(1, 1, controller.Right): 2,
		slot(2, 1, controller.Left):  3,
		slot(2, 1, controller.Right): 4,
	})
	if n != 4 {
		t.Fatalf("restored %d windows, want 4", n)
	}
	en.changes.changes = nil
	return e, en
}

func press(code uint32) input.Event {
	return input.Event{Kind: input.KeyDown, Code: code}
}

func release(code uint32) input.Event {
	return input.Event{Kind: input.KeyUp, Code: code}
}

func click(button uint32, x, y int) input.Event {
	return input.Event{Kind: input.ButtonDown, Code: button, X: x, Y: y}
}

func mustActivate(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
}
