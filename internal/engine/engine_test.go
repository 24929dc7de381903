package engine

import (
	"errors"
	"testing"

	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/platform"
)

func TestNewRequiresPorts(t *testing.T) {
	if _, err := New(Deps{Windows: newFakeWindows()}, DefaultOptions()); err == nil {
		t.Fatalf("expected error without poster")
	}
	if _, err := New(Deps{Poster: &fakePoster{}}, DefaultOptions()); err == nil {
		t.Fatalf("expected error without windows")
	}
}

func TestActiveControllers(t *testing.T) {
	r := controller.NewRoster(3)
	g2 := mustGroup(t, r, 1)
	g2.AddPair()

	tests := []struct {
		name  string
		mode  Mode
		index int
		want  []*controller.Controller
	}{
		{"group uses current group", ModeGroup, 1, g2.All()},
		{"group clamps stale index", ModeGroup, 7, mustGroup(t, r, 0).All()},
		{"group clamps negative index", ModeGroup, -1, mustGroup(t, r, 0).All()},
		{"all group", ModeAllGroup, 1, r.All()},
		{"mirror all", ModeMirrorAll, 2, r.All()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveControllers(r, tt.mode, tt.index)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d controllers, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("controller[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func mustGroup(t *testing.T, r *controller.Roster, i int) *controller.Group {
	t.Helper()
	g, ok := r.Group(i)
	if !ok {
		t.Fatalf("no group %d", i)
	}
	return g
}

func TestNextMode(t *testing.T) {
	tests := []struct {
		name     string
		cur      Mode
		cyclable []Mode
		want     Mode
		ok       bool
	}{
		{"advances", ModeGroup, Modes, ModeAllGroup, true},
		{"wraps", ModeMirrorAll, Modes, ModeGroup, true},
		{"outside list goes to first", ModeAllGroup, []Mode{ModeMirrorAll, ModeGroup}, ModeMirrorAll, true},
		{"single entry stays", ModeGroup, []Mode{ModeGroup}, ModeGroup, true},
		{"empty list", ModeGroup, nil, ModeGroup, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nextMode(tt.cur, tt.cyclable)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("nextMode = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("individual"); err == nil {
		t.Fatalf("expected error for pruned mode")
	}
	modes, err := ParseModes([]string{"group", "mirror_all", "group"})
	if err != nil || len(modes) != 2 {
		t.Fatalf("ParseModes = %v, %v", modes, err)
	}
}

func TestModeKeyActivatesThenCycles(t *testing.T) {
	e, en := newQuadEngine(t)

	if !e.ProcessInput(input.Event{Kind: input.Hotkey, Code: keyPause}) {
		t.Fatalf("mode hotkey should be consumed")
	}
	if !e.Active() || en.focus.acquired != 1 {
		t.Fatalf("mode key should activate, active=%v acquired=%d", e.Active(), en.focus.acquired)
	}
	if e.Mode() != ModeGroup {
		t.Fatalf("activation should not change mode, got %v", e.Mode())
	}

	if !e.ProcessInput(release(keyPause)) {
		t.Fatalf("mode key release should be consumed")
	}
	want := []Mode{ModeAllGroup, ModeMirrorAll, ModeGroup}
	for _, m := range want {
		e.ProcessInput(press(keyPause))
		if got := e.Mode(); got != m {
			t.Fatalf("mode = %v, want %v", got, m)
		}
	}
	if len(en.poster.posts) != 0 {
		t.Fatalf("mode key should not be forwarded, got %d posts", len(en.poster.posts))
	}
	if en.changes.count(ChangeMode) != 3 {
		t.Fatalf("ChangeMode count = %d, want 3", en.changes.count(ChangeMode))
	}
}

func TestModeKeyWithModifierPassesThrough(t *testing.T) {
	e, en := newQuadEngine(t)

	chorded := input.Event{Kind: input.KeyDown, Code: keyPause, Mods: input.ModShift}
	if e.ProcessInput(chorded) {
		t.Fatalf("chorded mode key should pass through while inactive")
	}
	if e.Active() {
		t.Fatalf("chorded mode key must not activate")
	}

	mustActivate(t, e)
	e.SetMode(ModeMirrorAll)
	if !e.ProcessInput(chorded) {
		t.Fatalf("active engine consumes routed keys")
	}
	if e.Mode() != ModeMirrorAll {
		t.Fatalf("chorded mode key must not cycle, mode = %v", e.Mode())
	}
	for _, w := range []platform.WindowID{1, 2, 3, 4} {
		msgs := en.poster.to(w)
		if len(msgs) != 1 || msgs[0].Code != keyPause || msgs[0].Mods != input.ModShift {
			t.Fatalf("window %d got %+v, want forwarded shifted pause", w, msgs)
		}
	}
}

func TestDirectModeKeys(t *testing.T) {
	e, _ := newQuadEngine(t)
	tests := []struct {
		code uint32
		want Mode
	}{
		{keyF3, ModeMirrorAll},
		{keyF2, ModeAllGroup},
		{keyF1, ModeGroup},
	}
	for _, tt := range tests {
		if !e.ProcessInput(press(tt.code)) {
			t.Fatalf("mode key %d not consumed", tt.code)
		}
		if !e.ProcessInput(release(tt.code)) {
			t.Fatalf("mode key %d release not consumed", tt.code)
		}
		if got := e.Mode(); got != tt.want {
			t.Fatalf("mode = %v, want %v", got, tt.want)
		}
	}
	if e.Active() {
		t.Fatalf("direct mode keys must not activate")
	}
}

func TestRoutingGroupModes(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		ev   input.Event
		want map[platform.WindowID][]uint32
	}{
		{
			name: "both sides in group 1",
			mode: ModeGroup,
			ev:   press(keyW),
			want: map[platform.WindowID][]uint32{1: {keyW}, 2: {keyUp}},
		},
		{
			name: "left only",
			mode: ModeGroup,
			ev:   press(keyA),
			want: map[platform.WindowID][]uint32{1: {keyA}},
		},
		{
			name: "right only across groups",
			mode: ModeAllGroup,
			ev:   press(keyLeft),
			want: map[platform.WindowID][]uint32{2: {keyLeft}, 4: {keyLeft}},
		},
		{
			name: "both sides across groups",
			mode: ModeAllGroup,
			ev:   release(keyW),
			want: map[platform.WindowID][]uint32{1: {keyW}, 2: {keyUp}, 3: {keyW}, 4: {keyUp}},
		},
		{
			name: "unbound key sends nothing",
			mode: ModeGroup,
			ev:   press(keyX),
			want: map[platform.WindowID][]uint32{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, en := newQuadEngine(t)
			mustActivate(t, e)
			e.SetMode(tt.mode)

			if !e.ProcessInput(tt.ev) {
				t.Fatalf("active engine should consume the key")
			}
			for _, w := range []platform.WindowID{1, 2, 3, 4} {
				msgs := en.poster.to(w)
				want := tt.want[w]
				if len(msgs) != len(want) {
					t.Fatalf("window %d got %d messages, want %d", w, len(msgs), len(want))
				}
				for i := range want {
					if msgs[i].Code != want[i] {
						t.Errorf("window %d message %d code = %d, want %d", w, i, msgs[i].Code, want[i])
					}
					if msgs[i].Kind != tt.ev.Kind {
						t.Errorf("window %d message %d kind = %v, want %v", w, i, msgs[i].Kind, tt.ev.Kind)
					}
				}
			}
		})
	}
}

func TestRoutingMirrorAllVerbatim(t *testing.T) {
	e, en := newQuadEngine(t)
	mustActivate(t, e)
	e.SetMode(ModeMirrorAll)

	e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyX, Mods: input.ModControl})
	e.ProcessInput(release(keyX))
	for _, w := range []platform.WindowID{1, 2, 3, 4} {
		msgs := en.poster.to(w)
		if len(msgs) != 2 {
			t.Fatalf("window %d got %d messages, want 2", w, len(msgs))
		}
		if msgs[0] != (input.Message{Kind: input.KeyDown, Code: keyX, Mods: input.ModControl}) {
			t.Errorf("window %d first message = %+v", w, msgs[0])
		}
		if msgs[1].Kind != input.KeyUp || msgs[1].Code != keyX {
			t.Errorf("window %d second message = %+v", w, msgs[1])
		}
	}
}

func TestRoutingInactivePassesThrough(t *testing.T) {
	e, en := newQuadEngine(t)
	if e.ProcessInput(press(keyW)) {
		t.Fatalf("inactive engine should not consume ordinary keys")
	}
	if len(en.poster.posts) != 0 {
		t.Fatalf("inactive engine posted %d messages", len(en.poster.posts))
	}
}

func TestRoutingSkipsUnassigned(t *testing.T) {
	e, en := newTestEngine(t, testOptions())
	en.windows.add(1, platform.Rect{Width: 10, Height: 10})
	e.Restore(controller.Snapshot{slot(1, 1, controller.Left): 1})
	mustActivate(t, e)
	e.ProcessInput(press(keyW))
	if len(en.poster.posts) != 1 || en.poster.posts[0].Window != 1 {
		t.Fatalf("posts = %+v, want one message to window 1", en.poster.posts)
	}
}

func TestMultiClick(t *testing.T) {
	e, en := newQuadEngine(t)
	en.windows.pointerX, en.windows.pointerY = 600, 120
	ev := input.Event{Kind: input.Hotkey, Code: keyC, Mods: input.ModSuper}

	if !e.ProcessInput(ev) {
		t.Fatalf("multi-click should be consumed")
	}
	if !e.Active() || e.Mode() != ModeMirrorAll {
		t.Fatalf("multi-click while inactive should activate into mirror, active=%v mode=%v", e.Active(), e.Mode())
	}
	if !en.overlay.last.Flash {
		t.Fatalf("overlay should flash while the key is held")
	}
	for _, w := range []platform.WindowID{1, 2, 3, 4} {
		msgs := en.poster.to(w)
		if len(msgs) != 2 {
			t.Fatalf("window %d got %d messages, want 2", w, len(msgs))
		}
		down := input.Message{Kind: input.ButtonDown, Code: 1, X: 100, Y: 120}
		up := input.Message{Kind: input.ButtonUp, Code: 1, X: 100, Y: 120}
		if msgs[0] != down || msgs[1] != up {
			t.Fatalf("window %d got %+v", w, msgs)
		}
	}

	// Auto-repeat while held does nothing.
	e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyC, Mods: input.ModSuper})
	if len(en.poster.posts) != 8 {
		t.Fatalf("repeat should be suppressed, got %d posts", len(en.poster.posts))
	}

	e.ProcessInput(release(keyC))
	if en.overlay.last.Flash {
		t.Fatalf("flash should clear on release")
	}
	e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyC, Mods: input.ModSuper})
	if len(en.poster.posts) != 16 {
		t.Fatalf("second click should post again, got %d posts", len(en.poster.posts))
	}
}

func TestMultiClickOutsideWindowsOnlyActivates(t *testing.T) {
	e, en := newQuadEngine(t)
	en.windows.pointerX, en.windows.pointerY = 5000, 5000

	e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyC, Mods: input.ModSuper})
	if !e.Active() {
		t.Fatalf("expected activation")
	}
	if e.Mode() != ModeGroup {
		t.Fatalf("mode = %v, want unchanged group", e.Mode())
	}
	if len(en.poster.posts) != 0 {
		t.Fatalf("no click expected, got %d posts", len(en.poster.posts))
	}
}

func TestMultiClickActiveUsesCurrentSet(t *testing.T) {
	e, en := newQuadEngine(t)
	mustActivate(t, e)
	if err := e.SelectGroup(1); err != nil {
		t.Fatalf("SelectGroup: %v", err)
	}
	en.windows.pointerX, en.windows.pointerY = 10, 10

	e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyC, Mods: input.ModSuper})
	if e.Mode() != ModeGroup {
		t.Fatalf("active multi-click must keep mode, got %v", e.Mode())
	}
	if len(en.poster.to(1)) != 0 || len(en.poster.to(3)) != 2 || len(en.poster.to(4)) != 2 {
		t.Fatalf("expected clicks only in group 2, posts = %+v", en.poster.posts)
	}
}

func TestZeroPower(t *testing.T) {
	t.Run("active uses role keys", func(t *testing.T) {
		e, en := newQuadEngine(t)
		mustActivate(t, e)

		e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyZ, Mods: input.ModSuper})
		left := en.poster.to(1)
		right := en.poster.to(2)
		if len(left) != 2 || left[0] != (input.Message{Kind: input.KeyDown, Code: keyDelete}) || left[1] != (input.Message{Kind: input.KeyUp, Code: keyDelete}) {
			t.Fatalf("left got %+v", left)
		}
		if len(right) != 2 || right[0].Code != keyInsert || right[1].Kind != input.KeyUp {
			t.Fatalf("right got %+v", right)
		}
		if len(en.poster.to(3)) != 0 {
			t.Fatalf("group 2 is not active")
		}

		e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyZ, Mods: input.ModSuper})
		if len(en.poster.posts) != 4 {
			t.Fatalf("repeat should be suppressed, got %d posts", len(en.poster.posts))
		}
		e.ProcessInput(release(keyZ))
		e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyZ, Mods: input.ModSuper})
		if len(en.poster.posts) != 8 {
			t.Fatalf("expected a second throw, got %d posts", len(en.poster.posts))
		}
	})

	t.Run("inactive activates into mirror", func(t *testing.T) {
		e, en := newQuadEngine(t)
		e.ProcessInput(input.Event{Kind: input.Hotkey, Code: keyZ, Mods: input.ModSuper})
		if !e.Active() || e.Mode() != ModeMirrorAll {
			t.Fatalf("active=%v mode=%v", e.Active(), e.Mode())
		}
		if len(en.poster.posts) != 8 {
			t.Fatalf("expected every window to throw, got %d posts", len(en.poster.posts))
		}
		if en.poster.to(4)[0].Code != keyInsert {
			t.Fatalf("right controller should use the right key")
		}
	})
}

func TestDigitGroupSelect(t *testing.T) {
	e, en := newQuadEngine(t)
	mustActivate(t, e)

	if !e.ProcessInput(press(key2)) {
		t.Fatalf("digit should be consumed in group mode")
	}
	if got := e.Status().Group; got != 2 {
		t.Fatalf("group = %d, want 2", got)
	}
	if !e.ProcessInput(press(key0)) {
		t.Fatalf("digit 0 should be consumed")
	}
	if got := e.Status().Group; got != 2 {
		t.Fatalf("missing group 10 must not change selection, got %d", got)
	}
	e.ProcessInput(press(key1))
	if got := e.Status().Group; got != 1 {
		t.Fatalf("group = %d, want 1", got)
	}
	if len(en.poster.posts) != 0 {
		t.Fatalf("group digits must not be forwarded")
	}

	e.SetMode(ModeMirrorAll)
	e.ProcessInput(press(key2))
	if got := e.Status().Group; got != 1 {
		t.Fatalf("digits only select groups in group mode, got %d", got)
	}
	if len(en.poster.posts) != 4 {
		t.Fatalf("digit should be mirrored, got %d posts", len(en.poster.posts))
	}
}

func TestKeypadDigitGroupSelect(t *testing.T) {
	const keyKP2 = 88
	opts := testOptions()
	opts.Digits[keyKP2] = 2
	e, en := newTestEngine(t, opts)
	en.windows.add(1, platform.Rect{Width: 10, Height: 10})
	en.windows.add(3, platform.Rect{Width: 10, Height: 10})
	e.Restore(controller.Snapshot{
		slot(1, 1, controller.Left): 1,
		slot(2, 1, controller.Left): 3,
	})
	mustActivate(t, e)

	// NumLock on: the keypad arrives with Mod2 set.
	if !e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyKP2, Mods: input.ModNumLock}) {
		t.Fatalf("keypad digit should be consumed in group mode")
	}
	if got := e.Status().Group; got != 2 {
		t.Fatalf("group = %d, want 2", got)
	}
}

func TestDigitWithOneGroupIsRouted(t *testing.T) {
	e, en := newTestEngine(t, testOptions())
	en.windows.add(1, platform.Rect{Width: 10, Height: 10})
	e.Restore(controller.Snapshot{slot(1, 1, controller.Left): 1})
	mustActivate(t, e)

	if !e.ProcessInput(press(key2)) {
		t.Fatalf("active engine consumes routed keys")
	}
	if len(en.poster.posts) != 0 {
		t.Fatalf("unbound digit sends nothing in group mode, got %+v", en.poster.posts)
	}
}

func TestReleaseKey(t *testing.T) {
	e, en := newQuadEngine(t)
	mustActivate(t, e)
	if !e.ProcessInput(input.Event{Kind: input.KeyDown, Code: keyEscape, Mods: input.ModSuper}) {
		t.Fatalf("release key should be consumed")
	}
	if e.Active() || en.focus.released != 1 {
		t.Fatalf("active=%v released=%d", e.Active(), en.focus.released)
	}
}

func TestActivateFailure(t *testing.T) {
	e, en := newQuadEngine(t)
	en.focus.err = errors.New("already grabbed")
	if err := e.Activate(); err == nil {
		t.Fatalf("expected activation error")
	}
	if e.Active() {
		t.Fatalf("engine must stay inactive")
	}
}

func TestPostFailureReportedOnce(t *testing.T) {
	e, en := newQuadEngine(t)
	en.poster.fail[1] = errors.New("BadWindow")
	mustActivate(t, e)
	e.SetMode(ModeMirrorAll)

	e.ProcessInput(press(keyX))
	e.ProcessInput(press(keyX))
	if got := en.changes.count(ChangePostFailure); got != 1 {
		t.Fatalf("ChangePostFailure count = %d, want 1", got)
	}
	st := e.Status()
	if st.PostFailures != 1 {
		t.Fatalf("PostFailures = %d, want 1", st.PostFailures)
	}
	if !st.Groups[0].Controllers[0].PostError || st.Groups[0].Controllers[1].PostError {
		t.Fatalf("only controller 1 should be flagged: %+v", st.Groups[0].Controllers)
	}
	if len(en.poster.to(2)) != 2 {
		t.Fatalf("other windows still receive input")
	}
}

func TestGroupAddRemove(t *testing.T) {
	e, en := newQuadEngine(t)

	if n := e.AddGroup(); n != 3 {
		t.Fatalf("AddGroup = %d, want 3", n)
	}
	if err := e.SelectGroup(2); err != nil {
		t.Fatalf("SelectGroup: %v", err)
	}
	if err := e.RemoveGroup(0); err != nil {
		t.Fatalf("RemoveGroup: %v", err)
	}
	st := e.Status()
	if len(st.Groups) != 2 || st.Group != 2 {
		t.Fatalf("groups=%d current=%d, want 2 and 2", len(st.Groups), st.Group)
	}
	if st.Groups[0].Controllers[0].Window != 3 {
		t.Fatalf("group 2 should be renumbered to 1, got %+v", st.Groups[0])
	}
	if err := e.SelectGroup(5); !errors.Is(err, ErrNoSuchGroup) {
		t.Fatalf("SelectGroup(5) = %v, want ErrNoSuchGroup", err)
	}
	if err := e.RemoveGroup(9); !errors.Is(err, ErrNoSuchGroup) {
		t.Fatalf("RemoveGroup(9) = %v, want ErrNoSuchGroup", err)
	}
	if en.settings.saves == 0 {
		t.Fatalf("group changes should persist assignments")
	}
}

func TestRemoveOnlyGroupRejected(t *testing.T) {
	e, _ := newTestEngine(t, testOptions())
	if err := e.RemoveGroup(0); !errors.Is(err, ErrLastGroup) {
		t.Fatalf("RemoveGroup = %v, want ErrLastGroup", err)
	}
	if len(e.Status().Groups) != 1 {
		t.Fatalf("the only group must remain")
	}
}

func TestPruneDead(t *testing.T) {
	e, en := newQuadEngine(t)
	en.windows.dead[3] = true

	gone := e.PruneDead()
	if len(gone) != 1 || gone[0] != 3 {
		t.Fatalf("PruneDead = %v, want [3]", gone)
	}
	if e.Snapshot()[slot(2, 1, controller.Left)] != platform.NoWindow {
		t.Fatalf("dead window should be cleared")
	}
	if en.changes.count(ChangeGroups) != 1 {
		t.Fatalf("expected one ChangeGroups")
	}
	if len(e.PruneDead()) != 0 {
		t.Fatalf("second prune should find nothing")
	}
}

func TestRestoreSkipsDeadWindows(t *testing.T) {
	e, en := newTestEngine(t, testOptions())
	en.windows.add(7, platform.Rect{Width: 10, Height: 10})
	n := e.Restore(controller.Snapshot{
		slot(1, 1, controller.Left):  7,
		slot(3, 2, controller.Right): 8,
	})
	if n != 1 {
		t.Fatalf("Restore = %d, want 1", n)
	}
	if len(e.Status().Groups) != 1 {
		t.Fatalf("dead slots must not create groups")
	}
}

func focusedOrdinals(st Status) []int {
	var out []int
	for _, g := range st.Groups {
		for _, c := range g.Controllers {
			if c.Focused {
				out = append(out, c.Ordinal)
			}
		}
	}
	return out
}

func TestFocusTracking(t *testing.T) {
	e, en := newQuadEngine(t)

	if !e.SetFocusedWindow(2) {
		t.Fatalf("window 2 is managed")
	}
	if got := focusedOrdinals(e.Status()); len(got) != 1 || got[0] != 2 {
		t.Fatalf("focused = %v, want [2]", got)
	}
	if n := en.changes.count(ChangeFocus); n != 1 {
		t.Fatalf("ChangeFocus = %d, want 1", n)
	}

	// Moving between managed windows keeps the scope.
	e.SetFocusedWindow(3)
	if n := en.changes.count(ChangeFocus); n != 1 {
		t.Fatalf("ChangeFocus = %d after managed-to-managed, want 1", n)
	}

	if e.SetFocusedWindow(99) || e.ManagedWindowFocused() {
		t.Fatalf("window 99 is not managed")
	}
	if got := focusedOrdinals(e.Status()); len(got) != 0 {
		t.Fatalf("focused = %v, want none", got)
	}
	if n := en.changes.count(ChangeFocus); n != 2 {
		t.Fatalf("ChangeFocus = %d, want 2", n)
	}
}

func TestFocusFollowsAssignments(t *testing.T) {
	e, en := newQuadEngine(t)
	e.SetFocusedWindow(3)

	en.windows.dead[3] = true
	e.PruneDead()
	if e.ManagedWindowFocused() {
		t.Fatalf("pruned window cannot hold managed focus")
	}

	en.windows.add(5, platform.Rect{Width: 10, Height: 10})
	e.SetFocusedWindow(5)
	if e.ManagedWindowFocused() {
		t.Fatalf("window 5 is not assigned yet")
	}
	e.Restore(controller.Snapshot{slot(2, 1, controller.Left): 5})
	if !e.ManagedWindowFocused() {
		t.Fatalf("assigning the focused window should put it in scope")
	}
	if got := focusedOrdinals(e.Status()); len(got) != 1 || got[0] != 3 {
		t.Fatalf("focused = %v, want [3]", got)
	}
}

func TestChannelObserver(t *testing.T) {
	e, _ := newQuadEngine(t)
	obs := NewChannelObserver(1)
	e.Subscribe(obs)

	e.SetMode(ModeAllGroup)
	select {
	case c := <-obs.C:
		if c.Kind != ChangeMode || c.Mode != ModeAllGroup {
			t.Fatalf("change = %+v", c)
		}
	default:
		t.Fatalf("expected a change")
	}
	// The active set change was dropped because the buffer was full.
	select {
	case c := <-obs.C:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}
