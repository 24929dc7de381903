package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/multibox/internal/input"
)

func TestEncodeMessageCodes(t *testing.T) {
	tests := []struct {
		kind input.Kind
		code byte
	}{
		{input.KeyDown, codeKeyPress},
		{input.Hotkey, codeKeyPress},
		{input.KeyUp, codeKeyRelease},
		{input.ButtonDown, codeButtonPress},
		{input.ButtonUp, codeButtonRelease},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			ev, mask, err := encodeMessage(1, 2, Geometry{}, input.Message{Kind: tt.kind, Code: 38, Mods: input.ModShift, X: 5, Y: 6})
			if err != nil {
				t.Fatalf("encodeMessage: %v", err)
			}
			if len(ev) != 32 {
				t.Fatalf("event length = %d, want 32", len(ev))
			}
			if ev[0] != tt.code {
				t.Errorf("code = %d, want %d", ev[0], tt.code)
			}
			if mask == 0 {
				t.Errorf("mask should not be empty")
			}
		})
	}

	if _, _, err := encodeMessage(1, 2, Geometry{}, input.Message{Kind: input.PointerMove}); err == nil {
		t.Fatalf("pointer motion cannot be posted")
	}
}

func TestEncodeButtonRootPosition(t *testing.T) {
	origin := Geometry{X: 1920, Y: 40, Width: 800, Height: 600}
	raw, _, err := encodeMessage(1, 2, origin, input.Message{Kind: input.ButtonDown, Code: 1, X: 15, Y: 25})
	if err != nil {
		t.Fatalf("encodeMessage: %v", err)
	}
	ev, ok := xproto.ButtonPressEventNew([]byte(raw)).(xproto.ButtonPressEvent)
	if !ok {
		t.Fatalf("decoded %T, want ButtonPressEvent", ev)
	}
	if ev.EventX != 15 || ev.EventY != 25 {
		t.Errorf("event pos = %d,%d, want 15,25", ev.EventX, ev.EventY)
	}
	if ev.RootX != 1935 || ev.RootY != 65 {
		t.Errorf("root pos = %d,%d, want 1935,65", ev.RootX, ev.RootY)
	}
	if ev.Event != 2 || ev.Root != 1 {
		t.Errorf("event/root = 0x%x/0x%x, want 0x2/0x1", ev.Event, ev.Root)
	}
}

func TestApplyStruts(t *testing.T) {
	mon := Geometry{X: 1920, Y: 0, Width: 1920, Height: 1080}
	rs := rootStruts{
		rootWidth:  3840,
		rootHeight: 1080,
		docks: []*ewmh.WmStrutPartial{
			// Top panel spanning only the left monitor.
			{Top: 30, TopStartX: 0, TopEndX: 1919},
			// Bottom panel on the right monitor.
			{Bottom: 40, BottomStartX: 1920, BottomEndX: 3839},
		},
	}
	got := applyStruts(mon, rs)
	want := Geometry{X: 1920, Y: 0, Width: 1920, Height: 1040}
	if got != want {
		t.Fatalf("work = %+v, want %+v", got, want)
	}
}

func TestOverlap(t *testing.T) {
	a := Geometry{X: 0, Y: 0, Width: 100, Height: 100}
	if got := overlap(a, Geometry{X: 50, Y: 50, Width: 100, Height: 100}); got != (Geometry{X: 50, Y: 50, Width: 50, Height: 50}) {
		t.Fatalf("overlap = %+v", got)
	}
	if got := overlap(a, Geometry{X: 100, Y: 0, Width: 10, Height: 10}); got != (Geometry{}) {
		t.Fatalf("touching rects should not overlap, got %+v", got)
	}
	if !a.contains(0, 0) || a.contains(100, 50) {
		t.Fatalf("contains is half-open")
	}
}
