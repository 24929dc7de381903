package overlay

import (
	"testing"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/tiling"
)

func testColors(t *testing.T) Colors {
	t.Helper()
	c, err := ParseColors(config.DefaultConfig().Overlay.Colors)
	if err != nil {
		t.Fatalf("ParseColors: %v", err)
	}
	return c
}

func TestParseColorsRejectsBadValue(t *testing.T) {
	colors := config.DefaultConfig().Overlay.Colors
	colors.Switched = "purple"
	if _, err := ParseColors(colors); err == nil {
		t.Fatalf("expected error for bad color")
	}
}

func TestBordersSession(t *testing.T) {
	c := testColors(t)
	rect := tiling.Rect{Width: 100, Height: 100}
	s := State{
		Session: true,
		Highlights: []Highlight{
			{Ordinal: 1, Class: ClassNone, Bounds: rect},
			{Ordinal: 2, Class: ClassSelected, Bounds: rect},
			{Ordinal: 3, Class: ClassSwitched, Bounds: rect},
			{Ordinal: 4, Class: ClassMarked, Bounds: rect},
			{Ordinal: 5, Class: ClassMarked},
		},
	}
	got := c.Borders(s)
	want := []uint32{c.Session, c.Selected, c.Switched, c.Marked}
	if len(got) != len(want) {
		t.Fatalf("got %d borders, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Color != want[i] {
			t.Errorf("border[%d].Color = %06x, want %06x", i, got[i].Color, want[i])
		}
	}
	if got[3].Label != "4" {
		t.Errorf("label = %q, want 4", got[3].Label)
	}
}

func TestBordersOutsideSession(t *testing.T) {
	c := testColors(t)
	rect := tiling.Rect{Width: 10, Height: 10}
	highlights := []Highlight{
		{Ordinal: 1, Role: controller.Left, Bounds: rect, InActiveSet: true},
		{Ordinal: 2, Role: controller.Right, Bounds: rect, InActiveSet: true},
		{Ordinal: 3, Role: controller.Left, Bounds: rect},
	}

	tests := []struct {
		name  string
		state State
		want  []uint32
	}{
		{"inactive draws nothing", State{Mode: config.ModeGroup, Highlights: highlights}, nil},
		{"group uses role colors", State{Active: true, Mode: config.ModeGroup, Highlights: highlights}, []uint32{c.LeftGroup, c.RightGroup}},
		{"mirror uses all groups", State{Active: true, Mode: config.ModeMirrorAll, Highlights: highlights}, []uint32{c.AllGroups, c.AllGroups}},
		{"flash wins", State{Active: true, Flash: true, Mode: config.ModeGroup, Highlights: highlights}, []uint32{c.MultiClick, c.MultiClick}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Borders(tt.state)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d borders, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].Color != tt.want[i] {
					t.Errorf("border[%d].Color = %06x, want %06x", i, got[i].Color, tt.want[i])
				}
				if got[i].Label != "" {
					t.Errorf("border[%d] has label %q outside session", i, got[i].Label)
				}
			}
		})
	}
}
