package tiling

import "testing"

func TestCalculateGridLayout_EmptyInputs(t *testing.T) {
	full := []Rect{{X: 0, Y: 0, Width: 1920, Height: 1080}}

	tests := []struct {
		name    string
		count   int
		cols    int
		rows    int
		regions []Rect
	}{
		{"zero windows", 0, 4, 2, full},
		{"zero windows no regions", 0, 0, 0, nil},
		{"zero columns", 3, 0, 2, full},
		{"negative rows", 3, 2, -1, full},
		{"no regions", 3, 2, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGridLayout(tt.count, tt.cols, tt.rows, tt.regions)
			if !got.Empty() {
				t.Fatalf("expected empty layout, got %+v", got)
			}
			if got.CellSize != (Size{}) {
				t.Fatalf("expected zero size, got %+v", got.CellSize)
			}
		})
	}
}

func TestCalculateGridLayout_SingleRegion(t *testing.T) {
	layout := CalculateGridLayout(5, 4, 2, []Rect{{X: 0, Y: 0, Width: 1920, Height: 1080}})

	if layout.CellSize.Width != 495 || layout.CellSize.Height != 548 {
		t.Fatalf("expected size 495x548, got %dx%d", layout.CellSize.Width, layout.CellSize.Height)
	}
	if len(layout.Positions) != 5 {
		t.Fatalf("expected 5 positions, got %d", len(layout.Positions))
	}

	want := []Point{
		{X: -7, Y: 0},
		{X: 473, Y: 0},
		{X: 953, Y: 0},
		{X: 1433, Y: 0},
		{X: -7, Y: 540},
	}
	for i, p := range want {
		if layout.Positions[i] != p {
			t.Errorf("position[%d] = %+v, want %+v", i, layout.Positions[i], p)
		}
	}
}

func TestCalculateGridLayout_SpillsIntoNextRegion(t *testing.T) {
	regions := []Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 2560, Height: 1440},
	}
	layout := CalculateGridLayout(9, 4, 2, regions)

	if len(layout.Positions) != 9 {
		t.Fatalf("expected 9 positions, got %d", len(layout.Positions))
	}
	p := layout.Positions[8]
	if p.X != 1920-BorderCompensation || p.Y != 0 {
		t.Fatalf("expected position[8] at region 2 origin, got %+v", p)
	}
	second := regions[1]
	if !second.Contains(p.X+BorderCompensation, p.Y) {
		t.Fatalf("position[8] %+v not inside region 2 %+v", p, second)
	}

	// Reported size still comes from the first region.
	if layout.CellSize.Width != 495 || layout.CellSize.Height != 548 {
		t.Fatalf("expected size from first region, got %+v", layout.CellSize)
	}

	// Region 2 uses its own cell size for offsets.
	more := CalculateGridLayout(10, 4, 2, regions)
	if more.Positions[9].X != 1920+640-BorderCompensation {
		t.Fatalf("expected position[9].X=%d, got %d", 1920+640-BorderCompensation, more.Positions[9].X)
	}
}

func TestCalculateGridLayout_ExcessWindowsGetNoPosition(t *testing.T) {
	layout := CalculateGridLayout(5, 2, 1, []Rect{{X: 0, Y: 0, Width: 800, Height: 600}})
	if len(layout.Positions) != 2 {
		t.Fatalf("expected 2 positions for capacity 2, got %d", len(layout.Positions))
	}
	if _, ok := layout.At(2); ok {
		t.Fatalf("window beyond capacity should not be placed")
	}
	r, ok := layout.At(1)
	if !ok {
		t.Fatalf("expected window 1 to be placed")
	}
	if r.X != 400-BorderCompensation || r.Width != 400+2*BorderCompensation+1 {
		t.Fatalf("unexpected rect for window 1: %+v", r)
	}
}

func TestCapacity(t *testing.T) {
	if got := Capacity(4, 2); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
	if got := Capacity(0, 2); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
