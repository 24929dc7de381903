package tiling

// BorderCompensation corrects for the invisible resize margin most window
// managers add around decorated windows. Cells are shifted left by this
// amount and the reported size grows to cover the margin on both sides.
const BorderCompensation = 7

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Point is a top-left window origin.
type Point struct {
	X int
	Y int
}

// Size is a uniform window size.
type Size struct {
	Width  int
	Height int
}

// GridLayout is the result of packing windows into regions.
type GridLayout struct {
	CellSize  Size
	Positions []Point
}

// Empty reports whether no window received a position.
func (g GridLayout) Empty() bool {
	return len(g.Positions) == 0
}

// At returns the rectangle for the i-th window, if it was placed.
func (g GridLayout) At(i int) (Rect, bool) {
	if i < 0 || i >= len(g.Positions) {
		return Rect{}, false
	}
	p := g.Positions[i]
	return Rect{X: p.X, Y: p.Y, Width: g.CellSize.Width, Height: g.CellSize.Height}, true
}

// Capacity returns how many windows one region of the grid holds.
func Capacity(columns, rows int) int {
	if columns <= 0 || rows <= 0 {
		return 0
	}
	return columns * rows
}

// CalculateGridLayout packs windowCount windows row-major into a columns x
// rows grid, filling regions in order. The reported size comes from the
// first region's cell size only. Windows beyond the total capacity get no
// position.
func CalculateGridLayout(windowCount, columns, rows int, regions []Rect) GridLayout {
	if windowCount <= 0 || columns <= 0 || rows <= 0 || len(regions) == 0 {
		return GridLayout{}
	}

	first := regions[0]
	cellWidth := first.Width / columns
	cellHeight := first.Height / rows

	layout := GridLayout{
		CellSize: Size{
			Width:  cellWidth + 2*BorderCompensation + 1,
			Height: cellHeight + BorderCompensation + 1,
		},
	}

	perRegion := Capacity(columns, rows)
	positions := make([]Point, 0, min(windowCount, perRegion*len(regions)))

	for _, region := range regions {
		regionCellWidth := region.Width / columns
		regionCellHeight := region.Height / rows

		for i := 0; i < perRegion && len(positions) < windowCount; i++ {
			row := i / columns
			col := i % columns

			positions = append(positions, Point{
				X: region.X + col*regionCellWidth - BorderCompensation,
				Y: region.Y + row*regionCellHeight,
			})
		}
		if len(positions) == windowCount {
			break
		}
	}

	layout.Positions = positions
	return layout
}
