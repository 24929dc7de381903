package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/tiling"
)

// summarizePreset describes how tileCount windows fit into p.
func summarizePreset(p config.LayoutPreset, tileCount int) string {
	layout := p.Layout(tileCount, nil)
	if layout.Empty() {
		return "no tiles"
	}
	capacity := tiling.Capacity(p.Columns, p.Rows) * len(p.Regions)
	s := fmt.Sprintf("%d of %d windows placed • %d×%d px each",
		len(layout.Positions), tileCount, layout.CellSize.Width, layout.CellSize.Height)
	if tileCount > capacity {
		s += fmt.Sprintf(" • capacity %d", capacity)
	}
	return s
}

// renderPresetPreview draws p with tileCount windows on a width x height
// character canvas. Regions are scaled to fit their common bounding box.
func renderPresetPreview(p config.LayoutPreset, tileCount, width, height int) []string {
	if width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	regions := p.Rects(nil)
	bounds := boundingBox(regions)
	if bounds.Empty() {
		drawBorder(canvas, width, height)
		return canvasLines(canvas)
	}

	layout := tiling.CalculateGridLayout(tileCount, p.Columns, p.Rows, regions)
	for i := range layout.Positions {
		rect, _ := layout.At(i)
		rect.X -= bounds.X
		rect.Y -= bounds.Y
		drawTile(canvas, rect, i+1, bounds.Width, bounds.Height, width, height)
	}

	drawBorder(canvas, width, height)
	return canvasLines(canvas)
}

func boundingBox(rects []tiling.Rect) tiling.Rect {
	if len(rects) == 0 {
		return tiling.Rect{}
	}
	x1, y1 := rects[0].X, rects[0].Y
	x2, y2 := rects[0].X+rects[0].Width, rects[0].Y+rects[0].Height
	for _, r := range rects[1:] {
		x1 = min(x1, r.X)
		y1 = min(y1, r.Y)
		x2 = max(x2, r.X+r.Width)
		y2 = max(y2, r.Y+r.Height)
	}
	return tiling.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func drawTile(canvas [][]rune, rect tiling.Rect, num int, areaW, areaH, canvasW, canvasH int) {
	x1 := rect.X * canvasW / areaW
	y1 := rect.Y * canvasH / areaH
	x2 := (rect.X + rect.Width) * canvasW / areaW
	y2 := (rect.Y + rect.Height) * canvasH / areaH

	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)

	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 {
		label := fmt.Sprintf("%d", num)
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func canvasLines(canvas [][]rune) []string {
	lines := make([]string, len(canvas))
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func emptyCanvas(width, height int) []string {
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
