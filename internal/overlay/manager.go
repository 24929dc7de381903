package overlay

import (
	"strconv"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/multibox/internal/tiling"
)

// DefaultThickness is the border width in pixels.
const DefaultThickness = 4

const (
	labelPaddingX = 6
	labelPaddingY = 4
	labelCharW    = 7
	labelLineH    = 14
)

// border is a rectangular outline made of four thin windows.
type border struct {
	bars   [4]xproto.Window
	mapped bool
}

// label is a small text panel anchored inside a border.
type label struct {
	window xproto.Window
	mapped bool
}

// Manager renders published states as override-redirect windows. It is safe
// for concurrent use.
type Manager struct {
	xu        *xgbutil.XUtil
	root      xproto.Window
	colors    Colors
	thickness int

	mu      sync.Mutex
	borders []*border
	labels  []*label
	gc      xproto.Gcontext
	font    xproto.Font
	noText  bool
	last    []Border
}

// NewManager returns a manager drawing with colors. thickness <= 0 uses
// DefaultThickness.
func NewManager(xu *xgbutil.XUtil, root xproto.Window, colors Colors, thickness int) *Manager {
	if thickness <= 0 {
		thickness = DefaultThickness
	}
	return &Manager{xu: xu, root: root, colors: colors, thickness: thickness}
}

// SetColors replaces the palette, for config reloads.
func (m *Manager) SetColors(colors Colors, thickness int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colors = colors
	if thickness > 0 {
		m.thickness = thickness
	}
	m.last = nil
}

// Publish draws s, reusing windows from the previous frame.
func (m *Manager) Publish(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	borders := m.colors.Borders(s)
	if sameBorders(borders, m.last) {
		return
	}
	m.last = borders

	if err := m.ensureBorders(len(borders)); err != nil {
		return
	}
	for i, b := range borders {
		m.showBorder(m.borders[i], b.Rect, b.Color)
	}

	var labelled []Border
	for _, b := range borders {
		if b.Label != "" {
			labelled = append(labelled, b)
		}
	}
	m.renderLabels(labelled)
}

// Cleanup destroys every overlay window.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn := m.xu.Conn()
	for _, b := range m.borders {
		for _, w := range b.bars {
			xproto.DestroyWindow(conn, w)
		}
	}
	for _, l := range m.labels {
		xproto.DestroyWindow(conn, l.window)
	}
	if m.gc != 0 {
		xproto.FreeGC(conn, m.gc)
	}
	if m.font != 0 {
		xproto.CloseFont(conn, m.font)
	}
	m.borders, m.labels, m.last = nil, nil, nil
	m.gc, m.font = 0, 0
}

func (m *Manager) ensureBorders(n int) error {
	for i := n; i < len(m.borders); i++ {
		m.hideBorder(m.borders[i])
	}
	for len(m.borders) < n {
		b := &border{}
		for i := range b.bars {
			w, err := m.createWindow()
			if err != nil {
				return err
			}
			b.bars[i] = w
		}
		m.borders = append(m.borders, b)
	}
	return nil
}

func (m *Manager) showBorder(b *border, r tiling.Rect, color uint32) {
	for i, bar := range borderBars(r, m.thickness) {
		m.updateWindow(b.bars[i], bar, color)
		xproto.MapWindow(m.xu.Conn(), b.bars[i])
	}
	b.mapped = true
}

func (m *Manager) hideBorder(b *border) {
	if !b.mapped {
		return
	}
	for _, w := range b.bars {
		xproto.UnmapWindow(m.xu.Conn(), w)
	}
	b.mapped = false
}

// borderBars splits r into top, bottom, left and right bars of width t.
func borderBars(r tiling.Rect, t int) [4]tiling.Rect {
	return [4]tiling.Rect{
		{X: r.X, Y: r.Y, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + r.Height - t, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
		{X: r.X + r.Width - t, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
	}
}

// labelRect places a label for text just inside the top-left corner of r.
func labelRect(r tiling.Rect, text string, t int) tiling.Rect {
	return tiling.Rect{
		X:      r.X + t,
		Y:      r.Y + t,
		Width:  len(text)*labelCharW + 2*labelPaddingX,
		Height: labelLineH + 2*labelPaddingY,
	}
}

func (m *Manager) renderLabels(borders []Border) {
	conn := m.xu.Conn()
	for i := len(borders); i < len(m.labels); i++ {
		if m.labels[i].mapped {
			xproto.UnmapWindow(conn, m.labels[i].window)
			m.labels[i].mapped = false
		}
	}
	if len(borders) == 0 || !m.ensureText() {
		return
	}

	for len(m.labels) < len(borders) {
		w, err := m.createWindow()
		if err != nil {
			return
		}
		m.labels = append(m.labels, &label{window: w})
	}

	xproto.ChangeGC(conn, m.gc, xproto.GcForeground|xproto.GcBackground,
		[]uint32{m.colors.Label, m.colors.LabelBg})
	for i, b := range borders {
		l := m.labels[i]
		text := b.Label
		if len(text) > 255 {
			text = text[:255]
		}
		m.updateWindow(l.window, labelRect(b.Rect, text, m.thickness), m.colors.LabelBg)
		xproto.MapWindow(conn, l.window)
		xproto.ImageText8(conn, byte(len(text)), xproto.Drawable(l.window), m.gc,
			int16(labelPaddingX), int16(labelPaddingY+labelLineH-3), text)
		l.mapped = true
	}
}

// ensureText opens a core font and graphics context for labels. If no font
// can be opened, labels are disabled for the manager's lifetime.
func (m *Manager) ensureText() bool {
	if m.noText {
		return false
	}
	if m.gc != 0 {
		return true
	}
	conn := m.xu.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		m.noText = true
		return false
	}
	opened := false
	for _, name := range []string{"fixed", "9x15", "8x13", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		m.noText = true
		return false
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		m.noText = true
		return false
	}
	err = xproto.CreateGCChecked(conn, gc, xproto.Drawable(m.root),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{m.colors.Label, m.colors.LabelBg, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		m.noText = true
		return false
	}
	m.gc, m.font = gc, font
	return true
}

func (m *Manager) createWindow() (xproto.Window, error) {
	conn := m.xu.Conn()
	screen := m.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	// Values follow mask bit order: back_pixel, then override_redirect.
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, wid, m.root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		[]uint32{0, 1},
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

func (m *Manager) updateWindow(wid xproto.Window, r tiling.Rect, color uint32) {
	conn := m.xu.Conn()
	xproto.ConfigureWindow(conn, wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(int32(r.X)),
			uint32(int32(r.Y)),
			uint32(max(r.Width, 1)),
			uint32(max(r.Height, 1)),
			xproto.StackModeAbove,
		},
	)
	xproto.ChangeWindowAttributes(conn, wid, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}

func sameBorders(a, b []Border) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ordinalLabel renders a controller ordinal.
func ordinalLabel(n int) string {
	return strconv.Itoa(n)
}
