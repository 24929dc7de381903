package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor is one active RandR CRTC. Work is the part of the monitor not
// reserved by docks and panels.
type Monitor struct {
	ID     int
	Name   string
	Bounds Geometry
	Work   Geometry
}

// Geometry is a rectangle in root coordinates.
type Geometry struct {
	X, Y, Width, Height int
}

func (g Geometry) contains(x, y int) bool {
	return x >= g.X && x < g.X+g.Width && y >= g.Y && y < g.Y+g.Height
}

// Monitors lists active monitors in CRTC order.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		bounds := Geometry{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)}
		monitors = append(monitors, Monitor{ID: i, Name: name, Bounds: bounds, Work: bounds})
	}

	struts, ok := c.dockStruts()
	for i := range monitors {
		m := &monitors[i]
		if ok {
			m.Work = applyStruts(m.Bounds, struts)
			continue
		}
		m.Work = c.workAreaWithin(m.Bounds)
	}
	return monitors, nil
}

type rootStruts struct {
	rootWidth, rootHeight int
	docks                 []*ewmh.WmStrutPartial
}

// dockStruts collects the struts of every dock window. It reports false when
// no dock reserves space.
func (c *Connection) dockStruts() (rootStruts, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return rootStruts{}, false
	}
	rs := rootStruts{rootWidth: int(geom.Width), rootHeight: int(geom.Height)}

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return rootStruts{}, false
	}
	for _, win := range clients {
		if !c.hasWindowType(win, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			rs.docks = append(rs.docks, sp)
			continue
		}
		// Some docks only set _NET_WM_STRUT.
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			rs.docks = append(rs.docks, &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rs.rootHeight - 1),
				RightEndY:  uint(rs.rootHeight - 1),
				TopEndX:    uint(rs.rootWidth - 1),
				BottomEndX: uint(rs.rootWidth - 1),
			})
		}
	}
	return rs, len(rs.docks) > 0
}

func applyStruts(mon Geometry, rs rootStruts) Geometry {
	var left, right, top, bottom int
	for _, sp := range rs.docks {
		if sp.Top > 0 {
			top = max(top, overlap(mon, Geometry{X: int(sp.TopStartX), Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top)}).Height)
		}
		if sp.Bottom > 0 {
			r := Geometry{X: int(sp.BottomStartX), Y: rs.rootHeight - int(sp.Bottom), Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom)}
			bottom = max(bottom, overlap(mon, r).Height)
		}
		if sp.Left > 0 {
			left = max(left, overlap(mon, Geometry{Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1}).Width)
		}
		if sp.Right > 0 {
			r := Geometry{X: rs.rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1}
			right = max(right, overlap(mon, r).Width)
		}
	}

	work := Geometry{
		X:      mon.X + left,
		Y:      mon.Y + top,
		Width:  max(mon.Width-left-right, 1),
		Height: max(mon.Height-top-bottom, 1),
	}
	return work
}

// workAreaWithin intersects mon with _NET_WORKAREA for the current desktop.
func (c *Connection) workAreaWithin(mon Geometry) Geometry {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return mon
	}
	idx := 0
	if d, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(d) < len(areas) {
		idx = int(d)
	}
	wa := areas[idx]
	isect := overlap(mon, Geometry{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)})
	if isect.Width == 0 || isect.Height == 0 {
		return mon
	}
	return isect
}

func overlap(a, b Geometry) Geometry {
	x1, y1 := max(a.X, b.X), max(a.Y, b.Y)
	x2, y2 := min(a.X+a.Width, b.X+b.Width), min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Geometry{}
	}
	return Geometry{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
