package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MoveResizeWindow places a window's client area at the given geometry.
// Maximized windows are restored first since most window managers ignore
// geometry requests for them.
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) error {
	c.unmaximizeWindow(win)

	if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, width, height); err != nil {
		// No EWMH support: configure the window directly.
		xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
	}
	return nil
}

// stateRemove is the _NET_WM_STATE action that clears a state.
const stateRemove = 0

func (c *Connection) unmaximizeWindow(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, win, stateRemove, state)
		}
	}
}

func (c *Connection) hasWindowType(win xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// IsNormalWindow reports whether win is an ordinary application window.
// Windows without a type are treated as normal.
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

// IsHidden reports whether win is minimized or fullscreen.
func (c *Connection) IsHidden(win xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN", "_NET_WM_STATE_FULLSCREEN":
			return true
		}
	}
	return false
}

// ClientRect returns the client area of win in root coordinates.
func (c *Connection) ClientRect(win xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("geometry of 0x%x: %w", uint32(win), err)
	}
	tr, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("translate 0x%x: %w", uint32(win), err)
	}
	return Geometry{
		X:      int(tr.DstX),
		Y:      int(tr.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// IsLive reports whether win still exists and is mapped.
func (c *Connection) IsLive(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// WindowClass returns the WM_CLASS instance and class of win.
func (c *Connection) WindowClass(win xproto.Window) (instance, class string) {
	wmClass, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(wmClass.Instance), strings.TrimSpace(wmClass.Class)
}

// WindowPID returns _NET_WM_PID, or 0 when the client does not set it.
func (c *Connection) WindowPID(win xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, win)
	if err != nil {
		return 0
	}
	return int(pid)
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, win); err == nil && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// ActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
