package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// stickyDesktop is the _NET_WM_DESKTOP value of windows shown on every
// desktop.
const stickyDesktop = 0xFFFFFFFF

// CurrentDesktop returns the current virtual desktop (0-indexed).
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// onDesktop reports whether win is visible on desktop. Windows without a
// desktop hint are assumed visible.
func (c *Connection) onDesktop(win xproto.Window, desktop int) bool {
	d, err := ewmh.WmDesktopGet(c.XUtil, win)
	if err != nil {
		return true
	}
	return d == stickyDesktop || int(d) == desktop
}

// VisibleClients returns the normal, unhidden client windows of the current
// desktop in stacking order, topmost first.
func (c *Connection) VisibleClients() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		// Some window managers only publish _NET_CLIENT_LIST.
		if clients, err = ewmh.ClientListGet(c.XUtil); err != nil {
			return nil, fmt.Errorf("failed to get client list: %w", err)
		}
	}
	desktop, derr := c.CurrentDesktop()

	out := make([]xproto.Window, 0, len(clients))
	for i := len(clients) - 1; i >= 0; i-- {
		win := clients[i]
		if !c.IsNormalWindow(win) || c.IsHidden(win) {
			continue
		}
		if derr == nil && !c.onDesktop(win, desktop) {
			continue
		}
		out = append(out, win)
	}
	return out, nil
}

// TopLevelAt returns the topmost visible client whose client area contains
// the root point, or 0 when there is none.
func (c *Connection) TopLevelAt(x, y int) (xproto.Window, error) {
	clients, err := c.VisibleClients()
	if err != nil {
		return 0, err
	}
	for _, win := range clients {
		g, err := c.ClientRect(win)
		if err != nil {
			continue
		}
		if g.contains(x, y) {
			return win, nil
		}
	}
	return 0, nil
}

// PointerPosition returns the pointer in root coordinates.
func (c *Connection) PointerPosition() (int, int, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("query pointer: %w", err)
	}
	return int(reply.RootX), int(reply.RootY), nil
}
