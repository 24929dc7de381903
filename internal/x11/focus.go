package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WatchActiveWindow calls fn with the current _NET_ACTIVE_WINDOW and again
// each time the window manager changes it. fn runs on the event loop and
// receives 0 when nothing has focus.
func (c *Connection) WatchActiveWindow(fn func(xproto.Window)) error {
	atom, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("intern _NET_ACTIVE_WINDOW: %w", err)
	}
	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("listen for root property changes: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != atom {
			return
		}
		fn(activeOrNone(xu))
	}).Connect(c.XUtil, c.Root)

	fn(activeOrNone(c.XUtil))
	return nil
}

func activeOrNone(xu *xgbutil.XUtil) xproto.Window {
	win, err := ewmh.ActiveWindowGet(xu)
	if err != nil {
		return 0
	}
	return win
}
