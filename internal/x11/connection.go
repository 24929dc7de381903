package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection is one client connection to the X server plus the root window
// every grab and query is made against.
type Connection struct {
	XUtil   *xgbutil.XUtil
	Root    xproto.Window
	Display string
}

// Open connects to display, or to $DISPLAY when display is empty, and
// prepares the keybind and mousebind tables the grabber relies on.
func Open(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		if display == "" {
			return nil, fmt.Errorf("connect to X server: %w", err)
		}
		return nil, fmt.Errorf("connect to X server %s: %w", display, err)
	}
	keybind.Initialize(xu)
	mousebind.Initialize(xu)
	return &Connection{XUtil: xu, Root: xu.RootWin(), Display: display}, nil
}

// Flush waits until the server has processed every request sent so far.
func (c *Connection) Flush() {
	xproto.GetInputFocus(c.XUtil.Conn()).Reply()
}

// EventLoop dispatches events until Quit is called or the connection drops.
func (c *Connection) EventLoop() { xevent.Main(c.XUtil) }

// Quit makes EventLoop return.
func (c *Connection) Quit() { xevent.Quit(c.XUtil) }

// Close drops the connection.
func (c *Connection) Close() { c.XUtil.Conn().Close() }
