//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a backend over an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// OpenLinuxBackend connects to display, or $DISPLAY when it is empty.
func OpenLinuxBackend(display string) (*LinuxBackend, error) {
	conn, err := x11.Open(display)
	if err != nil {
		return nil, err
	}
	return &LinuxBackend{conn: conn}, nil
}

// Connection returns the underlying X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	return b.conn
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop runs the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// XUtil returns the underlying xgbutil connection.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays ordered by RandR CRTC.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.Monitors()
	if err != nil {
		return nil, err
	}
	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: rectOf(m.Bounds),
			Usable: rectOf(m.Work),
		})
	}
	return displays, nil
}

// ActiveWindow returns the focused window.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	win, err := b.conn.ActiveWindow()
	if err != nil {
		return NoWindow, err
	}
	return WindowID(win), nil
}

// WatchActiveWindow reports focus changes to fn, starting with the window
// focused now.
func (b *LinuxBackend) WatchActiveWindow(fn func(WindowID)) error {
	return b.conn.WatchActiveWindow(func(win xproto.Window) {
		fn(WindowID(win))
	})
}

// ListWindows returns visible client windows with WM_CLASS, PID and the
// process name.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	clients, err := b.conn.VisibleClients()
	if err != nil {
		return nil, err
	}
	windows := make([]Window, 0, len(clients))
	for _, win := range clients {
		rect, err := b.conn.ClientRect(win)
		if err != nil {
			continue
		}
		instance, class := b.conn.WindowClass(win)
		pid := b.conn.WindowPID(win)
		windows = append(windows, Window{
			ID:       WindowID(win),
			PID:      pid,
			AppID:    class,
			Instance: instance,
			Exe:      processName(pid),
			Title:    b.conn.WindowTitle(win),
			Bounds:   rectOf(rect),
		})
	}
	return windows, nil
}

// VisibleWindows returns the visible client windows, topmost first.
func (b *LinuxBackend) VisibleWindows() ([]WindowID, error) {
	clients, err := b.conn.VisibleClients()
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, len(clients))
	for i, win := range clients {
		out[i] = WindowID(win)
	}
	return out, nil
}

// ClientRect returns the client area of id in root coordinates.
func (b *LinuxBackend) ClientRect(id WindowID) (Rect, error) {
	g, err := b.conn.ClientRect(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return rectOf(g), nil
}

// PointerPosition returns the pointer in root coordinates.
func (b *LinuxBackend) PointerPosition() (int, int, error) {
	return b.conn.PointerPosition()
}

// TopLevelAt returns the topmost visible client containing the point.
func (b *LinuxBackend) TopLevelAt(x, y int) (WindowID, error) {
	win, err := b.conn.TopLevelAt(x, y)
	if err != nil {
		return NoWindow, err
	}
	return WindowID(win), nil
}

// IsLive reports whether id still exists and is mapped.
func (b *LinuxBackend) IsLive(id WindowID) bool {
	if id == NoWindow {
		return false
	}
	return b.conn.IsLive(xproto.Window(id))
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(id WindowID, bounds Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(id), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

// Post sends msg to id as a synthetic event.
func (b *LinuxBackend) Post(id WindowID, msg input.Message) error {
	return b.conn.Post(xproto.Window(id), msg)
}

func rectOf(g x11.Geometry) Rect {
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// processName reads /proc/<pid>/comm.
func processName(pid int) string {
	if pid <= 0 {
		return ""
	}
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
