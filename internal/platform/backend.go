package platform

import (
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/tiling"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// NoWindow marks an unassigned controller slot.
const NoWindow WindowID = 0

// Rect describes a rectangular region in screen coordinates.
type Rect = tiling.Rect

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID       WindowID
	PID      int
	AppID    string // WM_CLASS class
	Instance string // WM_CLASS instance
	Exe      string // process name from /proc/<pid>/comm
	Title    string
	Bounds   Rect
}

// Backend abstracts window-system operations. It satisfies the engine's
// Poster and Windows ports.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (WindowID, error)
	// ListWindows returns normal, visible windows on the current desktop in
	// stacking order, topmost first, with their identifying metadata.
	ListWindows() ([]Window, error)
	// VisibleWindows is ListWindows without the metadata lookups.
	VisibleWindows() ([]WindowID, error)
	ClientRect(id WindowID) (Rect, error)
	PointerPosition() (x, y int, err error)
	TopLevelAt(x, y int) (WindowID, error)
	IsLive(id WindowID) bool
	MoveResize(id WindowID, bounds Rect) error
	Post(id WindowID, msg input.Message) error
}
