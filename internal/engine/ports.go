package engine

import (
	"log/slog"
	"time"

	"github.com/1broseidon/multibox/internal/actionlog"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/input"
	"github.com/1broseidon/multibox/internal/overlay"
	"github.com/1broseidon/multibox/internal/platform"
)

// Poster delivers a synthesized input message to a window. Delivery is
// fire-and-forget; an error means the message could not be queued.
type Poster interface {
	Post(id platform.WindowID, msg input.Message) error
}

// Windows is the window-system access the engine needs.
type Windows interface {
	PointerPosition() (x, y int, err error)
	ClientRect(id platform.WindowID) (platform.Rect, error)
	// TopLevelAt returns the topmost normal window containing the point.
	TopLevelAt(x, y int) (platform.WindowID, error)
	// VisibleWindows lists normal, mapped windows on the current desktop.
	VisibleWindows() ([]platform.WindowID, error)
	IsLive(id platform.WindowID) bool
	MoveResize(id platform.WindowID, bounds platform.Rect) error
	Displays() ([]platform.Display, error)
}

// Overlay renders border highlights.
type Overlay interface {
	Publish(overlay.State)
}

// Focus owns the keyboard while the engine is active.
type Focus interface {
	Acquire() error
	Release()
}

// Release undoes an installed hook.
type Release = func()

// PointerHook installs a global pointer grab for the switching session.
type PointerHook interface {
	Install() (Release, error)
}

// Ticker runs fn every interval until stop is called. stop must not wait for
// a running fn to return.
type Ticker interface {
	Start(interval time.Duration, fn func()) (stop func())
}

// Clock sleeps between geometry polls.
type Clock interface {
	Sleep(d time.Duration)
}

// Settings persists runtime choices.
type Settings interface {
	SaveLastPreset(n int) error
	SaveLayoutPriority(p controller.Priority) error
	SaveAssignments(r *controller.Roster) error
}

// Recorder writes the action log.
type Recorder interface {
	Log(action actionlog.Action, session string, ordinal int, details map[string]any)
}

// Deps are the engine's collaborators. Poster and Windows are required; the
// rest default to no-ops, a time based ticker and clock, and slog.Default.
type Deps struct {
	Poster   Poster
	Windows  Windows
	Overlay  Overlay
	Focus    Focus
	Hook     PointerHook
	Ticker   Ticker
	Clock    Clock
	Settings Settings
	Recorder Recorder
	Logger   *slog.Logger
}

func (d *Deps) fill() {
	if d.Overlay == nil {
		d.Overlay = nopOverlay{}
	}
	if d.Focus == nil {
		d.Focus = nopFocus{}
	}
	if d.Hook == nil {
		d.Hook = nopHook{}
	}
	if d.Ticker == nil {
		d.Ticker = TimeTicker{}
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Settings == nil {
		d.Settings = nopSettings{}
	}
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
}

// TimeTicker runs callbacks on a time.Ticker goroutine.
type TimeTicker struct{}

func (TimeTicker) Start(interval time.Duration, fn func()) func() {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fn()
			}
		}
	}()
	return func() {
		t.Stop()
		close(done)
	}
}

// SystemClock sleeps with time.Sleep.
type SystemClock struct{}

func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

type nopOverlay struct{}

func (nopOverlay) Publish(overlay.State) {}

type nopFocus struct{}

func (nopFocus) Acquire() error { return nil }
func (nopFocus) Release()       {}

type nopHook struct{}

func (nopHook) Install() (Release, error) { return func() {}, nil }

type nopSettings struct{}

func (nopSettings) SaveLastPreset(int) error                     { return nil }
func (nopSettings) SaveLayoutPriority(controller.Priority) error { return nil }
func (nopSettings) SaveAssignments(*controller.Roster) error     { return nil }

type nopRecorder struct{}

func (nopRecorder) Log(actionlog.Action, string, int, map[string]any) {}
