package x11

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/multibox/internal/input"
)

// ErrPointerGrabbed is returned when a second pointer grab is requested
// before the first is released.
var ErrPointerGrabbed = errors.New("pointer already grabbed")

// Sink receives events captured by a grab. It reports whether the event was
// consumed.
type Sink func(input.Event) bool

// Grabber owns the keyboard grab used while the engine is active and the
// pointer grab used during a switching session. Captured events are
// delivered to the sink on the xevent loop goroutine.
type Grabber struct {
	conn *Connection
	sink Sink

	mu       sync.Mutex
	window   xproto.Window
	keyboard bool
	pointer  bool
}

// NewGrabber creates the InputOnly window that grabbed events are routed to.
func NewGrabber(conn *Connection, sink Sink) (*Grabber, error) {
	g := &Grabber{conn: conn, sink: sink}
	if err := g.createWindow(); err != nil {
		return nil, fmt.Errorf("create grab window: %w", err)
	}

	xu := conn.XUtil
	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		if g.holdsKeyboard() {
			g.sink(keyEvent(input.KeyDown, ev.Detail, ev.State))
		}
	}).Connect(xu, g.window)
	xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		if g.holdsKeyboard() {
			g.sink(keyEvent(input.KeyUp, ev.Detail, ev.State))
		}
	}).Connect(xu, g.window)
	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if g.holdsPointer() {
			g.sink(buttonEvent(input.ButtonDown, ev.Detail, ev.State, ev.RootX, ev.RootY))
		}
	}).Connect(xu, g.window)
	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if g.holdsPointer() {
			g.sink(buttonEvent(input.ButtonUp, ev.Detail, ev.State, ev.RootX, ev.RootY))
		}
	}).Connect(xu, g.window)
	return g, nil
}

func (g *Grabber) createWindow() error {
	conn := g.conn.XUtil.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	// InputOnly windows never draw; this one only anchors grab callbacks.
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth must be 0 for InputOnly
		wid,
		g.conn.Root,
		-1, -1, 1, 1, 0,
		xproto.WindowClassInputOnly,
		xproto.Visualid(0),
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{1, uint32(xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease)},
	).Check()
	if err != nil {
		return err
	}
	xproto.MapWindow(conn, wid)
	g.window = wid
	return nil
}

func (g *Grabber) holdsKeyboard() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.keyboard
}

func (g *Grabber) holdsPointer() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pointer
}

// Acquire grabs the keyboard. Every key event is then routed to the sink
// until Release.
func (g *Grabber) Acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keyboard {
		return nil
	}

	xu := g.conn.XUtil
	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(xu.Conn(), false, g.conn.Root,
			xproto.TimeCurrentTime, xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	}
	reply, err := grab()
	if err != nil {
		return err
	}
	// Activation from a passive hotkey grab finds the keyboard already
	// grabbed by this client.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		keybind.UngrabKeyboard(xu)
		if reply, err = grab(); err != nil {
			return err
		}
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}

	xevent.RedirectKeyEvents(xu, g.window)
	g.keyboard = true
	log.Println("Grab: keyboard grabbed")
	return nil
}

// Release drops the keyboard grab.
func (g *Grabber) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.keyboard {
		return
	}
	keybind.UngrabKeyboard(g.conn.XUtil)
	xevent.RedirectKeyEvents(g.conn.XUtil, 0)
	g.conn.Flush()
	g.keyboard = false
	log.Println("Grab: keyboard released")
}

// Install grabs the pointer. Button events go to the sink until the
// returned release func is called. Only one grab may be held at a time.
func (g *Grabber) Install() (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pointer {
		return nil, ErrPointerGrabbed
	}
	ok, err := mousebind.GrabPointer(g.conn.XUtil, g.window, xproto.WindowNone, xproto.CursorNone)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("pointer grab refused")
	}
	g.pointer = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			mousebind.UngrabPointer(g.conn.XUtil)
			g.pointer = false
		})
	}, nil
}

func keyEvent(kind input.Kind, code xproto.Keycode, state uint16) input.Event {
	return input.Event{Kind: kind, Code: uint32(code), Mods: input.Modifiers(state)}
}

func buttonEvent(kind input.Kind, button xproto.Button, state uint16, x, y int16) input.Event {
	return input.Event{
		Kind: kind,
		Code: uint32(button),
		Mods: input.Modifiers(state),
		X:    int(x),
		Y:    int(y),
	}
}
