package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/multibox/internal/input"
)

// Core event codes. xgb's release events serialise with their press
// counterpart's code, so the first byte is patched after encoding.
const (
	codeKeyPress      = 2
	codeKeyRelease    = 3
	codeButtonPress   = 4
	codeButtonRelease = 5
)

// Post delivers msg to win with SendEvent. The target sees a synthetic event
// at the message's window-relative position; button events also carry the
// matching root position.
func (c *Connection) Post(win xproto.Window, msg input.Message) error {
	var origin Geometry
	if msg.Kind == input.ButtonDown || msg.Kind == input.ButtonUp {
		var err error
		if origin, err = c.ClientRect(win); err != nil {
			return err
		}
	}
	ev, mask, err := encodeMessage(c.Root, win, origin, msg)
	if err != nil {
		return err
	}
	if err := xproto.SendEventChecked(c.XUtil.Conn(), false, win, mask, ev).Check(); err != nil {
		return fmt.Errorf("send %s to 0x%x: %w", msg.Kind, uint32(win), err)
	}
	return nil
}

// encodeMessage serialises msg for win. origin is win's client area in root
// coordinates and only matters for button events.
func encodeMessage(root, win xproto.Window, origin Geometry, msg input.Message) (string, uint32, error) {
	switch msg.Kind {
	case input.KeyDown, input.Hotkey, input.KeyUp:
		ev := xproto.KeyPressEvent{
			Detail:     xproto.Keycode(msg.Code),
			Time:       xproto.TimeCurrentTime,
			Root:       root,
			Event:      win,
			Child:      xproto.WindowNone,
			State:      uint16(msg.Mods),
			SameScreen: true,
		}
		b := ev.Bytes()
		mask := uint32(xproto.EventMaskKeyPress)
		if msg.Kind == input.KeyUp {
			b[0] = codeKeyRelease
			mask = xproto.EventMaskKeyRelease
		}
		return string(b), mask, nil

	case input.ButtonDown, input.ButtonUp:
		ev := xproto.ButtonPressEvent{
			Detail:     xproto.Button(msg.Code),
			Time:       xproto.TimeCurrentTime,
			Root:       root,
			Event:      win,
			Child:      xproto.WindowNone,
			RootX:      int16(origin.X + msg.X),
			RootY:      int16(origin.Y + msg.Y),
			EventX:     int16(msg.X),
			EventY:     int16(msg.Y),
			State:      uint16(msg.Mods),
			SameScreen: true,
		}
		b := ev.Bytes()
		mask := uint32(xproto.EventMaskButtonPress)
		if msg.Kind == input.ButtonUp {
			b[0] = codeButtonRelease
			mask = xproto.EventMaskButtonRelease
		}
		return string(b), mask, nil
	}
	return "", 0, fmt.Errorf("cannot post %s", msg.Kind)
}
