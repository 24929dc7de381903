package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/1broseidon/multibox/internal/input"
)

// Keys resolves keybind strings against the server's keyboard mapping.
type Keys struct {
	conn *Connection
}

// NewKeys returns a resolver for conn.
func NewKeys(conn *Connection) *Keys {
	return &Keys{conn: conn}
}

// Chord parses strings such as "Mod4-Mod1-f". An empty string is the zero
// chord.
func (k *Keys) Chord(s string) (input.Chord, error) {
	if s == "" {
		return input.Chord{}, nil
	}
	mods, codes, err := keybind.ParseString(k.conn.XUtil, s)
	if err != nil {
		return input.Chord{}, err
	}
	if len(codes) == 0 {
		return input.Chord{}, fmt.Errorf("no keycode for %q", s)
	}
	return input.Chord{Code: uint32(codes[0]), Mods: input.Modifiers(mods)}, nil
}

// Keycode resolves a key name such as "Delete" or "Alt_L".
func (k *Keys) Keycode(s string) (uint32, error) {
	codes := keybind.StrToKeycodes(k.conn.XUtil, s)
	if len(codes) == 0 {
		return 0, fmt.Errorf("unknown key %q", s)
	}
	return uint32(codes[0]), nil
}

// KeyName returns the keysym name for code, for logs and status output.
func (k *Keys) KeyName(code uint32) string {
	return keybind.LookupString(k.conn.XUtil, 0, xproto.Keycode(code))
}
