package input

import "fmt"

// Kind classifies an inbound event.
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	// Hotkey is a key press delivered through a passive grab while the
	// engine does not own the keyboard.
	Hotkey
	ButtonDown
	ButtonUp
	PointerMove
)

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "key-down"
	case KeyUp:
		return "key-up"
	case Hotkey:
		return "hotkey"
	case ButtonDown:
		return "button-down"
	case ButtonUp:
		return "button-up"
	case PointerMove:
		return "pointer-move"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsKey reports whether the kind carries a keycode.
func (k Kind) IsKey() bool {
	return k == KeyDown || k == KeyUp || k == Hotkey
}

// IsPointer reports whether the kind is a pointer event.
func (k Kind) IsPointer() bool {
	return k == ButtonDown || k == ButtonUp || k == PointerMove
}

// Modifiers mirrors the X11 core modifier mask bits.
type Modifiers uint16

const (
	ModShift   Modifiers = 1 << 0
	ModLock    Modifiers = 1 << 1
	ModControl Modifiers = 1 << 2
	ModAlt     Modifiers = 1 << 3 // Mod1
	ModNumLock Modifiers = 1 << 4 // Mod2
	ModSuper   Modifiers = 1 << 6 // Mod4
)

// Standard reports whether shift, control or alt is held.
func (m Modifiers) Standard() bool {
	return m&(ModShift|ModControl|ModAlt) != 0
}

// Significant strips lock-style modifiers that never change a chord.
func (m Modifiers) Significant() Modifiers {
	return m & (ModShift | ModControl | ModAlt | ModSuper)
}

// Event is one inbound keyboard, hotkey or pointer event. Code is an X
// keycode for key kinds and a button number for pointer kinds. X and Y are
// root coordinates when known.
type Event struct {
	Kind Kind
	Code uint32
	Mods Modifiers
	X    int
	Y    int
}

// Chord is a key plus the modifiers that must be held with it.
type Chord struct {
	Code uint32
	Mods Modifiers
}

// IsZero reports whether the chord is unbound.
func (c Chord) IsZero() bool {
	return c.Code == 0
}

// Matches reports whether ev is a key event for this chord. Key-up events
// match on the key alone since modifiers may already be released.
func (c Chord) Matches(ev Event) bool {
	if c.IsZero() || !ev.Kind.IsKey() || ev.Code != c.Code {
		return false
	}
	if ev.Kind == KeyUp {
		return true
	}
	return ev.Mods.Significant() == c.Mods.Significant()
}

// MatchesKey reports whether ev is this chord's key regardless of modifiers.
func (c Chord) MatchesKey(ev Event) bool {
	return !c.IsZero() && ev.Kind.IsKey() && ev.Code == c.Code
}

// Trigger is either a pointer button or a key.
type Trigger struct {
	Button uint32
	Key    uint32
}

// IsZero reports whether the trigger is unbound.
func (t Trigger) IsZero() bool {
	return t.Button == 0 && t.Key == 0
}

// Down reports whether ev is the press edge of the trigger.
func (t Trigger) Down(ev Event) bool {
	if t.Button != 0 {
		return ev.Kind == ButtonDown && ev.Code == t.Button
	}
	if t.Key != 0 {
		return (ev.Kind == KeyDown || ev.Kind == Hotkey) && ev.Code == t.Key
	}
	return false
}

// Message is what gets posted to a target window.
type Message struct {
	Kind Kind
	Code uint32
	Mods Modifiers
	// X and Y are window-relative for pointer messages.
	X int
	Y int
}

// DigitKeys maps keycodes of the number row and keypad to their digit
// value 0-9.
type DigitKeys map[uint32]int

// Digit returns the digit for code, if any.
func (d DigitKeys) Digit(code uint32) (int, bool) {
	v, ok := d[code]
	return v, ok
}
