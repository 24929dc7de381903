// Package keymap turns the configured key bindings into per-role lookup
// tables.
package keymap

// ThrowTitle names the binding used by the zero-power hotkey.
const ThrowTitle = "Throw"

// Binding maps a game action to the physical keys that drive it. Key is the
// keycode the game expects; Left and Right are the physical keys that send
// it to left and right controllers. Zero means unbound.
type Binding struct {
	Title string
	Key   uint32
	Left  uint32
	Right uint32
}

// Table resolves a physical key to the game keys to send per role.
type Table struct {
	left     map[uint32][]uint32
	right    map[uint32][]uint32
	bindings []Binding
}

// Build indexes bindings. A physical key may map to several game keys.
func Build(bindings []Binding) *Table {
	t := &Table{
		left:     make(map[uint32][]uint32),
		right:    make(map[uint32][]uint32),
		bindings: append([]Binding(nil), bindings...),
	}
	for _, b := range bindings {
		if b.Key == 0 {
			continue
		}
		if b.Left != 0 {
			t.left[b.Left] = append(t.left[b.Left], b.Key)
		}
		if b.Right != 0 {
			t.right[b.Right] = append(t.right[b.Right], b.Key)
		}
	}
	return t
}

// Lookup returns the game keys physical key code sends to each side.
func (t *Table) Lookup(code uint32) (left, right []uint32) {
	if t == nil {
		return nil, nil
	}
	return t.left[code], t.right[code]
}

// Find returns the first binding with the given title.
func (t *Table) Find(title string) (Binding, bool) {
	if t == nil {
		return Binding{}, false
	}
	for _, b := range t.bindings {
		if b.Title == title {
			return b, true
		}
	}
	return Binding{}, false
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}
