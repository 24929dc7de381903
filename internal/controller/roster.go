package controller

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/multibox/internal/platform"
)

var (
	// ErrLastGroup is returned when removing the only remaining group.
	ErrLastGroup = errors.New("cannot remove the last group")
	// ErrNoSuchGroup is returned for a group index outside the roster.
	ErrNoSuchGroup = errors.New("no such group")
)

// Priority selects how controllers are ordered for tiling.
type Priority string

const (
	// PriorityPair orders by (group, pair, role).
	PriorityPair Priority = "pair"
	// PriorityRole orders by (group, role, pair).
	PriorityRole Priority = "role"
)

// ParsePriority validates a layout priority name.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityPair, PriorityRole:
		return Priority(s), nil
	case "":
		return PriorityPair, nil
	}
	return PriorityPair, fmt.Errorf("invalid layout priority %q (want pair or role)", s)
}

// Toggle returns the other priority.
func (p Priority) Toggle() Priority {
	if p == PriorityRole {
		return PriorityPair
	}
	return PriorityRole
}

// Roster owns every group and enforces that a window belongs to at most one
// controller.
type Roster struct {
	groups []*Group
}

// NewRoster creates a roster with n groups, at least one.
func NewRoster(n int) *Roster {
	r := &Roster{}
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		r.AddGroup()
	}
	return r
}

// Groups returns the groups in order.
func (r *Roster) Groups() []*Group {
	return r.groups
}

// Len returns the number of groups.
func (r *Roster) Len() int {
	return len(r.groups)
}

// Group returns the group at index i.
func (r *Roster) Group(i int) (*Group, bool) {
	if i < 0 || i >= len(r.groups) {
		return nil, false
	}
	return r.groups[i], true
}

// AddGroup appends a group with one unassigned pair.
func (r *Roster) AddGroup() *Group {
	g := newGroup(len(r.groups) + 1)
	r.groups = append(r.groups, g)
	return g
}

// RemoveGroup drops the group at index i, disconnecting its windows. Later
// groups are renumbered.
func (r *Roster) RemoveGroup(i int) error {
	if i < 0 || i >= len(r.groups) {
		return fmt.Errorf("%w: %d", ErrNoSuchGroup, i+1)
	}
	if len(r.groups) == 1 {
		return ErrLastGroup
	}
	for _, c := range r.groups[i].All() {
		c.window = platform.NoWindow
	}
	r.groups = append(r.groups[:i], r.groups[i+1:]...)
	for idx, g := range r.groups {
		g.renumber(idx + 1)
	}
	return nil
}

// EnsureGroup returns group number n (1-based), creating groups up to it.
func (r *Roster) EnsureGroup(n int) *Group {
	if n < 1 {
		n = 1
	}
	for len(r.groups) < n {
		r.AddGroup()
	}
	return r.groups[n-1]
}

// FreeSlot returns the first controller of role in group n whose slot is
// unassigned, adding a pair when every slot is taken.
func (r *Roster) FreeSlot(n int, role Role) *Controller {
	g := r.EnsureGroup(n)
	for _, p := range g.pairs {
		if c := p.Controller(role); !c.HasWindow() {
			return c
		}
	}
	return g.AddPair().Controller(role)
}

// Owner returns the controller holding w, if any.
func (r *Roster) Owner(w platform.WindowID) *Controller {
	if w == platform.NoWindow {
		return nil
	}
	for _, g := range r.groups {
		for _, p := range g.pairs {
			if p.Left.window == w {
				return p.Left
			}
			if p.Right.window == w {
				return p.Right
			}
		}
	}
	return nil
}

// Assign gives w to c after clearing it from its previous owner.
func (r *Roster) Assign(c *Controller, w platform.WindowID) {
	if prev := r.Owner(w); prev != nil && prev != c {
		prev.window = platform.NoWindow
	}
	c.window = w
}

// Clear disconnects c from its window.
func (r *Roster) Clear(c *Controller) {
	c.window = platform.NoWindow
}

// ClearWindow disconnects w from whichever controller holds it and returns
// that controller.
func (r *Roster) ClearWindow(w platform.WindowID) *Controller {
	c := r.Owner(w)
	if c != nil {
		c.window = platform.NoWindow
	}
	return c
}

// Swap exchanges the window assignments of a and b.
func (r *Roster) Swap(a, b *Controller) {
	a.window, b.window = b.window, a.window
}

// All returns every controller in (group, pair, role) order.
func (r *Roster) All() []*Controller {
	var out []*Controller
	for _, g := range r.groups {
		out = append(out, g.All()...)
	}
	return out
}

// WithWindows returns every assigned controller in (group, pair, role) order.
func (r *Roster) WithWindows() []*Controller {
	var out []*Controller
	for _, c := range r.All() {
		if c.HasWindow() {
			out = append(out, c)
		}
	}
	return out
}

// Windows returns the set of assigned windows.
func (r *Roster) Windows() map[platform.WindowID]*Controller {
	out := make(map[platform.WindowID]*Controller)
	for _, c := range r.All() {
		if c.HasWindow() {
			out[c.window] = c
		}
	}
	return out
}

// Ordered returns the assigned controllers sorted for tiling.
func (r *Roster) Ordered(p Priority) []*Controller {
	out := r.WithWindows()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.group != b.group {
			return a.group < b.group
		}
		if p == PriorityRole {
			if a.role != b.role {
				return a.role < b.role
			}
			return a.pair < b.pair
		}
		if a.pair != b.pair {
			return a.pair < b.pair
		}
		return a.role < b.role
	})
	return out
}

// FillEmpty assigns windows not already held to empty slots in (group, pair,
// role) order, then to new groups, left before right. It returns the
// controllers that received a window.
func (r *Roster) FillEmpty(windows []platform.WindowID) []*Controller {
	held := r.Windows()
	var pending []platform.WindowID
	seen := make(map[platform.WindowID]bool)
	for _, w := range windows {
		if w == platform.NoWindow || seen[w] {
			continue
		}
		seen[w] = true
		if _, ok := held[w]; !ok {
			pending = append(pending, w)
		}
	}

	var filled []*Controller
	for _, c := range r.All() {
		if len(pending) == 0 {
			return filled
		}
		if c.HasWindow() {
			continue
		}
		c.window = pending[0]
		pending = pending[1:]
		filled = append(filled, c)
	}
	for len(pending) > 0 {
		g := r.AddGroup()
		for _, c := range g.All() {
			if len(pending) == 0 {
				break
			}
			c.window = pending[0]
			pending = pending[1:]
			filled = append(filled, c)
		}
	}
	return filled
}

// Snapshot maps each controller position to its window.
type Snapshot map[Slot]platform.WindowID

// Slot identifies a controller position.
type Slot struct {
	Group int
	Pair  int
	Role  Role
}

// SlotOf returns c's position.
func SlotOf(c *Controller) Slot {
	return Slot{Group: c.group, Pair: c.pair, Role: c.role}
}

// Snapshot captures every assignment.
func (r *Roster) Snapshot() Snapshot {
	out := make(Snapshot)
	for _, c := range r.All() {
		out[SlotOf(c)] = c.window
	}
	return out
}

// At returns the controller at slot s, if it exists.
func (r *Roster) At(s Slot) (*Controller, bool) {
	g, ok := r.Group(s.Group - 1)
	if !ok || s.Pair < 1 || s.Pair > len(g.pairs) {
		return nil, false
	}
	return g.pairs[s.Pair-1].Controller(s.Role), true
}

// Restore assigns w to slot s, creating groups and pairs as needed.
func (r *Roster) Restore(s Slot, w platform.WindowID) *Controller {
	g := r.EnsureGroup(s.Group)
	for len(g.pairs) < s.Pair {
		g.AddPair()
	}
	c := g.pairs[max(s.Pair, 1)-1].Controller(s.Role)
	r.Assign(c, w)
	return c
}
