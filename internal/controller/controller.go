package controller

import (
	"fmt"

	"github.com/1broseidon/multibox/internal/platform"
	"github.com/1broseidon/multibox/internal/tiling"
)

// Role is the side of a pair a controller plays.
type Role int

const (
	Left Role = iota
	Right
)

func (r Role) String() string {
	if r == Right {
		return "right"
	}
	return "left"
}

// ParseRole accepts "left" or "right".
func ParseRole(s string) (Role, error) {
	switch s {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return Left, fmt.Errorf("invalid role %q", s)
}

// Controller wraps one target window.
type Controller struct {
	role    Role
	group   int
	pair    int
	window  platform.WindowID
	size    tiling.Size
	active  bool
	postErr bool
}

func newController(role Role, group, pair int) *Controller {
	return &Controller{role: role, group: group, pair: pair}
}

func (c *Controller) Role() Role                { return c.role }
func (c *Controller) Group() int                { return c.group }
func (c *Controller) Pair() int                 { return c.pair }
func (c *Controller) Window() platform.WindowID { return c.window }
func (c *Controller) HasWindow() bool           { return c.window != platform.NoWindow }
func (c *Controller) Size() tiling.Size         { return c.size }
func (c *Controller) Active() bool              { return c.active }

// PostError reports whether posting to this controller's window ever failed.
// The flag is sticky for the life of the process.
func (c *Controller) PostError() bool { return c.postErr }

// SetSize records the last size applied to the window.
func (c *Controller) SetSize(s tiling.Size) { c.size = s }

// SetActive records whether the window currently has input focus.
func (c *Controller) SetActive(active bool) { c.active = active }

// MarkPostError sets the sticky post failure flag and reports whether it was
// newly set.
func (c *Controller) MarkPostError() bool {
	if c.postErr {
		return false
	}
	c.postErr = true
	return true
}

// Ordinal is the stable on-screen number for this controller: odd numbers
// are left controllers and even numbers right controllers.
func (c *Controller) Ordinal() int {
	n := (c.group - 1) * 2
	if c.role == Left {
		return n + 1
	}
	return n + 2
}

func (c *Controller) String() string {
	return fmt.Sprintf("g%d/p%d/%s", c.group, c.pair, c.role)
}

// Pair holds a left and a right controller.
type Pair struct {
	Number int
	Left   *Controller
	Right  *Controller
}

func newPair(group, number int) *Pair {
	return &Pair{
		Number: number,
		Left:   newController(Left, group, number),
		Right:  newController(Right, group, number),
	}
}

// Controller returns the pair member for role.
func (p *Pair) Controller(role Role) *Controller {
	if role == Right {
		return p.Right
	}
	return p.Left
}

// Group is an ordered, never empty, list of pairs.
type Group struct {
	Number int
	pairs  []*Pair
}

func newGroup(number int) *Group {
	g := &Group{Number: number}
	g.AddPair()
	return g
}

// Pairs returns the group's pairs in order.
func (g *Group) Pairs() []*Pair {
	return g.pairs
}

// AddPair appends an unassigned pair.
func (g *Group) AddPair() *Pair {
	p := newPair(g.Number, len(g.pairs)+1)
	g.pairs = append(g.pairs, p)
	return p
}

// Lefts returns every left controller in pair order.
func (g *Group) Lefts() []*Controller {
	out := make([]*Controller, 0, len(g.pairs))
	for _, p := range g.pairs {
		out = append(out, p.Left)
	}
	return out
}

// Rights returns every right controller in pair order.
func (g *Group) Rights() []*Controller {
	out := make([]*Controller, 0, len(g.pairs))
	for _, p := range g.pairs {
		out = append(out, p.Right)
	}
	return out
}

// All returns every controller, left before right within each pair.
func (g *Group) All() []*Controller {
	out := make([]*Controller, 0, 2*len(g.pairs))
	for _, p := range g.pairs {
		out = append(out, p.Left, p.Right)
	}
	return out
}

func (g *Group) renumber(number int) {
	g.Number = number
	for _, p := range g.pairs {
		p.Left.group = number
		p.Right.group = number
	}
}
