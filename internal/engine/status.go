package engine

import (
	"time"

	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/platform"
)

// ControllerStatus is a read-only view of one controller.
type ControllerStatus struct {
	Ordinal   int
	Role      controller.Role
	Pair      int
	Window    platform.WindowID
	HasWindow bool
	PostError bool
	InActive  bool
	Focused   bool
}

// GroupStatus is a read-only view of one group.
type GroupStatus struct {
	Number      int
	Controllers []ControllerStatus
}

// Status is a snapshot of the engine.
type Status struct {
	Mode         Mode
	Active       bool
	Group        int
	Session      bool
	SessionID    string
	Priority     controller.Priority
	LastPreset   int
	PostFailures int
	Uptime       time.Duration
	Groups       []GroupStatus
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Mode:         e.mode,
		Active:       e.active,
		Group:        clampGroup(e.roster, e.groupIndex) + 1,
		Session:      e.session != nil,
		Priority:     e.priority,
		LastPreset:   e.lastPreset,
		PostFailures: e.postFailures,
		Uptime:       time.Since(e.started),
	}
	if e.session != nil {
		st.SessionID = e.session.id
	}

	inActive := make(map[*controller.Controller]bool)
	for _, c := range ActiveControllers(e.roster, e.mode, e.groupIndex) {
		inActive[c] = true
	}
	for _, g := range e.roster.Groups() {
		gs := GroupStatus{Number: g.Number}
		for _, c := range g.All() {
			gs.Controllers = append(gs.Controllers, ControllerStatus{
				Ordinal:   c.Ordinal(),
				Role:      c.Role(),
				Pair:      c.Pair(),
				Window:    c.Window(),
				HasWindow: c.HasWindow(),
				PostError: c.PostError(),
				InActive:  inActive[c],
				Focused:   c.Active(),
			})
		}
		st.Groups = append(st.Groups, gs)
	}
	return st
}

// Snapshot captures the current window assignments.
func (e *Engine) Snapshot() controller.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roster.Snapshot()
}

// Windows returns the assigned windows.
func (e *Engine) Windows() []platform.WindowID {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []platform.WindowID
	for _, c := range e.roster.WithWindows() {
		out = append(out, c.Window())
	}
	return out
}
