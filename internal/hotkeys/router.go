package hotkeys

import (
	"log"
	"sync"

	"github.com/1broseidon/multibox/internal/input"
)

// Engine is the part of the engine the router feeds.
type Engine interface {
	ProcessInput(ev input.Event) bool
}

// command is a daemon-level action bound to a chord. These never reach the
// engine.
type command struct {
	name  string
	chord input.Chord
	run   func()
}

// Router is the single sink for every key and button event, whether it came
// from a passive hotkey grab or from the keyboard and pointer grabs held
// while the engine is active. Daemon commands are matched first; everything
// else goes to the engine.
type Router struct {
	engine Engine

	mu       sync.Mutex
	commands []command
	held     map[string]bool
}

// NewRouter returns a router with no commands bound.
func NewRouter(engine Engine) *Router {
	return &Router{engine: engine, held: make(map[string]bool)}
}

// Bind adds a command. A zero chord is ignored.
func (r *Router) Bind(name string, chord input.Chord, run func()) {
	if chord.IsZero() || run == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command{name: name, chord: chord, run: run})
}

// Reset drops every bound command, for config reloads.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
	r.held = make(map[string]bool)
}

// Handle routes ev and reports whether it was consumed.
func (r *Router) Handle(ev input.Event) bool {
	if run, ok := r.match(ev); ok {
		if run != nil {
			run()
		}
		return true
	}
	return r.engine.ProcessInput(ev)
}

// match finds the command for ev. Auto-repeat presses of a held chord match
// without returning a func, so commands fire once per press.
func (r *Router) match(ev input.Event) (func(), bool) {
	if !ev.Kind.IsKey() {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.commands {
		if !c.chord.Matches(ev) {
			continue
		}
		if ev.Kind == input.KeyUp {
			delete(r.held, c.name)
			return nil, true
		}
		if r.held[c.name] {
			return nil, true
		}
		r.held[c.name] = true
		log.Printf("Hotkey: %s", c.name)
		return c.run, true
	}
	return nil, false
}
