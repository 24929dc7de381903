// Package state persists runtime choices that outlive the daemon: the last
// applied preset, the layout priority and which window each controller held.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/platform"
	"github.com/1broseidon/multibox/internal/runtimepath"
)

const schemaVersion = 1

// Assignment records the window held by one controller slot.
type Assignment struct {
	Group    int    `json:"group"`
	Pair     int    `json:"pair"`
	Role     string `json:"role"`
	WindowID uint32 `json:"window_id"`
}

// State is the persisted document.
type State struct {
	Version        int          `json:"version"`
	LastPreset     int          `json:"last_preset,omitempty"`
	LayoutPriority string       `json:"layout_priority,omitempty"`
	Groups         int          `json:"groups,omitempty"`
	Assignments    []Assignment `json:"assignments,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Priority returns the saved layout priority, if one was saved.
func (s *State) Priority() (controller.Priority, bool) {
	if s == nil || s.LayoutPriority == "" {
		return "", false
	}
	p, err := controller.ParsePriority(s.LayoutPriority)
	if err != nil {
		return "", false
	}
	return p, true
}

// Snapshot converts the saved assignments into roster slots. Entries with
// an unknown role or a zero window are skipped.
func (s *State) Snapshot() controller.Snapshot {
	out := make(controller.Snapshot)
	if s == nil {
		return out
	}
	for _, a := range s.Assignments {
		role, err := controller.ParseRole(a.Role)
		if err != nil || a.WindowID == 0 || a.Group < 1 || a.Pair < 1 {
			continue
		}
		out[controller.Slot{Group: a.Group, Pair: a.Pair, Role: role}] = platform.WindowID(a.WindowID)
	}
	return out
}

// Store reads and writes State as JSON.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns state.json inside runtimepath.StateDir.
func DefaultPath() (string, error) {
	dir, err := runtimepath.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state. A missing file yields an empty state.
func (s *Store) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Version: schemaVersion}, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", s.path, err)
	}
	if st.Version == 0 {
		st.Version = schemaVersion
	}
	return &st, nil
}

func (s *Store) save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	st.Version = schemaVersion
	st.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Update loads the state, applies fn and writes it back.
func (s *Store) Update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		// A corrupt file is replaced rather than blocking every save.
		st = &State{Version: schemaVersion}
	}
	fn(st)
	return s.save(st)
}

// SaveLastPreset records n as the most recently applied preset.
func (s *Store) SaveLastPreset(n int) error {
	return s.Update(func(st *State) { st.LastPreset = n })
}

// SaveLayoutPriority records the current layout priority.
func (s *Store) SaveLayoutPriority(p controller.Priority) error {
	return s.Update(func(st *State) { st.LayoutPriority = string(p) })
}

// SaveAssignments records every assigned controller slot in r.
func (s *Store) SaveAssignments(r *controller.Roster) error {
	assignments := Capture(r)
	groups := r.Len()
	return s.Update(func(st *State) {
		st.Assignments = assignments
		st.Groups = groups
	})
}

// Capture lists the assigned slots of r.
func Capture(r *controller.Roster) []Assignment {
	var out []Assignment
	for _, c := range r.WithWindows() {
		out = append(out, Assignment{
			Group:    c.Group(),
			Pair:     c.Pair(),
			Role:     c.Role().String(),
			WindowID: uint32(c.Window()),
		})
	}
	return out
}
