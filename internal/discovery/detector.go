package discovery

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/multibox/internal/platform"
)

// Lister enumerates top-level windows.
type Lister interface {
	ListWindows() ([]platform.Window, error)
}

// Detector picks out game-client windows by process name or WM_CLASS.
type Detector struct {
	mu          sync.RWMutex
	executables map[string]bool
	classes     map[string]bool
}

// NewDetector creates a detector for the given executable and class names.
// Matching is case-insensitive. Executable names may carry a path or a .exe
// suffix.
func NewDetector(executables, classes []string) *Detector {
	d := &Detector{}
	d.Update(executables, classes)
	return d
}

// Update replaces the match lists, for config reloads.
func (d *Detector) Update(executables, classes []string) {
	exe := make(map[string]bool, len(executables))
	for _, name := range executables {
		if n := normalizeExe(name); n != "" {
			exe[n] = true
		}
	}
	cls := make(map[string]bool, len(classes))
	for _, name := range classes {
		if n := strings.ToLower(strings.TrimSpace(name)); n != "" {
			cls[n] = true
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.executables = exe
	d.classes = cls
}

// Empty reports whether nothing is configured to match.
func (d *Detector) Empty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.executables) == 0 && len(d.classes) == 0
}

// Find returns matching windows that are not already owned, ordered by
// process then window ID so that clients launched first take the first
// slots.
func (d *Detector) Find(lister Lister, owned []platform.WindowID) ([]platform.WindowID, error) {
	windows, err := lister.ListWindows()
	if err != nil {
		return nil, err
	}

	skip := make(map[platform.WindowID]bool, len(owned))
	for _, id := range owned {
		skip[id] = true
	}

	var found []platform.Window
	for _, w := range windows {
		if w.ID == platform.NoWindow || skip[w.ID] || !d.Matches(w) {
			continue
		}
		found = append(found, w)
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].PID != found[j].PID {
			return found[i].PID < found[j].PID
		}
		return found[i].ID < found[j].ID
	})

	ids := make([]platform.WindowID, len(found))
	for i, w := range found {
		ids[i] = w.ID
	}
	return ids, nil
}

// Matches reports whether w belongs to a configured client.
func (d *Detector) Matches(w platform.Window) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if w.Exe != "" && d.executables[normalizeExe(w.Exe)] {
		return true
	}
	for _, c := range []string{w.AppID, w.Instance} {
		if c != "" && d.classes[strings.ToLower(c)] {
			return true
		}
	}
	return false
}

func normalizeExe(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSuffix(name, ".exe")
}
