package engine

import (
	"fmt"
	"log"
	"sort"

	"github.com/1broseidon/multibox/internal/actionlog"
	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/platform"
)

// ApplyLayoutPreset tiles every assigned window with preset n (1-based).
func (e *Engine) ApplyLayoutPreset(n int) error {
	e.lock()
	defer e.unlock()
	return e.applyPreset(n)
}

func (e *Engine) preset(n int) (config.LayoutPreset, error) {
	if n < 1 || n > len(e.opts.Presets) {
		return config.LayoutPreset{}, fmt.Errorf("%w: %d", ErrNoSuchPreset, n)
	}
	p := e.opts.Presets[n-1]
	if !p.Enabled {
		return p, fmt.Errorf("%w: %d", ErrPresetDisabled, n)
	}
	return p, nil
}

func (e *Engine) applyPreset(n int) error {
	p, err := e.preset(n)
	if err != nil {
		return err
	}

	displays, err := e.deps.Windows.Displays()
	if err != nil {
		e.log.Warn("failed to query displays, using stored regions", "error", err)
		displays = nil
	}

	ordered := e.roster.Ordered(e.priority)
	layout := p.Layout(len(ordered), displays)

	var moved []platform.WindowID
	for i, c := range ordered {
		rect, ok := layout.At(i)
		if !ok {
			break
		}
		if err := e.deps.Windows.MoveResize(c.Window(), rect); err != nil {
			log.Printf("Engine: failed to move %s: %v", c, err)
			continue
		}
		c.SetSize(layout.CellSize)
		moved = append(moved, c.Window())
	}
	if len(ordered) > len(layout.Positions) {
		log.Printf("Engine: preset %d holds %d windows, %d left in place", n, len(layout.Positions), len(ordered)-len(layout.Positions))
	}

	if e.lastPreset != n {
		e.lastPreset = n
		if err := e.deps.Settings.SaveLastPreset(n); err != nil {
			e.log.Warn("failed to save last preset", "error", err)
		}
		e.emit(ChangeSetting, "last_preset")
	}
	if e.session != nil {
		clear(e.session.switched)
	}

	e.record(actionlog.ActionPreset, -1, map[string]any{"preset": n, "windows": len(moved)})
	e.settle(moved...)
	e.publish()
	return nil
}

// settle polls window geometry until two consecutive reads agree for every
// window or the attempt budget runs out.
func (e *Engine) settle(windows ...platform.WindowID) {
	attempts := e.opts.SettleAttempts
	if len(windows) == 0 || attempts <= 0 {
		return
	}

	last := make(map[platform.WindowID]platform.Rect, len(windows))
	pending := windows
	for i := 0; i < attempts && len(pending) > 0; i++ {
		if i > 0 {
			e.deps.Clock.Sleep(e.opts.SettleInterval)
		}
		var next []platform.WindowID
		for _, w := range pending {
			r, err := e.deps.Windows.ClientRect(w)
			if err != nil {
				continue
			}
			if prev, ok := last[w]; ok && prev == r {
				continue
			}
			last[w] = r
			next = append(next, w)
		}
		pending = next
	}
	if len(pending) > 0 {
		e.log.Warn("window geometry did not settle", "windows", len(pending), "attempts", attempts)
	}
}

// ToggleLayoutPriority flips between pair and role ordering, saves the
// choice and re-tiles with the last preset.
func (e *Engine) ToggleLayoutPriority() controller.Priority {
	e.lock()
	defer e.unlock()

	e.priority = e.priority.Toggle()
	if err := e.deps.Settings.SaveLayoutPriority(e.priority); err != nil {
		e.log.Warn("failed to save layout priority", "error", err)
	}
	log.Printf("Engine: layout priority %s", e.priority)
	e.record(actionlog.ActionPriority, -1, map[string]any{"priority": string(e.priority)})
	e.emit(ChangeSetting, "layout_priority")

	if err := e.applyPreset(e.lastPreset); err != nil {
		e.log.Debug("no preset applied after priority toggle", "error", err)
	}
	return e.priority
}

// LayoutPriority returns the current ordering policy.
func (e *Engine) LayoutPriority() controller.Priority {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.priority
}

// SetLayoutPriority restores a saved ordering policy without re-tiling.
func (e *Engine) SetLayoutPriority(p controller.Priority) {
	e.lock()
	defer e.unlock()
	if p == "" || p == e.priority {
		return
	}
	e.priority = p
	e.emit(ChangeSetting, "layout_priority")
}

// SetLastPreset restores a saved preset number without applying it.
func (e *Engine) SetLastPreset(n int) {
	e.lock()
	defer e.unlock()
	if n < 1 || n == e.lastPreset {
		return
	}
	e.lastPreset = n
	e.emit(ChangeSetting, "last_preset")
}

// Presets returns the configured presets.
func (e *Engine) Presets() []config.LayoutPreset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]config.LayoutPreset(nil), e.opts.Presets...)
}

// AutoFind assigns found windows to empty slots, group by group and left
// before right, then switches to mirror mode and re-tiles. It returns how
// many windows were assigned.
func (e *Engine) AutoFind(windows []platform.WindowID) int {
	e.lock()
	defer e.unlock()

	filled := e.roster.FillEmpty(windows)
	if len(filled) > 0 {
		log.Printf("Engine: auto-find assigned %d window(s)", len(filled))
		e.emit(ChangeGroups, fmt.Sprintf("auto-find %d", len(filled)))
	}
	e.record(actionlog.ActionAutoFind, -1, map[string]any{"found": len(windows), "assigned": len(filled)})

	e.setMode(ModeMirrorAll)
	if err := e.applyPreset(e.lastPreset); err != nil {
		e.log.Debug("no preset applied after auto-find", "error", err)
	}
	return len(filled)
}

func sortSlots(slots []controller.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.Pair != b.Pair {
			return a.Pair < b.Pair
		}
		return a.Role < b.Role
	})
}
