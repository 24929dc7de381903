package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	backAction    = "__back__"
	submenuPrefix = "__submenu__:"
)

// MenuItem is a node in a menu tree. Leaves carry an Action; parents carry a
// Submenu.
type MenuItem struct {
	Label     string
	Action    string
	Icon      string
	IsHeader  bool
	IsDivider bool
	IsActive  bool
	Submenu   []MenuItem
}

// IsParent reports whether the item opens a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

// Menu walks a MenuItem tree with a Backend.
type Menu struct {
	backend Backend
	root    []MenuItem
	prompt  string
	message string
}

// NewMenu creates a menu over items. prompt labels the top level.
func NewMenu(backend Backend, prompt string, items []MenuItem) *Menu {
	return &Menu{backend: backend, root: items, prompt: prompt}
}

// SetMessage sets the context line shown by backends with a message bar.
func (m *Menu) SetMessage(msg string) {
	m.message = msg
}

// Show returns the action of the chosen leaf, or ErrCancelled.
func (m *Menu) Show() (string, error) {
	return m.show(m.root, nil)
}

func (m *Menu) show(items []MenuItem, trail []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}
	prompt := m.prompt
	if len(trail) > 0 {
		prompt = trail[len(trail)-1]
	}

	for {
		chosen, err := m.backend.Show(prompt, rowsFor(items, len(trail) > 0), m.message)
		if err != nil {
			return "", err
		}
		// Not every backend can refuse header rows.
		if !chosen.selectable() || chosen.Action == "noop" {
			continue
		}
		if chosen.Action == backAction {
			return "", ErrCancelled
		}
		if strings.HasPrefix(chosen.Action, submenuPrefix) {
			idx, ok := submenuIndex(chosen.Action, items)
			if !ok {
				continue
			}
			action, err := m.show(items[idx].Submenu, append(trail, items[idx].Label))
			if errors.Is(err, ErrCancelled) {
				continue
			}
			return action, err
		}
		return chosen.Action, nil
	}
}

func rowsFor(items []MenuItem, nested bool) []Item {
	rows := make([]Item, 0, len(items)+1)
	if nested {
		rows = append(rows, Item{Label: "← Back", Action: backAction, Icon: "go-previous"})
	}
	for i, it := range items {
		row := Item{
			Label:     it.Label,
			Action:    it.Action,
			Icon:      it.Icon,
			IsHeader:  it.IsHeader,
			IsDivider: it.IsDivider,
			IsActive:  it.IsActive,
		}
		switch {
		case it.IsParent():
			row.Label += " →"
			row.Action = submenuPrefix + strconv.Itoa(i)
			if row.Icon == "" {
				row.Icon = "folder"
			}
		case strings.TrimSpace(row.Action) == "":
			row.Action = "noop"
		}
		rows = append(rows, row)
	}
	return rows
}

func submenuIndex(action string, items []MenuItem) (int, bool) {
	rest, ok := strings.CutPrefix(action, submenuPrefix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 || idx >= len(items) || !items[idx].IsParent() {
		return 0, false
	}
	return idx, true
}
