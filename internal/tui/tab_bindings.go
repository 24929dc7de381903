package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/multibox/internal/config"
)

// bindingItem implements list.Item for the key binding list.
type bindingItem struct {
	binding config.KeyBinding
}

func (i bindingItem) Title() string {
	return i.binding.Title
}

func (i bindingItem) Description() string {
	return fmt.Sprintf("%s  ← L:%s  R:%s", i.binding.Key, orNone(i.binding.Left), orNone(i.binding.Right))
}

func (i bindingItem) FilterValue() string { return i.binding.Title }

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// BindingsTab edits the role key binding table and shows the hotkeys.
type BindingsTab struct {
	list list.Model
	cfg  *config.Config

	editing bool
	editIdx int // -1 adds a new binding
	form    *huh.Form

	fTitle string
	fKey   string
	fLeft  string
	fRight string

	width  int
	height int
}

// NewBindingsTab creates a BindingsTab over cfg.KeyBindings.
func NewBindingsTab(cfg *config.Config) BindingsTab {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Key Bindings"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	bt := BindingsTab{list: l, cfg: cfg}
	bt.rebuildItems()
	return bt
}

func (bt *BindingsTab) rebuildItems() {
	items := make([]list.Item, 0, len(bt.cfg.KeyBindings))
	for _, kb := range bt.cfg.KeyBindings {
		items = append(items, bindingItem{binding: kb})
	}
	bt.list.SetItems(items)
}

// Update implements tea.Model.
func (bt BindingsTab) Update(msg tea.Msg) (BindingsTab, tea.Cmd) {
	if bt.editing {
		return bt.updateEditing(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		bt.width = msg.Width
		bt.height = msg.Height
		bt.list.SetSize(bt.listWidth(), max(bt.height, 1))
		return bt, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "n":
			bt.startEditing(-1)
			return bt, bt.form.Init()
		case "e", "enter":
			if len(bt.cfg.KeyBindings) == 0 {
				return bt, nil
			}
			bt.startEditing(bt.list.Index())
			return bt, bt.form.Init()
		case "x", "delete":
			bt.removeBinding(bt.list.Index())
			return bt, nil
		}
	}

	var cmd tea.Cmd
	bt.list, cmd = bt.list.Update(msg)
	return bt, cmd
}

func (bt BindingsTab) listWidth() int {
	return min(max(bt.width/2, 30), 60)
}

func (bt *BindingsTab) removeBinding(idx int) {
	if idx < 0 || idx >= len(bt.cfg.KeyBindings) {
		return
	}
	bt.cfg.KeyBindings = append(bt.cfg.KeyBindings[:idx], bt.cfg.KeyBindings[idx+1:]...)
	bt.rebuildItems()
}

func (bt *BindingsTab) startEditing(idx int) {
	bt.editIdx = idx
	var kb config.KeyBinding
	if idx >= 0 {
		kb = bt.cfg.KeyBindings[idx]
	}
	bt.fTitle, bt.fKey, bt.fLeft, bt.fRight = kb.Title, kb.Key, kb.Left, kb.Right

	bt.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&bt.fTitle),
			huh.NewInput().
				Key("key").
				Title("Game key").
				Description("Keysym sent to the game window, e.g. Up").
				Validate(requireNonEmpty).
				Value(&bt.fKey),
			huh.NewInput().
				Key("left").
				Title("Left role key").
				Description("Keysym the operator presses for left controllers").
				Value(&bt.fLeft),
			huh.NewInput().
				Key("right").
				Title("Right role key").
				Description("Keysym the operator presses for right controllers").
				Value(&bt.fRight),
		),
	).WithWidth(max(bt.width-4, 40)).WithShowHelp(true).WithShowErrors(true)

	bt.editing = true
}

func requireNonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func (bt BindingsTab) updateEditing(msg tea.Msg) (BindingsTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		bt.editing = false
		bt.form = nil
		return bt, nil
	}

	form, cmd := bt.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		bt.form = f
	}

	if bt.form.State == huh.StateCompleted {
		kb := config.KeyBinding{
			Title: strings.TrimSpace(bt.fTitle),
			Key:   strings.TrimSpace(bt.fKey),
			Left:  strings.TrimSpace(bt.fLeft),
			Right: strings.TrimSpace(bt.fRight),
		}
		if bt.editIdx >= 0 && bt.editIdx < len(bt.cfg.KeyBindings) {
			bt.cfg.KeyBindings[bt.editIdx] = kb
		} else {
			bt.cfg.KeyBindings = append(bt.cfg.KeyBindings, kb)
		}
		bt.editing = false
		bt.form = nil
		bt.rebuildItems()
		return bt, nil
	}
	return bt, cmd
}

// View implements tea.Model.
func (bt BindingsTab) View() string {
	if bt.editing && bt.form != nil {
		return lipgloss.NewStyle().Padding(0, 1).Render(bt.form.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, bt.list.View(), "  ", renderHotkeys(bt.cfg))
}

// renderHotkeys lists the global hotkeys in display form.
func renderHotkeys(cfg *config.Config) string {
	h := cfg.Hotkeys
	rows := []struct{ name, chord string }{
		{"Cycle mode", h.Mode},
		{"Group mode", h.GroupMode},
		{"All-group mode", h.AllGroupMode},
		{"Mirror-all mode", h.MirrorAllMode},
		{"Multi-click", h.MultiClick},
		{"Zero power", h.ZeroPower},
		{"Auto-find", h.AutoFind},
		{"Layout priority", h.LayoutPriority},
		{"Release", h.Release},
		{"Palette", h.Palette},
	}
	lines := []string{headingStyle.Render("Hotkeys"), ""}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%-16s %s", r.name, config.HotkeyDisplayName(r.chord)))
	}
	lines = append(lines, "",
		headingStyle.Render("Switching"),
		"",
		fmt.Sprintf("%-16s %s", "Modifier", cfg.Switching.Modifier),
		fmt.Sprintf("%-16s %s", "Select", cfg.Switching.Select),
		fmt.Sprintf("%-16s %s", "Remove", cfg.Switching.Remove),
	)
	return strings.Join(lines, "\n")
}
