package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/ipc"
)

// presetItem implements list.Item for the preset sidebar.
type presetItem struct {
	number int
	preset config.LayoutPreset
	last   bool
}

func (i presetItem) Title() string {
	prefix := "  "
	if i.last {
		prefix = "* "
	}
	state := ""
	if !i.preset.Enabled {
		state = " (disabled)"
	}
	return fmt.Sprintf("%sPreset %d%s", prefix, i.number, state)
}

func (i presetItem) Description() string { return "" }
func (i presetItem) FilterValue() string { return strconv.Itoa(i.number) }

// PresetsTab lists the layout presets, previews them and edits them.
type PresetsTab struct {
	list      list.Model
	ipcClient *ipc.Client
	cfg       *config.Config

	lastPreset int
	tileCount  int
	statusText string

	editing bool
	editIdx int
	form    *huh.Form

	// Form-bound values
	fEnabled bool
	fColumns string
	fRows    string
	fRegions string
	fHotkey  string

	width  int
	height int
}

// NewPresetsTab creates a PresetsTab over cfg's presets.
func NewPresetsTab(ipcClient *ipc.Client, cfg *config.Config) PresetsTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Presets"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	pt := PresetsTab{
		list:      l,
		ipcClient: ipcClient,
		cfg:       cfg,
		tileCount: 8,
	}
	if data, err := ipcClient.ListPresets(); err == nil {
		pt.lastPreset = data.LastPreset
	}
	pt.rebuildItems()
	return pt
}

func (pt *PresetsTab) rebuildItems() {
	items := make([]list.Item, 0, len(pt.cfg.Presets))
	for i, p := range pt.cfg.Presets {
		items = append(items, presetItem{number: i + 1, preset: p, last: i+1 == pt.lastPreset})
	}
	pt.list.SetItems(items)
}

// Update implements tea.Model.
func (pt PresetsTab) Update(msg tea.Msg) (PresetsTab, tea.Cmd) {
	if pt.editing {
		return pt.updateEditing(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pt.width = msg.Width
		pt.height = msg.Height
		pt.list.SetSize(pt.sidebarWidth(), max(pt.height-2, 1))
		return pt, nil

	case clearStatusMsg:
		pt.statusText = ""
		return pt, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "a":
			return pt.applySelected()
		case " ":
			idx := pt.list.Index()
			if idx >= 0 && idx < len(pt.cfg.Presets) {
				pt.cfg.Presets[idx].Enabled = !pt.cfg.Presets[idx].Enabled
				pt.rebuildItems()
			}
			return pt, nil
		case "e":
			pt.startEditing()
			return pt, pt.form.Init()
		case "[":
			pt.tileCount = max(pt.tileCount-1, 1)
			return pt, nil
		case "]":
			pt.tileCount++
			return pt, nil
		}
	}

	var cmd tea.Cmd
	pt.list, cmd = pt.list.Update(msg)
	return pt, cmd
}

func (pt PresetsTab) sidebarWidth() int {
	return min(max(pt.width*30/100, 20), 32)
}

func (pt PresetsTab) applySelected() (PresetsTab, tea.Cmd) {
	n := pt.list.Index() + 1
	if err := pt.ipcClient.ApplyPreset(n); err != nil {
		pt.statusText = errStyle.Render(fmt.Sprintf("error: %v", err))
	} else {
		pt.lastPreset = n
		pt.statusText = okStyle.Render(fmt.Sprintf("applied preset %d", n))
		pt.rebuildItems()
	}
	return pt, clearStatusAfter()
}

func (pt *PresetsTab) startEditing() {
	pt.editIdx = pt.list.Index()
	p := pt.cfg.Presets[pt.editIdx]

	pt.fEnabled = p.Enabled
	pt.fColumns = strconv.Itoa(p.Columns)
	pt.fRows = strconv.Itoa(p.Rows)
	pt.fRegions = config.FormatRegions(p.Regions)
	pt.fHotkey = p.Hotkey

	w := max(pt.width-4, 40)
	pt.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("enabled").
				Title(fmt.Sprintf("Preset %d enabled", pt.editIdx+1)).
				Value(&pt.fEnabled),
			huh.NewInput().
				Key("columns").
				Title("Columns").
				Validate(validatePositive).
				Value(&pt.fColumns),
			huh.NewInput().
				Key("rows").
				Title("Rows").
				Validate(validatePositive).
				Value(&pt.fRows),
			huh.NewInput().
				Key("regions").
				Title("Regions").
				Description("x,y,w,h,mode,display; one entry per region (mode 1 follows the display)").
				Validate(validateRegions).
				Value(&pt.fRegions),
			huh.NewInput().
				Key("hotkey").
				Title("Hotkey").
				Description("X11 keybinding, e.g. Mod4-Mod1-1; empty disables").
				Value(&pt.fHotkey),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	pt.editing = true
}

func (pt PresetsTab) updateEditing(msg tea.Msg) (PresetsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			pt.editing = false
			pt.form = nil
			return pt, nil
		}
	case tea.WindowSizeMsg:
		pt.width = msg.Width
		pt.height = msg.Height
	}

	form, cmd := pt.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		pt.form = f
	}

	if pt.form.State == huh.StateCompleted {
		pt.applyForm()
		pt.editing = false
		pt.form = nil
		pt.rebuildItems()
		return pt, nil
	}
	return pt, cmd
}

func (pt *PresetsTab) applyForm() {
	p := &pt.cfg.Presets[pt.editIdx]
	p.Enabled = pt.fEnabled
	if n, err := strconv.Atoi(strings.TrimSpace(pt.fColumns)); err == nil {
		p.Columns = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(pt.fRows)); err == nil {
		p.Rows = n
	}
	if regions, err := config.ParseRegions(pt.fRegions); err == nil {
		p.Regions = regions
	}
	p.Hotkey = strings.TrimSpace(pt.fHotkey)
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("must be a whole number >= 1")
	}
	return nil
}

func validateRegions(s string) error {
	_, err := config.ParseRegions(s)
	return err
}

// View implements tea.Model.
func (pt PresetsTab) View() string {
	if pt.editing && pt.form != nil {
		return lipgloss.NewStyle().Padding(0, 1).Render(pt.form.View())
	}

	sidebar := pt.list.View()
	detailW := max(pt.width-pt.sidebarWidth()-2, 10)
	detail := pt.renderDetail(detailW, max(pt.height-2, 3))
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", detail)
	if pt.statusText != "" {
		body += "\n" + pt.statusText
	}
	return body
}

func (pt PresetsTab) renderDetail(width, height int) string {
	item, ok := pt.list.SelectedItem().(presetItem)
	if !ok {
		return ""
	}
	p := item.preset
	lines := []string{
		headingStyle.Render(fmt.Sprintf("Preset %d", item.number)) + "  " + p.String(),
		dimStyle.Render("regions: " + config.FormatRegions(p.Regions)),
		dimStyle.Render(fmt.Sprintf("preview with %d windows ([ and ] to change): %s", pt.tileCount, summarizePreset(p, pt.tileCount))),
		"",
	}
	canvasH := max(height-len(lines), 3)
	lines = append(lines, renderPresetPreview(p, pt.tileCount, width, canvasH)...)
	return strings.Join(lines, "\n")
}
