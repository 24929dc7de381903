package palette

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/engine"
	"github.com/1broseidon/multibox/internal/ipc"
)

// Client is the daemon surface the palette drives.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	ListPresets() (*ipc.PresetsData, error)
	SetMode(mode string) error
	Activate() error
	Release() error
	ApplyPreset(n int) error
	TogglePriority() (string, error)
	AutoFind() (int, error)
	SelectGroup(n int) error
	AddGroup() (int, error)
	RemoveGroup(n int) error
}

// Action identifiers. Parameterised actions append ":<n>".
const (
	ActionActivate    = "activate"
	ActionRelease     = "release"
	ActionAutoFind    = "autofind"
	ActionPriority    = "priority"
	ActionAddGroup    = "group-add"
	actionMode        = "mode:"
	actionPreset      = "preset:"
	actionSelectGroup = "group-select:"
	actionRemoveGroup = "group-remove:"
)

// Run shows the multibox menu and executes the chosen action.
func Run(client Client, backend Backend) error {
	st, err := client.GetStatus()
	if err != nil {
		return err
	}
	presets, err := client.ListPresets()
	if err != nil {
		return err
	}

	menu := NewMenu(backend, "multibox", BuildMenu(st, presets))
	menu.SetMessage(html.EscapeString(ContextLine(st)))
	action, err := menu.Show()
	if err != nil {
		return err
	}
	return Execute(client, action)
}

// ContextLine summarises the daemon state for the message bar.
func ContextLine(st *ipc.StatusData) string {
	routing := "released"
	if st.Active {
		routing = "routing"
	}
	assigned := 0
	total := 0
	for _, g := range st.Groups {
		for _, c := range g.Controllers {
			total++
			if c.HasWindow {
				assigned++
			}
		}
	}
	return strings.Join([]string{
		st.Mode,
		routing,
		fmt.Sprintf("group %d/%d", st.Group, len(st.Groups)),
		fmt.Sprintf("%d/%d windows", assigned, total),
		st.LayoutPriority + " priority",
	}, " • ")
}

// BuildMenu lays out modes, presets, groups and one-shot actions.
func BuildMenu(st *ipc.StatusData, presets *ipc.PresetsData) []MenuItem {
	routing := MenuItem{Label: "Activate", Action: ActionActivate, Icon: "media-playback-start"}
	if st.Active {
		routing = MenuItem{Label: "Release", Action: ActionRelease, Icon: "media-playback-pause"}
	}

	modes := make([]MenuItem, 0, 3)
	for _, m := range []string{config.ModeGroup, config.ModeAllGroup, config.ModeMirrorAll} {
		modes = append(modes, MenuItem{Label: modeLabel(m), Action: actionMode + m, IsActive: m == st.Mode})
	}

	var layouts []MenuItem
	for _, p := range presets.Presets {
		if !p.Enabled {
			continue
		}
		layouts = append(layouts, MenuItem{
			Label:    fmt.Sprintf("Preset %d: %s", p.Number, p.Description),
			Action:   actionPreset + strconv.Itoa(p.Number),
			IsActive: p.Number == presets.LastPreset,
		})
	}
	if len(layouts) == 0 {
		layouts = []MenuItem{{Label: "No enabled presets", IsHeader: true}}
	}

	groups := make([]MenuItem, 0, 2*len(st.Groups)+2)
	for _, g := range st.Groups {
		groups = append(groups, MenuItem{
			Label:    fmt.Sprintf("Select group %d", g.Number),
			Action:   actionSelectGroup + strconv.Itoa(g.Number),
			IsActive: g.Number == st.Group,
		})
	}
	groups = append(groups, MenuItem{Label: "Add group", Action: ActionAddGroup, Icon: "list-add"})
	if len(st.Groups) > 1 {
		groups = append(groups, MenuItem{Label: "────────", IsDivider: true})
		for _, g := range st.Groups {
			groups = append(groups, MenuItem{
				Label:  fmt.Sprintf("Remove group %d", g.Number),
				Action: actionRemoveGroup + strconv.Itoa(g.Number),
				Icon:   "list-remove",
			})
		}
	}

	return []MenuItem{
		routing,
		{Label: "Mode", Icon: "input-keyboard", Submenu: modes},
		{Label: "Layouts", Icon: "view-grid", Submenu: layouts},
		{Label: "Groups", Icon: "view-list", Submenu: groups},
		{Label: "Auto-find windows", Action: ActionAutoFind, Icon: "edit-find"},
		{Label: "Toggle layout priority (" + st.LayoutPriority + ")", Action: ActionPriority, Icon: "view-refresh"},
	}
}

func modeLabel(mode string) string {
	m, err := engine.ParseMode(mode)
	if err != nil {
		return mode
	}
	return m.DisplayName()
}

// Execute performs action against the daemon.
func Execute(client Client, action string) error {
	switch action {
	case ActionActivate:
		return client.Activate()
	case ActionRelease:
		return client.Release()
	case ActionAutoFind:
		_, err := client.AutoFind()
		return err
	case ActionPriority:
		_, err := client.TogglePriority()
		return err
	case ActionAddGroup:
		_, err := client.AddGroup()
		return err
	}

	if mode, ok := strings.CutPrefix(action, actionMode); ok {
		return client.SetMode(mode)
	}
	for _, p := range []struct {
		prefix string
		run    func(int) error
	}{
		{actionPreset, client.ApplyPreset},
		{actionSelectGroup, client.SelectGroup},
		{actionRemoveGroup, client.RemoveGroup},
	} {
		rest, ok := strings.CutPrefix(action, p.prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("palette: bad action %q", action)
		}
		return p.run(n)
	}
	return fmt.Errorf("palette: unknown action %q", action)
}
