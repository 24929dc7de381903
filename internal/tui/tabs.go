package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/multibox/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabStatus Tab = iota
	TabPresets
	TabBindings
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabStatus:
		return "Status"
	case TabPresets:
		return "Presets"
	case TabBindings:
		return "Key Bindings"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("F%d:%s", int(i)+1, i)
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar renders the daemon connection line.
func renderStatusBar(st *ipc.StatusData, width int) string {
	var status string
	if st != nil {
		dot := okStyle.Render("●")
		routing := "released"
		if st.Active {
			routing = "routing"
		}
		parts := []string{
			dot + " daemon connected",
			"mode:" + st.Mode,
			routing,
			fmt.Sprintf("group:%d/%d", st.Group, len(st.Groups)),
		}
		if st.Session {
			parts = append(parts, "switching")
		}
		status = strings.Join(parts, "  ")
	} else {
		status = dimStyle.Render("●") + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderHelpBar renders the bottom keybinding bar for the active tab.
func renderHelpBar(active Tab, width int) string {
	var help string
	switch active {
	case TabStatus:
		help = "a: activate  r: release  m: mode  f: auto-find  p: priority  +/-: group  ←/→: select group"
	case TabPresets:
		help = "enter: apply  e: edit  space: enable/disable  [/]: preview windows"
	case TabBindings:
		help = "n: new  e: edit  x: delete"
	}
	help += "  tab: switch  ctrl-s: save  q: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
