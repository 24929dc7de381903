package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/ipc"
)

type statusTickMsg struct{}

type statusResultMsg struct {
	status *ipc.StatusData
	err    error
}

// StatusTab shows the daemon's live routing state and drives its actions.
type StatusTab struct {
	client *ipc.Client
	status *ipc.StatusData
	err    error

	statusText string

	width  int
	height int
}

// NewStatusTab creates a StatusTab polling client.
func NewStatusTab(client *ipc.Client) StatusTab {
	return StatusTab{client: client}
}

// Connected reports whether the last poll reached the daemon.
func (s StatusTab) Connected() bool {
	return s.status != nil
}

func (s StatusTab) fetch() tea.Cmd {
	client := s.client
	return func() tea.Msg {
		st, err := client.GetStatus()
		return statusResultMsg{status: st, err: err}
	}
}

// Init implements tea.Model.
func (s StatusTab) Init() tea.Cmd {
	return s.fetch()
}

// Update implements tea.Model.
func (s StatusTab) Update(msg tea.Msg) (StatusTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case statusTickMsg:
		return s, s.fetch()

	case statusResultMsg:
		s.status, s.err = msg.status, msg.err
		if msg.err != nil {
			s.status = nil
		}
		return s, tea.Tick(statusInterval, func(time.Time) tea.Msg {
			return statusTickMsg{}
		})

	case clearStatusMsg:
		s.statusText = ""
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg.String())
	}
	return s, nil
}

func (s StatusTab) handleKey(key string) (StatusTab, tea.Cmd) {
	if s.status == nil {
		return s, nil
	}
	var (
		err  error
		done string
	)
	switch key {
	case "a":
		err, done = s.client.Activate(), "activated"
	case "r":
		err, done = s.client.Release(), "released"
	case "m":
		next := nextMode(s.status.Mode)
		err, done = s.client.SetMode(next), "mode: "+next
	case "f":
		var n int
		n, err = s.client.AutoFind()
		done = fmt.Sprintf("auto-find assigned %d window(s)", n)
	case "p":
		var p string
		p, err = s.client.TogglePriority()
		done = "layout priority: " + p
	case "+":
		var n int
		n, err = s.client.AddGroup()
		done = fmt.Sprintf("added group %d", n)
	case "-":
		err, done = s.client.RemoveGroup(s.status.Group), fmt.Sprintf("removed group %d", s.status.Group)
	case "left", "h":
		g := wrapGroup(s.status.Group-1, len(s.status.Groups))
		err, done = s.client.SelectGroup(g), fmt.Sprintf("group %d", g)
	case "right", "l":
		g := wrapGroup(s.status.Group+1, len(s.status.Groups))
		err, done = s.client.SelectGroup(g), fmt.Sprintf("group %d", g)
	default:
		return s, nil
	}
	if err != nil {
		s.statusText = errStyle.Render(err.Error())
	} else {
		s.statusText = okStyle.Render(done)
	}
	return s, tea.Batch(s.fetch(), clearStatusAfter())
}

// nextMode cycles group, all_group, mirror_all.
func nextMode(mode string) string {
	switch mode {
	case config.ModeGroup:
		return config.ModeAllGroup
	case config.ModeAllGroup:
		return config.ModeMirrorAll
	default:
		return config.ModeGroup
	}
}

// wrapGroup maps n onto 1..count.
func wrapGroup(n, count int) int {
	if count <= 0 {
		return 1
	}
	return ((n-1)%count+count)%count + 1
}

// View implements tea.Model.
func (s StatusTab) View() string {
	style := lipgloss.NewStyle().Width(s.width).Height(s.height).Padding(0, 1)
	if s.status == nil {
		msg := "daemon not running (start it with: multibox daemon)"
		if s.err != nil {
			msg += "\n" + dimStyle.Render(s.err.Error())
		}
		return style.Render(msg)
	}
	body := renderStatus(s.status)
	if s.statusText != "" {
		body += "\n\n" + s.statusText
	}
	return style.Render(body)
}

func renderStatus(st *ipc.StatusData) string {
	var b strings.Builder
	routing := "released"
	if st.Active {
		routing = okStyle.Render("routing input")
	}
	fmt.Fprintf(&b, "%s  %s   %s\n", headingStyle.Render("Mode:"), st.Mode, routing)
	fmt.Fprintf(&b, "%s  %s", headingStyle.Render("Layout priority:"), st.LayoutPriority)
	if st.LastPreset > 0 {
		fmt.Fprintf(&b, "   last preset %d", st.LastPreset)
	}
	b.WriteString("\n")
	if st.Session {
		fmt.Fprintf(&b, "%s  open %s\n", headingStyle.Render("Switching:"), dimStyle.Render(st.SessionID))
	}
	if st.PostFailures > 0 {
		b.WriteString(errStyle.Render(fmt.Sprintf("%d post failure(s)", st.PostFailures)) + "\n")
	}
	fmt.Fprintf(&b, "%s\n", dimStyle.Render("up "+(time.Duration(st.UptimeSeconds)*time.Second).String()))

	for _, g := range st.Groups {
		b.WriteString("\n")
		title := fmt.Sprintf("Group %d", g.Number)
		if g.Number == st.Group {
			title += " *"
		}
		b.WriteString(headingStyle.Render(title) + "\n")
		for _, line := range pairLines(g.Controllers) {
			b.WriteString("  " + line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// pairLines renders one line per pair: left controller then right.
func pairLines(controllers []ipc.ControllerInfo) []string {
	var lines []string
	byPair := map[int][]ipc.ControllerInfo{}
	var order []int
	for _, c := range controllers {
		if _, ok := byPair[c.Pair]; !ok {
			order = append(order, c.Pair)
		}
		byPair[c.Pair] = append(byPair[c.Pair], c)
	}
	for _, p := range order {
		cells := make([]string, 0, 2)
		for _, c := range byPair[p] {
			cells = append(cells, controllerCell(c))
		}
		lines = append(lines, fmt.Sprintf("pair %d  %s", p+1, strings.Join(cells, "   ")))
	}
	return lines
}

func controllerCell(c ipc.ControllerInfo) string {
	role := "L"
	if c.Role == "right" {
		role = "R"
	}
	win := dimStyle.Render("(empty)")
	if c.HasWindow {
		win = fmt.Sprintf("0x%08x", c.Window)
	}
	cell := fmt.Sprintf("%s#%-2d %s", role, c.Ordinal, win)
	if c.Focused {
		cell += " *"
	}
	if c.PostError {
		cell = errStyle.Render(cell + " !")
	} else if c.Active {
		cell = okStyle.Render(cell)
	}
	return cell
}
