package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/ipc"
)

type savePhase int

const (
	saveHidden savePhase = iota
	savePreview
	saveResult
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// SaveOverlay previews pending config changes and writes them on confirm.
type SaveOverlay struct {
	phase    savePhase
	lines    []diffLine
	offset   int
	err      error
	reloaded bool
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show diffs current against original and opens the preview.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err, s.reloaded, s.offset = nil, false, 0
	s.lines = computeDiffLines(original, current)
	if len(s.lines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. An empty path saves to
// the default config location.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string, client *ipc.Client, connected bool) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	if s.phase == saveResult {
		s.phase = saveHidden
		return s
	}
	switch km.String() {
	case "esc", "n":
		s.phase = saveHidden
	case "enter", "y":
		if path == "" {
			s.err = cfg.Save()
		} else {
			s.err = cfg.SaveTo(path)
		}
		if s.err == nil && connected && client != nil {
			s.reloaded = client.Reload() == nil
		}
		s.phase = saveResult
	case "up", "k":
		s.offset = max(s.offset-1, 0)
	case "down", "j":
		s.offset = min(s.offset+1, max(len(s.lines)-1, 0))
	}
	return s
}

// View renders the overlay centred in a width x height area.
func (s SaveOverlay) View(width, height int) string {
	var content string
	boxW := min(max(width-8, 30), 80)
	switch s.phase {
	case savePreview:
		content = s.previewContent(boxW-6, max(height-10, 3))
	case saveResult:
		boxW = min(boxW, 60)
		content = s.resultContent()
	default:
		return ""
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (s SaveOverlay) previewContent(innerW, rows int) string {
	removed := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	context := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	end := min(s.offset+rows, len(s.lines))
	start := max(min(s.offset, end-rows), 0)
	var out []string
	for _, dl := range s.lines[start:end] {
		text := dl.text
		if len(text) > innerW-2 {
			text = text[:max(innerW-2, 0)]
		}
		switch dl.kind {
		case diffAdded:
			out = append(out, okStyle.Render("+ "+text))
		case diffRemoved:
			out = append(out, removed.Render("- "+text))
		default:
			out = append(out, context.Render("  "+text))
		}
	}
	return headingStyle.Render("Save config: pending changes") + "\n\n" +
		strings.Join(out, "\n") + "\n\n" +
		dimStyle.Render("enter: save  esc: cancel  j/k: scroll")
}

func (s SaveOverlay) resultContent() string {
	var msg string
	if s.err != nil {
		msg = errStyle.Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = okStyle.Bold(true).Render("Config saved")
		if s.reloaded {
			msg += "\n" + okStyle.Render("Daemon reloaded")
		}
	}
	return msg + "\n\n" + dimStyle.Render("press any key to dismiss")
}

// computeDiffLines compares configs one top-level key at a time. Each
// changed key contributes its shared header line, then the lines only the
// original has, then the lines only the current config has.
func computeDiffLines(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	before, _, err := configSections(original)
	if err != nil {
		return nil
	}
	after, order, err := configSections(current)
	if err != nil {
		return nil
	}

	var lines []diffLine
	for _, key := range order {
		if before[key] == after[key] {
			continue
		}
		old := splitLines(before[key])
		cur := splitLines(after[key])
		if len(old) > 0 && len(cur) > 0 && old[0] == cur[0] {
			lines = append(lines, diffLine{kind: diffContext, text: cur[0]})
			old, cur = old[1:], cur[1:]
		}
		for _, l := range subtractLines(old, cur) {
			lines = append(lines, diffLine{kind: diffRemoved, text: l})
		}
		for _, l := range subtractLines(cur, old) {
			lines = append(lines, diffLine{kind: diffAdded, text: l})
		}
	}
	return lines
}

// configSections renders each top-level key of cfg as its own YAML
// document, returning them with the key order.
func configSections(cfg *config.Config) (map[string]string, []string, error) {
	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil, nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("config did not encode as a mapping")
	}
	sections := make(map[string]string, len(root.Content)/2)
	order := make([]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		pair := &yaml.Node{Kind: yaml.MappingNode, Content: root.Content[i : i+2]}
		data, err := yaml.Marshal(pair)
		if err != nil {
			return nil, nil, err
		}
		sections[key] = string(data)
		order = append(order, key)
	}
	return sections, order, nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// subtractLines returns the lines of a that b does not account for,
// counting repeats, in a's order.
func subtractLines(a, b []string) []string {
	counts := make(map[string]int, len(b))
	for _, l := range b {
		counts[l]++
	}
	var out []string
	for _, l := range a {
		if counts[l] > 0 {
			counts[l]--
			continue
		}
		out = append(out, l)
	}
	return out
}

// cloneConfig deep-copies cfg through YAML.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil
	}
	return &clone
}
