package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// menuProgram drives a dmenu-compatible launcher over stdin/stdout.
type menuProgram struct {
	command string

	markup        bool // pango markup in rows
	icons         bool
	nonSelectable bool // rows can be marked non-selectable
	indexOutput   bool // prints the row index instead of its text
	rowProperties bool // rofi's \0key\x1fvalue row protocol
	message       bool
}

func newMenuProgram(name string) (*menuProgram, bool) {
	switch name {
	case "rofi":
		return &menuProgram{command: "rofi", markup: true, icons: true, nonSelectable: true, indexOutput: true, rowProperties: true, message: true}, true
	case "fuzzel":
		return &menuProgram{command: "fuzzel", icons: true, indexOutput: true}, true
	case "wofi":
		return &menuProgram{command: "wofi", markup: true}, true
	case "dmenu":
		return &menuProgram{command: "dmenu"}, true
	}
	return nil, false
}

// Show runs the program and maps its output back to an item.
func (p *menuProgram) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}
	rows := make([]Item, len(items))
	copy(rows, items)
	if !p.indexOutput {
		disambiguate(rows)
	}

	cmd := exec.Command(p.command, p.args(prompt, message, rows)...)
	cmd.Stdin = strings.NewReader(p.input(rows))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", p.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", p.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return p.parse(selection, rows)
}

func (p *menuProgram) args(prompt, message string, rows []Item) []string {
	var args []string
	switch p.command {
	case "rofi":
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active []string
		selected := -1
		for i, r := range rows {
			if !r.selectable() {
				continue
			}
			if selected < 0 {
				selected = i
			}
			if r.IsActive {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
		if message != "" && p.message {
			args = append(args, "-mesg", message)
		}
	case "fuzzel":
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case "wofi":
		args = []string{"--dmenu", "--allow-markup"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	default:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

func (p *menuProgram) input(rows []Item) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = p.row(r)
	}
	return strings.Join(lines, "\n")
}

// row renders one item. Rofi row properties follow a single NUL and are
// separated by \x1f.
func (p *menuProgram) row(it Item) string {
	text := cleanLabel(it.Label)
	if p.markup {
		text = html.EscapeString(text)
		switch {
		case it.IsHeader:
			text = "<b>" + text + "</b>"
		case it.IsDivider:
			text = "<span foreground='#666666'>" + text + "</span>"
		}
	}
	if !p.rowProperties {
		return text
	}
	var props []string
	if !it.selectable() && p.nonSelectable {
		props = append(props, "nonselectable", "true")
	}
	if it.Icon != "" && p.icons {
		props = append(props, "icon", cleanField(it.Icon))
	}
	if len(props) == 0 {
		return text
	}
	return text + "\x00" + strings.Join(props, "\x1f")
}

func (p *menuProgram) parse(selection string, rows []Item) (Item, error) {
	if p.indexOutput {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(rows) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return rows[idx], nil
		}
	}
	for _, r := range rows {
		if cleanLabel(r.Label) == selection {
			return r, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

// disambiguate suffixes repeated labels for programs that print row text.
func disambiguate(rows []Item) {
	seen := make(map[string]int)
	for i := range rows {
		if !rows[i].selectable() {
			continue
		}
		key := cleanLabel(rows[i].Label)
		if n := seen[key]; n > 0 {
			rows[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
		}
		seen[key]++
	}
}

func cleanLabel(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}

func cleanField(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\x00", " ", "\x1f", " ", "\r", " ", "\n", " ").Replace(s))
}

// isCancelExit reports the exit codes launchers use for escape (1) and
// ctrl-c (130).
func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	code := exitErr.ExitCode()
	return code == 1 || code == 130
}
