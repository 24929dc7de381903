package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without choosing.
var ErrCancelled = errors.New("palette cancelled")

// Item is one row in a palette.
type Item struct {
	Label     string
	Action    string
	Icon      string // rofi icon name
	IsHeader  bool   // bold, not selectable
	IsDivider bool   // dim, not selectable
	IsActive  bool   // highlighted as current
}

func (i Item) selectable() bool {
	return !i.IsHeader && !i.IsDivider
}

// Backend shows items and returns the chosen one.
type Backend interface {
	Show(prompt string, items []Item, message string) (Item, error)
}

// backendOrder is the auto-detection priority.
var backendOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first palette program found in PATH.
func DetectBackend() (string, error) {
	for _, name := range backendOrder {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
}

// NewBackend creates a backend by name: auto, rofi, fuzzel, wofi or dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	b, ok := newMenuProgram(name)
	if !ok {
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(backendOrder, ", "))
	}
	if _, err := exec.LookPath(b.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return b, nil
}
