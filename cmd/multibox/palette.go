package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/multibox/internal/ipc"
	"github.com/1broseidon/multibox/internal/palette"
)

func runPalette(args []string) int {
	fs := flag.NewFlagSet("palette", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/multibox/config.yaml)")
	backendName := fs.String("backend", "", "Palette program (default: palette_backend from config)")

	if len(args) > 0 && isHelp(args[0]) {
		fmt.Fprintln(os.Stderr, "Usage: multibox palette [--path PATH] [--backend NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show a command palette for multibox actions: activate/release, routing")
		fmt.Fprintln(os.Stderr, "mode, layout presets, groups, auto-find and layout priority.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Backends: rofi, fuzzel, wofi, dmenu (configured via palette_backend, default: auto).")
		return 0
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	name := *backendName
	if name == "" {
		res, err := loadConfig(*path)
		if err != nil {
			return fail(err)
		}
		name = res.Config.PaletteBackend
	}
	backend, err := palette.NewBackend(name)
	if err != nil {
		return fail(err)
	}

	if err := palette.Run(ipc.NewClient(), backend); err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return 0
		}
		return fail(err)
	}
	return 0
}
