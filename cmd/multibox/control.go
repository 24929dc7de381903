package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/1broseidon/multibox/internal/ipc"
)

func printPresetUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  multibox preset list")
	fmt.Fprintln(w, "  multibox preset apply <1-4>")
}

func runPreset(args []string) int {
	if len(args) == 0 {
		printPresetUsage(os.Stderr)
		return 2
	}
	if isHelp(args[0]) {
		printPresetUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()
	switch args[0] {
	case "list":
		data, err := client.ListPresets()
		if err != nil {
			return fail(err)
		}
		writePresets(os.Stdout, data)
		return 0

	case "apply":
		if len(args) != 2 {
			printPresetUsage(os.Stderr)
			return 2
		}
		n, err := parseNumber("preset", args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if err := client.ApplyPreset(n); err != nil {
			return fail(err)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown preset command: %s\n\n", args[0])
		printPresetUsage(os.Stderr)
		return 2
	}
}

func writePresets(w io.Writer, data *ipc.PresetsData) {
	for _, p := range data.Presets {
		marker := " "
		if p.Number == data.LastPreset {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d  %s\n", marker, p.Number, p.Description)
		if p.Enabled {
			fmt.Fprintf(w, "     regions: %s\n", p.Regions)
		}
	}
}

func runPriority(args []string) int {
	if len(args) != 1 || args[0] != "toggle" {
		if len(args) > 0 && isHelp(args[0]) {
			fmt.Fprintln(os.Stdout, "Usage: multibox priority toggle")
			return 0
		}
		fmt.Fprintln(os.Stderr, "Usage: multibox priority toggle")
		return 2
	}
	p, err := ipc.NewClient().TogglePriority()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("layout_priority: %s\n", p)
	return 0
}

func runAutoFind(args []string) int {
	fs := flag.NewFlagSet("autofind", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: multibox autofind")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Assign client windows matching auto_find to empty slots and re-tile.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	n, err := ipc.NewClient().AutoFind()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("assigned: %d\n", n)
	return 0
}

func printGroupUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  multibox group select <n>")
	fmt.Fprintln(w, "  multibox group add")
	fmt.Fprintln(w, "  multibox group remove <n>")
}

func runGroup(args []string) int {
	if len(args) == 0 {
		printGroupUsage(os.Stderr)
		return 2
	}
	if isHelp(args[0]) {
		printGroupUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()
	switch args[0] {
	case "add":
		n, err := client.AddGroup()
		if err != nil {
			return fail(err)
		}
		fmt.Printf("group: %d\n", n)
		return 0

	case "select", "remove":
		if len(args) != 2 {
			printGroupUsage(os.Stderr)
			return 2
		}
		n, err := parseNumber("group", args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		call := client.SelectGroup
		if args[0] == "remove" {
			call = client.RemoveGroup
		}
		if err := call(n); err != nil {
			return fail(err)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown group command: %s\n\n", args[0])
		printGroupUsage(os.Stderr)
		return 2
	}
}

// parseNumber parses a 1-based index argument.
func parseNumber(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s number %q", what, s)
	}
	return n, nil
}
