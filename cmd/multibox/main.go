package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/1broseidon/multibox/internal/daemon"
	"github.com/1broseidon/multibox/internal/ipc"
	"github.com/1broseidon/multibox/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "mode":
		os.Exit(runMode(os.Args[2:]))
	case "activate":
		os.Exit(runSimple("activate", "Grab the keyboard and start routing input.", os.Args[2:], func(c *ipc.Client) error { return c.Activate() }))
	case "release":
		os.Exit(runSimple("release", "Stop routing input and release the keyboard.", os.Args[2:], func(c *ipc.Client) error { return c.Release() }))
	case "preset":
		os.Exit(runPreset(os.Args[2:]))
	case "priority":
		os.Exit(runPriority(os.Args[2:]))
	case "autofind":
		os.Exit(runAutoFind(os.Args[2:]))
	case "group":
		os.Exit(runGroup(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "palette":
		os.Exit(runPalette(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: multibox <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the multibox daemon (foreground)")
	fmt.Fprintln(w, "  status              Show routing mode, groups and windows")
	fmt.Fprintln(w, "  mode <mode>         Set the routing mode (group, all_group, mirror_all)")
	fmt.Fprintln(w, "  activate            Start routing input")
	fmt.Fprintln(w, "  release             Stop routing input")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  preset list         List layout presets")
	fmt.Fprintln(w, "  preset apply <n>    Tile windows with preset n (1-4)")
	fmt.Fprintln(w, "  priority toggle     Switch layout priority between pair and role")
	fmt.Fprintln(w, "  autofind            Assign matching client windows to empty slots")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  group select <n>    Make group n current")
	fmt.Fprintln(w, "  group add           Append an empty group")
	fmt.Fprintln(w, "  group remove <n>    Remove group n")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  palette             Open command palette")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'multibox <command> --help' for command-specific options.")
}

// parseFlags parses args and reports the exit code to use when parsing
// stopped the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func runDaemon(args []string) int {
	if len(args) > 0 && isHelp(args[0]) {
		fmt.Fprintln(os.Stdout, "Usage: multibox daemon")
		return 0
	}
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: multibox daemon")
		return 2
	}
	if err := daemon.Run(); err != nil {
		log.Printf("Daemon: %v", err)
		return 1
	}
	return 0
}

func runSimple(name, about string, args []string, call func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: multibox %s\n\n%s\n", name, about)
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}
	if err := call(ipc.NewClient()); err != nil {
		return fail(err)
	}
	return 0
}

func runMode(args []string) int {
	fs := flag.NewFlagSet("mode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: multibox mode <group|all_group|mirror_all>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Set the input routing mode.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if err := ipc.NewClient().SetMode(fs.Arg(0)); err != nil {
		return fail(err)
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: multibox status [--json] [--watch] [--interval D]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	watch := fs.Bool("watch", false, "Refresh until interrupted")
	interval := fs.Duration("interval", time.Second, "Refresh interval for --watch")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	show := func() error {
		st, err := client.GetStatus()
		if err != nil {
			return err
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}
		writeStatus(os.Stdout, st)
		return nil
	}

	if !*watch {
		if err := show(); err != nil {
			return fail(err)
		}
		return 0
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	for {
		if tty {
			fmt.Print("\x1b[H\x1b[2J")
		}
		if err := show(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if !tty {
			fmt.Println("---")
		}
		select {
		case <-sigCh:
			return 0
		case <-ticker.C:
		}
	}
}

// writeStatus prints st as aligned key: value lines followed by one line
// per controller.
func writeStatus(w io.Writer, st *ipc.StatusData) {
	fmt.Fprintf(w, "mode:            %s\n", st.Mode)
	fmt.Fprintf(w, "active:          %v\n", st.Active)
	fmt.Fprintf(w, "group:           %d/%d\n", st.Group, len(st.Groups))
	fmt.Fprintf(w, "layout_priority: %s\n", st.LayoutPriority)
	fmt.Fprintf(w, "last_preset:     %d\n", st.LastPreset)
	if st.Session {
		fmt.Fprintf(w, "switching:       %s\n", st.SessionID)
	}
	fmt.Fprintf(w, "post_failures:   %d\n", st.PostFailures)
	fmt.Fprintf(w, "uptime_seconds:  %d\n", st.UptimeSeconds)
	for _, g := range st.Groups {
		marker := ""
		if g.Number == st.Group {
			marker = " (current)"
		}
		fmt.Fprintf(w, "group %d%s\n", g.Number, marker)
		for _, c := range g.Controllers {
			window := "-"
			if c.HasWindow {
				window = fmt.Sprintf("0x%x", c.Window)
			}
			var flags []string
			if c.Active {
				flags = append(flags, "active")
			}
			if c.Focused {
				flags = append(flags, "focused")
			}
			if c.PostError {
				flags = append(flags, "post_error")
			}
			line := fmt.Sprintf("  #%-2d pair %d %-5s %s", c.Ordinal, c.Pair+1, c.Role, window)
			if len(flags) > 0 {
				line += " [" + strings.Join(flags, ",") + "]"
			}
			fmt.Fprintln(w, line)
		}
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/multibox/config.yaml)")

	if len(args) > 0 && isHelp(args[0]) {
		fmt.Fprintln(os.Stderr, "Usage: multibox tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive dashboard for the daemon's routing state, layout presets")
		fmt.Fprintln(os.Stderr, "and key bindings. Edits are saved with ctrl-s and reload the daemon.")
		return 0
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if err := tui.Run(*path); err != nil {
		return fail(err)
	}
	return 0
}
