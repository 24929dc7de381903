package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/multibox/internal/ipc"
	"github.com/1broseidon/multibox/internal/mcp"
	"github.com/1broseidon/multibox/internal/runtimepath"
)

func runMCP(args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		fmt.Fprintln(os.Stderr, "Usage: multibox mcp serve [--socket PATH]")
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	if args[0] != "serve" {
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n", args[0])
		return 2
	}

	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	socket := fs.String("socket", "", "daemon control socket (default: runtime dir)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: multibox mcp serve [--socket PATH]")
		fmt.Fprintln(fs.Output(), "")
		fmt.Fprintln(fs.Output(), "Serve MCP over stdio. Every tool call is forwarded to the running daemon.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args[1:]); !ok {
		return code
	}
	if *socket != "" {
		os.Setenv(runtimepath.SocketEnv, *socket)
	}

	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(ipc.NewClient()).Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("MCP: server stopped: %v", err)
		return 1
	}
	return 0
}
