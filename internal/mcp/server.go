package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/multibox/internal/ipc"
)

const (
	ServerName    = "multibox"
	ServerVersion = "0.1.0"
)

// Client is the daemon control surface the tools call.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	SetMode(mode string) error
	Activate() error
	Release() error
	ApplyPreset(n int) error
	ListPresets() (*ipc.PresetsData, error)
	TogglePriority() (string, error)
	AutoFind() (int, error)
	SelectGroup(n int) error
	AddGroup() (int, error)
	RemoveGroup(n int) error
}

var _ Client = (*ipc.Client)(nil)

// Server is the MCP server exposing the daemon's controls.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
}

// NewServer creates a server that forwards every tool call to client.
func NewServer(client Client) *Server {
	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Show the routing mode, whether input is being routed, the current group, the layout priority and every controller with its window.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_mode",
		Description: "Switch the input routing mode. group sends bound keys to the current group, all_group to every group, mirror_all sends every key unchanged to every window.",
	}, s.handleSetMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate",
		Description: "Grab the keyboard and start routing input to the controlled windows.",
	}, s.handleActivate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "release",
		Description: "Stop routing input and give the keyboard back to the desktop.",
	}, s.handleRelease)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_preset",
		Description: "Tile every assigned window with a layout preset (1-4). Disabled presets are rejected.",
	}, s.handleApplyPreset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_presets",
		Description: "List the four layout presets with their grid, regions and hotkey.",
	}, s.handleListPresets)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_layout_priority",
		Description: "Flip tiling order between pair (left/right of each pair together) and role (all left windows first), then re-tile.",
	}, s.handleTogglePriority)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "auto_find",
		Description: "Find client windows matching auto_find in the config, assign them to empty slots and re-tile.",
	}, s.handleAutoFind)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "select_group",
		Description: "Make a group current. Group mode routes input to the current group only.",
	}, s.handleSelectGroup)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_group",
		Description: "Append an empty group with one pair of controllers.",
	}, s.handleAddGroup)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_group",
		Description: "Remove a group, disconnecting its windows. The last group cannot be removed.",
	}, s.handleRemoveGroup)
}
