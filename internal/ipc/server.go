package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/controller"
	"github.com/1broseidon/multibox/internal/engine"
	"github.com/1broseidon/multibox/internal/runtimepath"
)

// Engine is the engine surface the server drives.
type Engine interface {
	Status() engine.Status
	SetMode(m engine.Mode)
	Activate() error
	ReleaseFocus()
	ApplyLayoutPreset(n int) error
	Presets() []config.LayoutPreset
	ToggleLayoutPriority() controller.Priority
	SelectGroup(index int) error
	AddGroup() int
	RemoveGroup(index int) error
}

// Hooks are daemon-level actions that need more than the engine.
type Hooks struct {
	// Reload re-reads the configuration and applies it.
	Reload func() error
	// AutoFind discovers client windows and assigns them.
	AutoFind func() (int, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	hooks        Hooks
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(eng Engine, hooks Hooks) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, eng, hooks), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, eng Engine, hooks Hooks) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		engine:     eng,
		hooks:      hooks,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC: listening on %s", s.socketPath)

	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC: accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC: read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("IPC: failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("IPC: failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandPing:
		return ok(nil)
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return ok(statusData(s.engine.Status()))
	case CommandSetMode:
		return s.handleSetMode(req.Payload)
	case CommandActivate:
		if err := s.engine.Activate(); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to activate: %v", err))
		}
		return ok(nil)
	case CommandRelease:
		s.engine.ReleaseFocus()
		return ok(nil)
	case CommandApplyPreset:
		return s.handleApplyPreset(req.Payload)
	case CommandListPresets:
		return s.handleListPresets()
	case CommandTogglePriority:
		p := s.engine.ToggleLayoutPriority()
		return ok(PriorityData{LayoutPriority: string(p)})
	case CommandAutoFind:
		return s.handleAutoFind()
	case CommandSelectGroup:
		return s.handleGroup(req.Payload, s.engine.SelectGroup)
	case CommandAddGroup:
		return ok(GroupData{Group: s.engine.AddGroup()})
	case CommandRemoveGroup:
		return s.handleGroup(req.Payload, s.engine.RemoveGroup)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")
	if s.hooks.Reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.hooks.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	log.Println("IPC: Config reloaded successfully")
	return ok(nil)
}

func (s *Server) handleSetMode(payload json.RawMessage) *Response {
	var req SetModePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid mode payload: %v", err))
	}
	m, err := engine.ParseMode(req.Mode)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	s.engine.SetMode(m)
	return ok(nil)
}

func (s *Server) handleApplyPreset(payload json.RawMessage) *Response {
	var req PresetPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid preset payload: %v", err))
	}
	if err := s.engine.ApplyLayoutPreset(req.Preset); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to apply preset: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleListPresets() *Response {
	presets := s.engine.Presets()
	data := PresetsData{
		Presets:    make([]PresetInfo, len(presets)),
		LastPreset: s.engine.Status().LastPreset,
	}
	for i, p := range presets {
		data.Presets[i] = PresetInfo{
			Number:      i + 1,
			Enabled:     p.Enabled,
			Columns:     p.Columns,
			Rows:        p.Rows,
			Regions:     config.FormatRegions(p.Regions),
			Hotkey:      p.Hotkey,
			Description: p.String(),
		}
	}
	return ok(data)
}

func (s *Server) handleAutoFind() *Response {
	if s.hooks.AutoFind == nil {
		return NewErrorResponse("auto-find is not supported")
	}
	n, err := s.hooks.AutoFind()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Auto-find failed: %v", err))
	}
	return ok(AutoFindData{Assigned: n})
}

// handleGroup decodes a 1-based group number and calls fn with the
// zero-based index.
func (s *Server) handleGroup(payload json.RawMessage, fn func(int) error) *Response {
	var req GroupPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid group payload: %v", err))
	}
	if req.Group < 1 {
		return NewErrorResponse(fmt.Sprintf("group must be >= 1, got %d", req.Group))
	}
	if err := fn(req.Group - 1); err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(nil)
}

func statusData(st engine.Status) StatusData {
	data := StatusData{
		Mode:           st.Mode.String(),
		Active:         st.Active,
		Group:          st.Group,
		Session:        st.Session,
		SessionID:      st.SessionID,
		LayoutPriority: string(st.Priority),
		LastPreset:     st.LastPreset,
		PostFailures:   st.PostFailures,
		UptimeSeconds:  int64(st.Uptime.Seconds()),
		Groups:         make([]GroupInfo, len(st.Groups)),
	}
	for i, g := range st.Groups {
		info := GroupInfo{Number: g.Number, Controllers: make([]ControllerInfo, len(g.Controllers))}
		for j, c := range g.Controllers {
			info.Controllers[j] = ControllerInfo{
				Ordinal:   c.Ordinal,
				Role:      c.Role.String(),
				Pair:      c.Pair,
				Window:    uint32(c.Window),
				HasWindow: c.HasWindow,
				PostError: c.PostError,
				Active:    c.InActive,
				Focused:   c.Focused,
			}
		}
		data.Groups[i] = info
	}
	return data
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
