package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing           CommandType = "PING"
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandSetMode        CommandType = "SET_MODE"
	CommandActivate       CommandType = "ACTIVATE"
	CommandRelease        CommandType = "RELEASE"
	CommandApplyPreset    CommandType = "APPLY_PRESET"
	CommandListPresets    CommandType = "LIST_PRESETS"
	CommandTogglePriority CommandType = "TOGGLE_PRIORITY"
	CommandAutoFind       CommandType = "AUTO_FIND"
	CommandSelectGroup    CommandType = "SELECT_GROUP"
	CommandAddGroup       CommandType = "ADD_GROUP"
	CommandRemoveGroup    CommandType = "REMOVE_GROUP"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ControllerInfo describes one controller in GET_STATUS.
type ControllerInfo struct {
	Ordinal   int    `json:"ordinal"`
	Role      string `json:"role"`
	Pair      int    `json:"pair"`
	Window    uint32 `json:"window"`
	HasWindow bool   `json:"has_window"`
	PostError bool   `json:"post_error"`
	Active    bool   `json:"active"`
	Focused   bool   `json:"focused,omitempty"`
}

// GroupInfo describes one group in GET_STATUS.
type GroupInfo struct {
	Number      int              `json:"number"`
	Controllers []ControllerInfo `json:"controllers"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Mode           string      `json:"mode"`
	Active         bool        `json:"active"`
	Group          int         `json:"group"`
	Session        bool        `json:"session"`
	SessionID      string      `json:"session_id,omitempty"`
	LayoutPriority string      `json:"layout_priority"`
	LastPreset     int         `json:"last_preset"`
	PostFailures   int         `json:"post_failures"`
	UptimeSeconds  int64       `json:"uptime_seconds"`
	Groups         []GroupInfo `json:"groups"`
}

// PresetInfo describes one layout preset in LIST_PRESETS.
type PresetInfo struct {
	Number      int    `json:"number"`
	Enabled     bool   `json:"enabled"`
	Columns     int    `json:"columns"`
	Rows        int    `json:"rows"`
	Regions     string `json:"regions"`
	Hotkey      string `json:"hotkey,omitempty"`
	Description string `json:"description"`
}

// PresetsData represents the data returned by LIST_PRESETS
type PresetsData struct {
	Presets    []PresetInfo `json:"presets"`
	LastPreset int          `json:"last_preset"`
}

// SetModePayload is the payload for SET_MODE.
type SetModePayload struct {
	Mode string `json:"mode"`
}

// PresetPayload is the payload for APPLY_PRESET.
type PresetPayload struct {
	Preset int `json:"preset"`
}

// GroupPayload is the payload for SELECT_GROUP and REMOVE_GROUP. Group is
// 1-based.
type GroupPayload struct {
	Group int `json:"group"`
}

// GroupData is returned by ADD_GROUP.
type GroupData struct {
	Group int `json:"group"`
}

// PriorityData is returned by TOGGLE_PRIORITY.
type PriorityData struct {
	LayoutPriority string `json:"layout_priority"`
}

// AutoFindData is returned by AUTO_FIND.
type AutoFindData struct {
	Assigned int `json:"assigned"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
