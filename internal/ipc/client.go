package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/multibox/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		// Preset applies verify window geometry before replying.
		timeout: 10 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends cmd with an optional payload and decodes the reply into out
// when out is non-nil.
func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	return c.call(CommandPing, nil, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetMode switches the input routing mode by name.
func (c *Client) SetMode(mode string) error {
	return c.call(CommandSetMode, SetModePayload{Mode: mode}, nil)
}

// Activate grabs the keyboard and starts routing input.
func (c *Client) Activate() error {
	return c.call(CommandActivate, nil, nil)
}

// Release stops routing input and drops the keyboard grab.
func (c *Client) Release() error {
	return c.call(CommandRelease, nil, nil)
}

// ApplyPreset tiles assigned windows with preset n (1-4).
func (c *Client) ApplyPreset(n int) error {
	return c.call(CommandApplyPreset, PresetPayload{Preset: n}, nil)
}

// ListPresets returns the configured layout presets.
func (c *Client) ListPresets() (*PresetsData, error) {
	var data PresetsData
	if err := c.call(CommandListPresets, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// TogglePriority flips the layout priority and returns the new value.
func (c *Client) TogglePriority() (string, error) {
	var data PriorityData
	if err := c.call(CommandTogglePriority, nil, &data); err != nil {
		return "", err
	}
	return data.LayoutPriority, nil
}

// AutoFind assigns discovered client windows and returns how many were
// assigned.
func (c *Client) AutoFind() (int, error) {
	var data AutoFindData
	if err := c.call(CommandAutoFind, nil, &data); err != nil {
		return 0, err
	}
	return data.Assigned, nil
}

// SelectGroup makes group n (1-based) current.
func (c *Client) SelectGroup(n int) error {
	return c.call(CommandSelectGroup, GroupPayload{Group: n}, nil)
}

// AddGroup appends a group and returns its number.
func (c *Client) AddGroup() (int, error) {
	var data GroupData
	if err := c.call(CommandAddGroup, nil, &data); err != nil {
		return 0, err
	}
	return data.Group, nil
}

// RemoveGroup drops group n (1-based).
func (c *Client) RemoveGroup(n int) error {
	return c.call(CommandRemoveGroup, GroupPayload{Group: n}, nil)
}
