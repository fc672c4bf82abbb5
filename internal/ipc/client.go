package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winsnap/internal/layout"
	"github.com/1broseidon/winsnap/internal/runtimepath"
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

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		// Restores walk every window with synchronous X round-trips.
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

// slotRequest sends cmd for layout id and decodes the response data into out
// when out is non-nil.
func (c *Client) slotRequest(cmd CommandType, id int, out any) error {
	payload, err := json.Marshal(SlotPayload{ID: id})
	if err != nil {
		return fmt.Errorf("failed to marshal slot payload: %w", err)
	}
	resp, err := c.sendRequest(&Request{Command: cmd, Payload: payload})
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

// SaveLayout captures the current windows into slot id.
func (c *Client) SaveLayout(id int) (*LayoutInfo, error) {
	var info LayoutInfo
	if err := c.slotRequest(CommandSaveLayout, id, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RestoreLayout applies slot id. Found is false when the slot is empty.
func (c *Client) RestoreLayout(id int) (*RestoreData, error) {
	var data RestoreData
	if err := c.slotRequest(CommandRestoreLayout, id, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetLayout fetches the full contents of slot id.
func (c *Client) GetLayout(id int) (*layout.Layout, error) {
	var l layout.Layout
	if err := c.slotRequest(CommandGetLayout, id, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLayout removes slot id.
func (c *Client) DeleteLayout(id int) error {
	return c.slotRequest(CommandDeleteLayout, id, nil)
}

// PreviewLayout reports which live windows slot id would move.
func (c *Client) PreviewLayout(id int) (*PreviewData, error) {
	var data PreviewData
	if err := c.slotRequest(CommandPreviewLayout, id, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListLayouts retrieves summaries of all stored layouts.
func (c *Client) ListLayouts() (*LayoutsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListLayouts})
	if err != nil {
		return nil, err
	}

	var data LayoutsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse layouts data: %w", err)
	}
	return &data, nil
}

// ToggleWhitelist adds or removes the active window from the next save.
func (c *Client) ToggleWhitelist() (*WhitelistData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandToggleWhitelist})
	if err != nil {
		return nil, err
	}

	var data WhitelistData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse whitelist data: %w", err)
	}
	return &data, nil
}

func (c *Client) searchRequest(cmd CommandType, query string, limit int, out any) error {
	payload, err := json.Marshal(SearchPayload{Query: query, Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to marshal search payload: %w", err)
	}
	resp, err := c.sendRequest(&Request{Command: cmd, Payload: payload})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// FindWindows ranks the live windows against query. A limit of zero returns
// every match.
func (c *Client) FindWindows(query string, limit int) (*WindowsData, error) {
	var data WindowsData
	if err := c.searchRequest(CommandFindWindows, query, limit, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// FocusWindow brings the best match for query to the foreground.
func (c *Client) FocusWindow(query string) (*FocusData, error) {
	var data FocusData
	if err := c.searchRequest(CommandFocusWindow, query, 0, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetMonitors})
	if err != nil {
		return nil, err
	}

	var monitors MonitorsData
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}
	return &monitors, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
