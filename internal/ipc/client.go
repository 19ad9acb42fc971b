package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/twm/internal/daemon"
	"github.com/1broseidon/twm/internal/tiling"
)

// Client handles IPC communication with the daemon. It satisfies
// daemon.Controller, so callers can use a remote daemon like a local one.
type Client struct {
	socketPath string
	timeout    time.Duration
}

var _ daemon.Controller = (*Client)(nil)

// NewClient creates a new IPC client
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// Call sends a command and returns the raw data of a successful response.
func (c *Client) Call(command CommandType, payload any) (json.RawMessage, error) {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

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

	if resp.Status == StatusError {
		if resp.Code == CodeNotAvailable {
			return nil, daemon.ErrNotAvailable
		}
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) query(command CommandType, payload any, out any) error {
	data, err := c.Call(command, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

func (c *Client) ProtocolVersion() (string, error) {
	var v VersionData
	err := c.query(CommandProtocolVersion, nil, &v)
	return v.Version, err
}

func (c *Client) TilesCount() (int, error) {
	var n CountData
	err := c.query(CommandTilesCount, nil, &n)
	return n.Count, err
}

func (c *Client) Tile(id tiling.TileID) (tiling.Tile, error) {
	var tile tiling.Tile
	err := c.query(CommandTileByID, TileByIDPayload{ID: uint32(id)}, &tile)
	return tile, err
}

func (c *Client) FocusedTile() (tiling.Tile, error) {
	var tile tiling.Tile
	err := c.query(CommandFocusedTile, nil, &tile)
	return tile, err
}

func (c *Client) ActiveLayout() (tiling.Meta, error) {
	var meta tiling.Meta
	err := c.query(CommandActiveLayout, nil, &meta)
	return meta, err
}

func (c *Client) FocusedWorkspace() (tiling.WorkspaceSnapshot, error) {
	var ws tiling.WorkspaceSnapshot
	err := c.query(CommandFocusedWorkspace, nil, &ws)
	return ws, err
}

func (c *Client) WorkspacesCount() (int, error) {
	var n CountData
	err := c.query(CommandWorkspacesCount, nil, &n)
	return n.Count, err
}

// Relayout asks the daemon to re-apply the active layout.
func (c *Client) Relayout() error {
	_, err := c.Call(CommandRelayout, nil)
	return err
}

// Reload asks the daemon to reload its config.
func (c *Client) Reload() error {
	_, err := c.Call(CommandReload, nil)
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.ProtocolVersion()
	return err
}
