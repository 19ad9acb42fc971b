package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandProtocolVersion  CommandType = "protocolVersion"
	CommandTilesCount       CommandType = "tilesCount"
	CommandTileByID         CommandType = "tileById"
	CommandActiveLayout     CommandType = "activeLayout"
	CommandFocusedTile      CommandType = "focusedTile"
	CommandFocusedWorkspace CommandType = "focusedWorkspace"
	CommandWorkspacesCount  CommandType = "workspacesCount"
	CommandRelayout         CommandType = "relayout"
	CommandReload           CommandType = "reload"
)

// QueryCommands lists the read-only commands, in the order they are shown to
// users.
var QueryCommands = []CommandType{
	CommandProtocolVersion,
	CommandTilesCount,
	CommandTileByID,
	CommandActiveLayout,
	CommandFocusedTile,
	CommandFocusedWorkspace,
	CommandWorkspacesCount,
}

const (
	StatusOK    = "OK"
	StatusError = "ERROR"

	// CodeNotAvailable marks an error response for a query with no answer.
	CodeNotAvailable = "NOT_AVAILABLE"
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
	Code   string          `json:"code,omitempty"`
}

// TileByIDPayload is the payload of tileById.
type TileByIDPayload struct {
	ID uint32 `json:"id"`
}

// CountData is returned by the counting queries.
type CountData struct {
	Count int `json:"count"`
}

// VersionData is returned by protocolVersion.
type VersionData struct {
	Version string `json:"version"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
