package mcp

import (
	"bytes"
	"encoding/json"

	"ou-videos-mcp/internal/tools"
)

// ProtocolVersion is the MCP protocol version reported by initialize.
const ProtocolVersion = "2024-11-05"

// JSONRPCVersion is the only accepted value of the jsonrpc member.
const JSONRPCVersion = "2.0"

// Error codes returned by the dispatcher.
const (
	ErrorCodeInvalidRequest  = -32600 // Malformed envelope
	ErrorCodeMethodNotFound  = -32601 // Unknown method or tool
	ErrorCodeExecutionFailed = -32000 // Any failure while running a tool
)

// Request is an incoming JSON-RPC 2.0 message.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`

	idPresent bool
	idInvalid bool
}

// UnmarshalJSON records whether id was present and whether it was a string
// or number.
func (r *Request) UnmarshalJSON(data []byte) error {
	type rawRequest struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}
	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Request{JSONRPC: raw.JSONRPC, Method: raw.Method, Params: raw.Params}

	id := bytes.TrimSpace(raw.ID)
	if len(id) == 0 || bytes.Equal(id, []byte("null")) {
		return nil
	}
	r.idPresent = true
	var parsed any
	if err := json.Unmarshal(id, &parsed); err != nil {
		return err
	}
	switch parsed.(type) {
	case string, float64:
		r.ID = parsed
	default:
		r.idInvalid = true
	}
	return nil
}

// IsNotification reports whether no response may be sent for r.
func (r Request) IsNotification() bool {
	return !r.idPresent
}

// Response is an outgoing JSON-RPC 2.0 message. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Implementation names a server and its version.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is returned from the initialize method.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

// ServerCapabilities describes what features the server supports.
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability indicates that the server supports tools.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ListToolsResult is returned from the tools/list method.
type ListToolsResult struct {
	Tools []tools.Definition `json:"tools"`
}

// CallToolParams contains parameters for the tools/call method.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CallToolResult is returned from the tools/call method.
type CallToolResult struct {
	Content []Content `json:"content"`
}

// Content is one piece of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
