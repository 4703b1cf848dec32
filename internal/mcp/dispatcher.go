// Package mcp implements the JSON-RPC side of the Model Context Protocol:
// envelope validation, method routing and mapping tool outcomes to responses.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"ou-videos-mcp/internal/metrics"
	"ou-videos-mcp/internal/tools"
)

const notificationPrefix = "notifications/"

// Invoker runs a named tool. *tools.Invoker satisfies it.
type Invoker interface {
	Call(ctx context.Context, name string, args map[string]any) (tools.Result, error)
}

type methodHandler func(ctx context.Context, req Request) (any, error)

// Dispatcher routes JSON-RPC requests to their handlers. It only reads the
// catalog after construction, so one Dispatcher serves concurrent requests.
type Dispatcher struct {
	catalog *tools.Catalog
	invoker Invoker
	info    Implementation
	methods map[string]methodHandler
}

// NewDispatcher wires the method table.
func NewDispatcher(catalog *tools.Catalog, invoker Invoker, info Implementation) *Dispatcher {
	d := &Dispatcher{catalog: catalog, invoker: invoker, info: info}
	d.methods = map[string]methodHandler{
		"initialize": d.initialize,
		"ping":       d.ping,
		"tools/list": d.listTools,
		"tools/call": d.callTool,
	}
	return d
}

// HandleBytes decodes body and handles it. A nil response means nothing
// should be written back.
func (d *Dispatcher) HandleBytes(ctx context.Context, body []byte) *Response {
	var req Request
	if err := json.Unmarshal(bytes.TrimSpace(body), &req); err != nil {
		metrics.RecordRPC("invalid", metrics.OutcomeInvalid)
		log.WithError(err).Debug("rejecting undecodable request")
		return errorResponse(nil, ErrorCodeInvalidRequest, "Invalid Request")
	}
	return d.Handle(ctx, req)
}

// Handle produces the response for req, or nil for a notification.
func (d *Dispatcher) Handle(ctx context.Context, req Request) *Response {
	if strings.HasPrefix(req.Method, notificationPrefix) || req.IsNotification() {
		metrics.RecordRPC(d.methodLabel(req.Method), metrics.OutcomeIgnored)
		log.WithField("method", req.Method).Debug("notification received")
		return nil
	}
	if req.idInvalid {
		metrics.RecordRPC(d.methodLabel(req.Method), metrics.OutcomeInvalid)
		return errorResponse(nil, ErrorCodeInvalidRequest, "Invalid Request: id must be a string or number")
	}
	if req.JSONRPC != JSONRPCVersion {
		metrics.RecordRPC(d.methodLabel(req.Method), metrics.OutcomeInvalid)
		return errorResponse(req.ID, ErrorCodeInvalidRequest, "Invalid Request: jsonrpc must be \"2.0\"")
	}

	logger := log.WithFields(log.Fields{"method": req.Method, "id": req.ID})
	logger.Debug("handling request")

	handler, ok := d.methods[req.Method]
	if !ok {
		metrics.RecordRPC(d.methodLabel(req.Method), metrics.OutcomeInvalid)
		return errorResponse(req.ID, ErrorCodeMethodNotFound, "Unknown method: "+req.Method)
	}
	result, err := handler(ctx, req)
	if err != nil {
		var rpcErr *Error
		if !errors.As(err, &rpcErr) {
			rpcErr = &Error{Code: ErrorCodeExecutionFailed, Message: "Tool execution failed: " + err.Error()}
		}
		outcome := metrics.OutcomeInvalid
		if rpcErr.Code == ErrorCodeExecutionFailed {
			outcome = metrics.OutcomeError
		}
		metrics.RecordRPC(req.Method, outcome)
		logger.WithField("code", rpcErr.Code).Debug(rpcErr.Message)
		return errorResponse(req.ID, rpcErr.Code, rpcErr.Message)
	}
	metrics.RecordRPC(req.Method, metrics.OutcomeSuccess)
	return &Response{JSONRPC: JSONRPCVersion, ID: req.ID, Result: result}
}

// methodLabel keeps arbitrary client method names out of metric labels.
func (d *Dispatcher) methodLabel(method string) string {
	if _, ok := d.methods[method]; ok {
		return method
	}
	if strings.HasPrefix(method, notificationPrefix) {
		return "notification"
	}
	return "unknown"
}

func (d *Dispatcher) initialize(_ context.Context, _ Request) (any, error) {
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      d.info,
	}, nil
}

func (d *Dispatcher) ping(_ context.Context, _ Request) (any, error) {
	return map[string]any{}, nil
}

func (d *Dispatcher) listTools(_ context.Context, _ Request) (any, error) {
	return ListToolsResult{Tools: d.catalog.List()}, nil
}

func (d *Dispatcher) callTool(ctx context.Context, req Request) (any, error) {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &Error{Code: ErrorCodeInvalidRequest, Message: "Invalid Request: malformed tools/call params"}
		}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}
	if _, ok := d.catalog.Get(params.Name); !ok {
		return nil, &Error{Code: ErrorCodeMethodNotFound, Message: "Unknown tool: " + params.Name}
	}

	res, err := d.invoker.Call(ctx, params.Name, params.Arguments)
	if errors.Is(err, tools.ErrUnknownTool) {
		return nil, &Error{Code: ErrorCodeMethodNotFound, Message: "Unknown tool: " + params.Name}
	}
	if err != nil {
		return nil, executionFailed(err)
	}
	text, err := format(res)
	if err != nil {
		return nil, executionFailed(err)
	}
	return CallToolResult{Content: []Content{{Type: "text", Text: text}}}, nil
}

// format shields the dispatcher from a panicking formatter.
func format(res tools.Result) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("formatting results: %v", r)
		}
	}()
	return tools.Format(res.Records, res.Description), nil
}

func executionFailed(err error) *Error {
	return &Error{Code: ErrorCodeExecutionFailed, Message: "Tool execution failed: " + err.Error()}
}

func errorResponse(id any, code int, message string) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: &Error{Code: code, Message: message}}
}
