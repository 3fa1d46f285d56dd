// ABOUTME: In-process tool registry for the MCP server
// ABOUTME: Tools are registered at startup and listed in registration order

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Handler executes a tool call with the decoded JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (*MCPCallToolResult, error)

// Tool is one callable tool exposed over MCP.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// Registry holds the server's tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Registering a duplicate name or a tool without a
// handler is a programming error and panics at startup.
func (r *Registry) Register(tool *Tool) {
	if tool.Name == "" || tool.Handler == nil {
		panic(fmt.Sprintf("invalid tool registration: %+v", tool))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		panic(fmt.Sprintf("duplicate tool registration: %s", tool.Name))
	}
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all tools in registration order.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// InvalidArgumentsError marks a tool failure caused by bad arguments; the
// server reports it as a JSON-RPC invalid-params error.
type InvalidArgumentsError struct {
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return e.Reason
}

// InvalidArguments builds an *InvalidArgumentsError.
func InvalidArguments(format string, args ...any) error {
	return &InvalidArgumentsError{Reason: fmt.Sprintf(format, args...)}
}

// CallInfo carries per-call metadata into tool handlers.
type CallInfo struct {
	PrincipalID string
	RequestID   string
}

type callInfoKey struct{}

// WithCallInfo attaches call metadata to the context.
func WithCallInfo(ctx context.Context, info *CallInfo) context.Context {
	return context.WithValue(ctx, callInfoKey{}, info)
}

// CallInfoFromContext returns the call metadata, if any.
func CallInfoFromContext(ctx context.Context) (*CallInfo, bool) {
	info, ok := ctx.Value(callInfoKey{}).(*CallInfo)
	return info, ok
}
