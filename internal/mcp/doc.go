// Package mcp implements the Model Context Protocol server for chatlingo tools.
//
// # Overview
//
// MCP (Model Context Protocol) is a standard for AI tool integration. This package
// provides an MCP-compatible HTTP server that exposes the chatlingo language
// learning tools to external AI clients.
//
// # Protocol
//
// The server implements the Streamable HTTP transport: JSON-RPC 2.0 messages
// over HTTP POST on a single endpoint:
//
//   - POST /mcp - JSON-RPC requests (initialize, tools/list, tools/call)
//   - DELETE /mcp - session termination
//
// Sessions are created on initialize and carried in the Mcp-Session-Id header.
//
// # Authentication
//
// The server uses bearer token authentication:
//
//	Authorization: Bearer <token>
//
// Tokens are verified against the configured static token and, when a JWT
// secret is set, HS256 JWTs.
//
// # Tool Discovery
//
// Clients call tools/list to discover available tools:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/list",
//	  "id": 1
//	}
//
// Response includes tool schemas in JSON Schema format.
//
// # Tool Execution
//
// Clients call tools/call to execute a tool:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "session_start",
//	    "arguments": {"user_id": "wa:491700000000"}
//	  },
//	  "id": 2
//	}
//
// Results carry text content, and for image tools base64 image content.
//
// # Usage
//
// Create and start the MCP server:
//
//	registry := mcp.NewRegistry()
//	registry.Register(&mcp.Tool{Name: "validate", ...})
//	server, err := mcp.NewServer(mcp.Config{Registry: registry, TokenVerifier: verifier, RequireAuth: true})
//	server.RegisterRoutes(mux)
package mcp
