// ABOUTME: Package client is the typed HTTP client for the backend API
// ABOUTME: Used by the MCP tool server to proxy tool calls

// Package client provides a typed HTTP client for the chatlingo backend.
//
// Each operation maps to one backend endpoint, authenticates with the
// configured bearer token and decodes errors into *BackendError.
package client
