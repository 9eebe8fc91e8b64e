// Package server implements the MCP (Model Context Protocol) server for scene
// analysis.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - scene_analyze: Run the full perception pipeline over an image or directory
//   - scene_classify: Decide blueprint vs room for one image
//   - blueprint_validate: Line-based floor-plan plausibility check
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 for invalid arguments, -32000 for other failures
//   - message: Human-readable error description
//   - data: The Go error string
//
// A scene_analyze call that gets past argument validation always succeeds;
// per-image failures are reported inside the result.
package server
