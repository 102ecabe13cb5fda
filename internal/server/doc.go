// Package server implements the MCP (Model Context Protocol) server for the
// lane detection tools.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Pipeline Stages:
//   - lane_birdseye: Perspective-warp a frame into the top-down view
//   - lane_binarize: Occupancy image used by the tracker
//   - lane_edges: Canny edge mask
//
// Tracking:
//   - lane_track: Sliding-window tracker from an explicit start window
//   - lane_detect: Full pipeline on one frame, both boundaries
//
// The perspective quad, start windows, binarization and overlay style come
// from the config passed to New (see package config).
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process, so a
// frame inspected stage by stage is read from disk once.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses:
//   - -32601: unknown method
//   - -32602: malformed arguments, missing path, bad window, unknown tool
//   - -32000: the tool ran and failed (unreadable file, degenerate input)
//
// The error's data field carries the Go error string.
package server
