// Package mcp exposes the abductive reasoning engine over the Model Context
// Protocol using the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp).
//
// Every tool is read-only and idempotent: it validates its inputs, builds an
// instruction payload, and returns it. No tool mutates server state, so the
// server carries no sessions and identical calls always produce identical
// payloads. Failures never surface as protocol errors; they are folded into
// a uniform error payload with kind "error", a message, and a repair hint.
package mcp
