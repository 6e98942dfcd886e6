// Package transport holds the pieces shared by the transports that feed
// messages into a feeder.Runtime.
//
// Each transport lives in its own subpackage:
//
//   - mcpfeed exposes every endpoint as an MCP tool over stdio or streamable HTTP
//   - natsfeed subscribes every endpoint to a NATS subject and replies on request/reply
//
// Definitions select a transport through their feeder wiring; endpoints
// without one use the runtime default.
package transport

import (
	"mockspec/internal/expectation"
)

const (
	MCP  = "mcp"
	NATS = "nats"
)

// Known reports whether name is a supported transport.
func Known(name string) bool {
	return name == MCP || name == NATS
}

// Select returns the definitions that are wired to transport. Definitions
// without an explicit transport belong to fallback.
func Select(defs []*expectation.Definition, transport, fallback string) []*expectation.Definition {
	var out []*expectation.Definition
	for _, def := range defs {
		name := def.FeederWiring().Transport
		if name == "" {
			name = fallback
		}
		if name == transport {
			out = append(out, def)
		}
	}
	return out
}
