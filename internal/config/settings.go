package config

import (
	"strings"
	"time"

	"mockspec/internal/expectation"
	"mockspec/internal/transport"
)

// Settings are run-wide defaults. Later files override earlier ones field by
// field.
type Settings struct {
	// AssertionTimeout applies to parts that do not set their own
	AssertionTimeout time.Duration `yaml:"assertion_timeout,omitempty"`
	// Transport is used by endpoints whose feeder does not name one
	Transport string `yaml:"transport,omitempty"`
	// NATSURL is the server the nats transport connects to
	NATSURL string `yaml:"nats_url,omitempty"`
	// MCPAddr serves the mcp transport over streamable HTTP; empty means stdio
	MCPAddr string `yaml:"mcp_addr,omitempty"`
	// ServerName identifies the mock to MCP clients and NATS servers
	ServerName string `yaml:"server_name,omitempty"`
}

// DefaultSettings returns the settings used when no file overrides them.
func DefaultSettings() *Settings {
	return &Settings{
		AssertionTimeout: expectation.DefaultAssertionTimeout,
		Transport:        transport.MCP,
		NATSURL:          "nats://127.0.0.1:4222",
		ServerName:       "mockspec",
	}
}

// Merge overlays the non-zero fields of other.
func (s *Settings) Merge(other *Settings) {
	if other == nil {
		return
	}
	if other.AssertionTimeout != 0 {
		s.AssertionTimeout = other.AssertionTimeout
	}
	if other.Transport != "" {
		s.Transport = other.Transport
	}
	if other.NATSURL != "" {
		s.NATSURL = other.NATSURL
	}
	if other.MCPAddr != "" {
		s.MCPAddr = other.MCPAddr
	}
	if other.ServerName != "" {
		s.ServerName = other.ServerName
	}
}

// Validate checks the settings and reports every invalid field at once.
func (s *Settings) Validate() error {
	var errs ValidationErrors
	if s.AssertionTimeout < 0 {
		errs.Add("settings.assertion_timeout", s.AssertionTimeout, "must not be negative, got %s", s.AssertionTimeout)
	}
	if !transport.Known(s.Transport) {
		errs.Add("settings.transport", s.Transport, "must be one of %s, %s, got %q", transport.MCP, transport.NATS, s.Transport)
	}
	if strings.TrimSpace(s.ServerName) == "" {
		errs.Add("settings.server_name", s.ServerName, "is required")
	}
	return errs.errOrNil()
}
