// Package mcpfeed serves mock endpoints as MCP tools. Calling the tool named
// after an endpoint delivers the call arguments, JSON encoded, as the message
// body and returns the response body as text. A response fault becomes a tool
// error result.
package mcpfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mockspec/internal/expectation"
	"mockspec/internal/feeder"
	"mockspec/pkg/logging"
)

// Server exposes the endpoints of a runtime as MCP tools.
type Server struct {
	name      string
	runtime   *feeder.Runtime
	mcpServer *server.MCPServer
	tools     []string
}

// NewServer registers one tool per endpoint of defs. Every endpoint must be
// known to runtime.
func NewServer(name, version string, runtime *feeder.Runtime, defs []*expectation.Definition) *Server {
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	s := &Server{
		name:      name,
		runtime:   runtime,
		mcpServer: mcpServer,
	}
	for _, def := range defs {
		tool := mcp.NewTool(def.Endpoint(),
			mcp.WithDescription(fmt.Sprintf("Mock endpoint %s expecting %d messages (%s ordering)",
				def.Endpoint(), def.ExpectedMessageCount(), def.Ordering())),
		)
		mcpServer.AddTool(tool, s.toolHandler(def.Endpoint()))
		s.tools = append(s.tools, def.Endpoint())
	}

	logging.Info("MCPFeed", "MCP server '%s' initialized with %d tools", name, len(s.tools))
	return s
}

// Tools returns the registered tool names.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

func (s *Server) toolHandler(endpoint string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode arguments: %v", err)), nil
		}

		msg := &expectation.Message{Body: body}
		if request.Params.Meta != nil {
			for k, v := range request.Params.Meta.AdditionalFields {
				msg.SetHeader(k, v)
			}
		}

		response, err := s.runtime.Deliver(ctx, endpoint, msg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if response.Fault != nil {
			return mcp.NewToolResultError(response.Fault.Error()), nil
		}
		return mcp.NewToolResultText(string(response.Body)), nil
	}
}

// ServeStdio serves the tools over stdio until the client disconnects.
func (s *Server) ServeStdio() error {
	logging.Info("MCPFeed", "Starting MCP server '%s' on stdio transport", s.name)
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP serves the tools over streamable HTTP on addr until ctx is
// cancelled. ready, if not nil, receives the bound address once listening.
func (s *Server) ServeHTTP(ctx context.Context, addr string, ready chan<- string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           server.NewStreamableHTTPServer(s.mcpServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("MCPFeed", "MCP server '%s' listening on %s", s.name, listener.Addr())
	if ready != nil {
		ready <- listener.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down MCP server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
