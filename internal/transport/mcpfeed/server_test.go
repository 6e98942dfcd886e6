package mcpfeed

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockspec/internal/expectation"
	"mockspec/internal/feeder"
	"mockspec/internal/matcher"
	"mockspec/internal/responder"
)

func newTestServer(t *testing.T, parts ...*expectation.Part) (*Server, *feeder.Runtime) {
	t.Helper()
	var defs []*expectation.Definition
	for _, p := range parts {
		def, err := p.Build(nil)
		require.NoError(t, err)
		defs = append(defs, def)
	}
	rt, err := feeder.NewRuntime(defs)
	require.NoError(t, err)
	return NewServer("mockspec-test", "test", rt, defs), rt
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestToolHandler_Delivers(t *testing.T) {
	s, rt := newTestServer(t, expectation.NewPart("lookup").
		Predicates(matcher.Condition{"id": "42"}).
		Processors(responder.Body(`{"name":"widget"}`)))

	assert.Equal(t, []string{"lookup"}, s.Tools())

	result, err := s.toolHandler("lookup")(context.Background(), callRequest("lookup", map[string]interface{}{"id": "42"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, `{"name":"widget"}`, resultText(t, result))

	assert.NoError(t, rt.Await(context.Background()))
}

func TestToolHandler_Fault(t *testing.T) {
	s, _ := newTestServer(t, expectation.NewPart("lookup").
		Processors(responder.Fault("lookup backend down")))

	result, err := s.toolHandler("lookup")(context.Background(), callRequest("lookup", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "lookup backend down", resultText(t, result))
}

func TestToolHandler_Unexpected(t *testing.T) {
	s, _ := newTestServer(t, expectation.NewPart("lookup").ExpectedMessageCount(0))

	result, err := s.toolHandler("lookup")(context.Background(), callRequest("lookup", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unexpected message")
}

func TestToolHandler_Meta(t *testing.T) {
	var seen interface{}
	s, _ := newTestServer(t, expectation.NewPart("lookup").
		Processors(expectation.ProcessorFunc(func(msg *expectation.Message) error {
			seen, _ = msg.Header("tenant")
			return nil
		})))

	req := callRequest("lookup", nil)
	req.Params.Meta = &mcp.Meta{AdditionalFields: map[string]any{"tenant": "acme"}}

	_, err := s.toolHandler("lookup")(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "acme", seen)
}
