package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockspec/internal/expectation"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func deliver(t *testing.T, def *expectation.Definition, index int, body string) *expectation.Message {
	t.Helper()
	msg := &expectation.Message{Body: []byte(body)}
	require.True(t, def.Predicate(index).Matches(msg), "predicate %d should accept %q", index, body)
	require.NoError(t, def.Processor(index).Process(msg))
	return msg
}

func TestLoad_MergesFilesInPathOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", `
expectations:
  - endpoint: orders
    expect:
      - match: {contains: second}
        respond: {body: two}
`)
	writeFile(t, dir, "a.yaml", `
settings:
  assertion_timeout: 3s
expectations:
  - endpoint: orders
    expect:
      - match: {body: first}
        respond: {body: {status: one}}
  - endpoint: health
    lenient:
      respond:
        - body: up
`)
	writeFile(t, dir, "notes.txt", "ignored")

	suite, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, suite.Files, 2)
	assert.Equal(t, 3*time.Second, suite.Settings.AssertionTimeout)

	defs := suite.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "orders", defs[0].Endpoint())
	assert.Equal(t, "health", defs[1].Endpoint())

	orders := defs[0]
	assert.Equal(t, 2, orders.ExpectedMessageCount())
	assert.Equal(t, 3*time.Second, orders.AssertionTimeout())
	assert.JSONEq(t, `{"status":"one"}`, string(deliver(t, orders, 0, "first").Body))
	assert.Equal(t, "two", string(deliver(t, orders, 1, "the second one").Body))

	health, ok := suite.Definition("health")
	require.True(t, ok)
	assert.True(t, health.IsLenient())
	assert.Equal(t, 0, health.ExpectedMessageCount())
}

func TestLoad_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "svc/orders/mocks.yaml", `
expectations:
  - endpoint: orders
`)
	writeFile(t, dir, "svc/quotes/mocks.yml", `
expectations:
  - endpoint: quotes
    ordering: none
    endpoint_ordered: false
    feeder:
      transport: nats
      options: {subject: svc.quotes}
`)

	suite, err := NewLoader(nil).Load(context.Background(), filepath.Join(dir, "svc", "**", "*.{yaml,yml}"))
	require.NoError(t, err)

	quotes, ok := suite.Definition("quotes")
	require.True(t, ok)
	assert.Equal(t, expectation.OrderingNone, quotes.Ordering())
	assert.False(t, quotes.EndpointOrdered())
	assert.Equal(t, "nats", quotes.FeederWiring().Transport)
	assert.Equal(t, "svc.quotes", quotes.FeederWiring().Option("subject"))
	assert.Equal(t, "quotes", quotes.FeederWiring().Endpoint)

	orders, ok := suite.Definition("orders")
	require.True(t, ok)
	assert.Equal(t, 1, orders.ExpectedMessageCount())
}

func TestLoad_MergeConflictAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1.yaml", `
expectations:
  - endpoint: orders
`)
	writeFile(t, dir, "2.yaml", `
expectations:
  - endpoint: orders
    ordering: partial
`)

	_, err := NewLoader(nil).Load(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, expectation.IsMergeConflict(err))
	assert.Contains(t, err.Error(), "2.yaml")
}

func TestLoad_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name: "too many expectations for count",
			content: `
expectations:
  - endpoint: orders
    expected_message_count: 1
    expect:
      - match: {body: a}
      - match: {body: b}
`,
			field: "predicates",
		},
		{
			name: "negative count",
			content: `
expectations:
  - endpoint: orders
    expected_message_count: -1
`,
			field: "expectedMessageCount",
		},
		{
			name: "bad glob",
			content: `
expectations:
  - endpoint: orders
    expect:
      - match: {glob: "orders/["}
`,
			field: "expect[0].match.glob",
		},
		{
			name: "body and template",
			content: `
expectations:
  - endpoint: orders
    expect:
      - respond: {body: a, template: b}
`,
			field: "expect[0].respond",
		},
		{
			name: "unknown transport",
			content: `
expectations:
  - endpoint: orders
    feeder: {transport: grpc}
`,
			field: "feeder.transport",
		},
		{
			name: "missing endpoint",
			content: `
expectations:
  - ordering: none
`,
			field: "endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "mocks.yaml", tt.content)

			_, err := NewLoader(nil).Load(context.Background(), path)
			require.Error(t, err)

			var cerr *expectation.ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "expectations:\n  - endpoint: orders\n    unknown_key: 1\n")

	_, err := NewLoader(nil).Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, IsLoadError(err))

	_, err = NewLoader(nil).Load(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.True(t, IsLoadError(err))

	_, err = NewLoader(nil).Load(context.Background(), filepath.Join(dir, "*.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no expectation files found")
}

func TestLoad_InvalidSettings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.yaml", `
settings:
  transport: carrier-pigeon
expectations: []
`)
	_, err := NewLoader(nil).Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings.transport")
}

func TestLoad_Templates(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.yaml", `
expectations:
  - endpoint: orders
    expect:
      - match:
          condition: {sku: A-1}
          schema:
            type: object
            required: [sku]
        respond:
          template: {order: "{{ .sku | lower }}", qty: 1}
          headers: {Content-Type: application/json}
`)
	suite, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	def, _ := suite.Definition("orders")
	msg := deliver(t, def, 0, `{"sku":"A-1"}`)
	assert.JSONEq(t, `{"order":"a-1","qty":1}`, string(msg.Body))
	assert.Equal(t, "application/json", msg.Headers["Content-Type"])

	assert.False(t, def.Predicate(0).Matches(&expectation.Message{Body: []byte(`{"id":1}`)}))
}

func TestLoad_AnyAndNot(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.yaml", `
expectations:
  - endpoint: orders
    expect:
      - match:
          any: [{contains: C-3}, {contains: C-4}]
          not: {headers: {priority: low}}
`)
	suite, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	def, _ := suite.Definition("orders")
	predicate := def.Predicate(0)

	assert.True(t, predicate.Matches(&expectation.Message{Body: []byte("sku C-3")}))
	assert.True(t, predicate.Matches(&expectation.Message{Body: []byte("sku C-4")}))
	assert.False(t, predicate.Matches(&expectation.Message{Body: []byte("sku C-5")}))
	assert.False(t, predicate.Matches(&expectation.Message{
		Body:    []byte("sku C-3"),
		Headers: map[string]interface{}{"priority": "low"},
	}))
}

func TestLoad_NestedMatchErrorField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.yaml", `
expectations:
  - endpoint: orders
    expect:
      - match:
          not: {any: [{contains: a}, {glob: "orders/["}]}
`)
	_, err := NewLoader(nil).Load(context.Background(), path)

	var cerr *expectation.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "expect[0].match.not.any[1].glob", cerr.Field)
}

func TestLoad_SyncResponsesPairBodiesAndHeaders(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.yaml", `
expectations:
  - endpoint: orders
    expect:
      - respond: {body: first, headers: {Seq: "1"}}
      - match: {contains: two}
      - respond: {headers: {Seq: "3"}}
`)
	suite, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	def, _ := suite.Definition("orders")
	require.Equal(t, 3, def.ExpectedMessageCount())

	first := deliver(t, def, 0, "one")
	assert.Equal(t, "first", string(first.Body))
	assert.Equal(t, "1", first.Headers["Seq"])

	second := deliver(t, def, 1, "two")
	assert.Equal(t, "two", string(second.Body))
	assert.Empty(t, second.Headers)

	third := deliver(t, def, 2, "three")
	assert.Equal(t, "three", string(third.Body))
	assert.Equal(t, "3", third.Headers["Seq"])
}

func TestLoad_LenientResponseHeaders(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.yaml", `
expectations:
  - endpoint: health
    lenient:
      respond:
        - body: up
          headers: {Status: green}
`)
	suite, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	def, _ := suite.Definition("health")
	msg := &expectation.Message{Body: []byte("ping")}
	require.NoError(t, def.LenientResponder().Process(msg))
	assert.Equal(t, "up", string(msg.Body))
	assert.Equal(t, "green", msg.Headers["Status"])
}

func TestParseFile_Empty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")
	f, err := ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, f.Expectations)
}

func TestResolvePaths_Dedup(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "expectations: []")

	files, err := ResolvePaths(a, dir, filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())

	s.Merge(&Settings{Transport: "nats", NATSURL: "nats://mq:4222"})
	assert.Equal(t, "nats", s.Transport)
	assert.Equal(t, "nats://mq:4222", s.NATSURL)
	assert.Equal(t, "mockspec", s.ServerName)

	s.AssertionTimeout = -time.Second
	assert.Error(t, s.Validate())
}

func TestLoad_OverridesWinOverFiles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mocks.yaml", `
settings:
  transport: nats
  server_name: from-file
expectations:
  - endpoint: orders
`)
	suite, err := NewLoader(&Settings{Transport: "mcp"}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "mcp", suite.Settings.Transport)
	assert.Equal(t, "from-file", suite.Settings.ServerName)
}

func TestSettings_ValidateReportsAllFields(t *testing.T) {
	s := &Settings{AssertionTimeout: -time.Second, Transport: "smtp"}
	err := s.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
	assert.Equal(t, "settings.transport", verrs[1].Field)
}
