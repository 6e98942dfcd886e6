// Package formatting renders merged expectation definitions for the CLI in
// table, JSON or YAML form.
package formatting

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"mockspec/internal/expectation"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected table, json or yaml)", s)
	}
}

// Summary is the printable view of a merged definition.
type Summary struct {
	Endpoint         string `json:"endpoint" yaml:"endpoint"`
	Transport        string `json:"transport" yaml:"transport"`
	Ordering         string `json:"ordering" yaml:"ordering"`
	EndpointOrdered  bool   `json:"endpointOrdered" yaml:"endpoint_ordered"`
	Expected         int    `json:"expected" yaml:"expected"`
	Lenient          bool   `json:"lenient" yaml:"lenient"`
	LenientResponses int    `json:"lenientResponses,omitempty" yaml:"lenient_responses,omitempty"`
	AssertionTimeout string `json:"assertionTimeout" yaml:"assertion_timeout"`
}

// Summarize builds summaries in definition order. Endpoints without an
// explicit transport are reported with fallback.
func Summarize(defs []*expectation.Definition, fallback string) []Summary {
	out := make([]Summary, 0, len(defs))
	for _, def := range defs {
		transport := def.FeederWiring().Transport
		if transport == "" {
			transport = fallback
		}
		s := Summary{
			Endpoint:         def.Endpoint(),
			Transport:        transport,
			Ordering:         def.Ordering().String(),
			EndpointOrdered:  def.EndpointOrdered(),
			Expected:         def.ExpectedMessageCount(),
			Lenient:          def.IsLenient(),
			AssertionTimeout: def.AssertionTimeout().String(),
		}
		if def.IsLenient() {
			s.LenientResponses = len(def.LenientResponder().Responses())
		}
		out = append(out, s)
	}
	return out
}

// Write renders summaries to w in the requested format.
func Write(w io.Writer, format OutputFormat, summaries []Summary) error {
	switch format {
	case FormatJSON:
		_, err := fmt.Fprintln(w, PrettyJSON(summaries))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(summaries)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		WriteTable(w, summaries)
		return nil
	}
}
