package matcher

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"mockspec/internal/expectation"
)

const schemaResourceURL = "mem://mockspec/expectation-schema.json"

// JSONSchema matches message bodies that are valid JSON documents conforming
// to a schema.
type JSONSchema struct {
	schema *jsonschema.Schema
}

// NewJSONSchema compiles a schema given as raw JSON.
func NewJSONSchema(raw []byte) (*JSONSchema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaResourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &JSONSchema{schema: schema}, nil
}

// NewJSONSchemaFromValue compiles a schema authored as a decoded YAML/JSON
// value, as found in expectation files.
func NewJSONSchemaFromValue(value interface{}) (*JSONSchema, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return NewJSONSchema(raw)
}

// Matches implements expectation.Predicate.
func (s *JSONSchema) Matches(msg *expectation.Message) bool {
	return s.Validate(msg.Body) == nil
}

// Validate reports why body does not conform to the schema.
func (s *JSONSchema) Validate(body []byte) error {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("body is not JSON: %w", err)
	}
	return s.schema.Validate(payload)
}

func (s *JSONSchema) String() string {
	return "body conforms to JSON schema"
}
