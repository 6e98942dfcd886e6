// Package responder provides the concrete response processors used by mock
// endpoints: fixed bodies and headers, templated bodies, faults and delays.
package responder

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mockspec/internal/expectation"
	"mockspec/internal/matcher"
	"mockspec/internal/template"
)

// Body replaces the message body.
type Body []byte

// Process implements expectation.Processor.
func (b Body) Process(msg *expectation.Message) error {
	msg.Body = append([]byte(nil), b...)
	return nil
}

// Headers sets the given headers on the message, keeping the others.
type Headers map[string]interface{}

// Process implements expectation.Processor.
func (h Headers) Process(msg *expectation.Message) error {
	for k, v := range h {
		msg.SetHeader(k, v)
	}
	return nil
}

// Fault answers the message with an error instead of a body.
type Fault string

// Process implements expectation.Processor.
func (f Fault) Process(msg *expectation.Message) error {
	msg.Fault = errors.New(string(f))
	return nil
}

// Delay holds the response back to simulate latency. The wait ends early
// with the context error when the delivery is cancelled.
type Delay time.Duration

// Process implements expectation.Processor.
func (d Delay) Process(msg *expectation.Message) error {
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	ctx := msg.Context()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Template renders a response body from a template evaluated against the
// inbound message. String templates become the body verbatim; maps and slices
// are rendered recursively and JSON encoded.
//
// The template data holds the fields of a JSON object body at the top level,
// plus "body" (the raw inbound body as text), "headers" and "endpoint".
type Template struct {
	engine *template.Engine
	value  interface{}
}

// NewTemplate validates value and returns a templating processor.
func NewTemplate(engine *template.Engine, value interface{}) (*Template, error) {
	if engine == nil {
		engine = template.New()
	}
	if err := engine.Validate(value); err != nil {
		return nil, err
	}
	return &Template{engine: engine, value: value}, nil
}

// Process implements expectation.Processor.
func (t *Template) Process(msg *expectation.Message) error {
	fields, _ := matcher.DecodeObject(msg.Body)
	data := template.MergeContexts(fields, map[string]interface{}{
		"body":     string(msg.Body),
		"headers":  msg.Headers,
		"endpoint": msg.Endpoint,
	})

	rendered, err := t.engine.Replace(t.value, data)
	if err != nil {
		return fmt.Errorf("render response for %s: %w", msg.Endpoint, err)
	}

	encoded, err := encode(rendered)
	if err != nil {
		return fmt.Errorf("encode response for %s: %w", msg.Endpoint, err)
	}
	msg.Body = encoded
	return nil
}

// FromValue builds a body processor from an authored value: strings are used
// verbatim, anything else is JSON encoded.
func FromValue(value interface{}) (expectation.Processor, error) {
	encoded, err := encode(value)
	if err != nil {
		return nil, err
	}
	return Body(encoded), nil
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
