package config

import (
	"fmt"

	"mockspec/internal/expectation"
	"mockspec/internal/matcher"
	"mockspec/internal/responder"
	"mockspec/internal/template"
	"mockspec/internal/transport"
)

// partBuilder turns authored specs into expectation parts.
type partBuilder struct {
	engine   *template.Engine
	settings *Settings
}

// Part converts spec into an expectation part. Settings supply the assertion
// timeout when the file leaves it unset.
func (b *partBuilder) Part(spec ExpectationSpec) (*expectation.Part, error) {
	if spec.Endpoint == "" {
		return nil, &expectation.ConfigurationError{Field: "endpoint", Message: "endpoint is required"}
	}

	part := expectation.NewPart(spec.Endpoint).Ordering(spec.Ordering)

	if spec.EndpointOrdered != nil {
		part.EndpointOrdered(*spec.EndpointOrdered)
	}

	timeout := spec.AssertionTimeout
	if timeout == 0 {
		timeout = b.settings.AssertionTimeout
	}
	part.AssertionTimeout(timeout)

	if spec.Feeder != nil {
		if spec.Feeder.Transport != "" && !transport.Known(spec.Feeder.Transport) {
			return nil, b.invalid(spec, "feeder.transport", "unknown transport %q", spec.Feeder.Transport)
		}
		part.FeederWiring(&expectation.FeederWiring{
			Transport: spec.Feeder.Transport,
			Options:   spec.Feeder.Options,
		})
	}

	switch {
	case spec.ExpectedMessageCount != nil:
		part.ExpectedMessageCount(*spec.ExpectedMessageCount)
	case len(spec.Expect) > 0:
		part.ExpectedMessageCount(len(spec.Expect))
	}

	var (
		bodies  []expectation.Processor
		headers []responder.Headers
	)
	for i, exp := range spec.Expect {
		if exp.Match != nil {
			predicate, err := b.predicate(spec, fmt.Sprintf("expect[%d].match", i), exp.Match)
			if err != nil {
				return nil, err
			}
			part.AddPredicates(i, predicate)
		}
		if exp.Respond == nil {
			continue
		}
		body, hdrs, err := b.response(spec, fmt.Sprintf("expect[%d].respond", i), exp.Respond)
		if err != nil {
			return nil, err
		}
		for len(bodies) < i {
			bodies = append(bodies, expectation.NoOp)
		}
		bodies = append(bodies, body)
		if hdrs != nil {
			for len(headers) < i {
				headers = append(headers, nil)
			}
			headers = append(headers, hdrs)
		}
	}
	responder.AddSyncResponses(part, bodies, headers)

	if spec.Lenient != nil {
		part.Lenient()
		if spec.ExpectedMessageCount == nil && len(spec.Expect) == 0 {
			part.ExpectedMessageCount(0)
		}
		if spec.Lenient.Match != nil {
			selector, err := b.predicate(spec, "lenient.match", spec.Lenient.Match)
			if err != nil {
				return nil, err
			}
			part.LenientSelector(selector)
		}
		responses := make([]expectation.Processor, 0, len(spec.Lenient.Respond))
		for i := range spec.Lenient.Respond {
			body, hdrs, err := b.response(spec, fmt.Sprintf("lenient.respond[%d]", i), &spec.Lenient.Respond[i])
			if err != nil {
				return nil, err
			}
			if hdrs != nil {
				body = expectation.Chain(body, hdrs)
			}
			responses = append(responses, body)
		}
		part.Processors(responses...)
	}

	return part, nil
}

func (b *partBuilder) predicate(spec ExpectationSpec, field string, m *MatchSpec) (expectation.Predicate, error) {
	var predicates []expectation.Predicate

	if m.Body != nil {
		predicates = append(predicates, matcher.BodyEquals(*m.Body))
	}
	if m.Contains != "" {
		predicates = append(predicates, matcher.BodyContains(m.Contains))
	}
	if m.Glob != "" {
		glob, err := matcher.NewGlob(m.Glob)
		if err != nil {
			return nil, b.invalid(spec, field+".glob", "%v", err)
		}
		predicates = append(predicates, glob)
	}
	for name, value := range m.Headers {
		predicates = append(predicates, matcher.HeaderEquals{Name: name, Value: value})
	}
	if len(m.Condition) > 0 {
		predicates = append(predicates, matcher.Condition(m.Condition))
	}
	if m.Schema != nil {
		schema, err := b.schema(m.Schema)
		if err != nil {
			return nil, b.invalid(spec, field+".schema", "%v", err)
		}
		predicates = append(predicates, schema)
	}

	if len(m.Any) > 0 {
		alternatives := make([]expectation.Predicate, 0, len(m.Any))
		for j := range m.Any {
			p, err := b.predicate(spec, fmt.Sprintf("%s.any[%d]", field, j), &m.Any[j])
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, p)
		}
		predicates = append(predicates, matcher.Any(alternatives...))
	}
	if m.Not != nil {
		inner, err := b.predicate(spec, field+".not", m.Not)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, matcher.Not(inner))
	}

	return expectation.All(predicates...), nil
}

func (b *partBuilder) schema(value interface{}) (*matcher.JSONSchema, error) {
	if raw, ok := value.(string); ok {
		return matcher.NewJSONSchema([]byte(raw))
	}
	return matcher.NewJSONSchemaFromValue(normalize(value))
}

// response splits a respond block into the processor shaping the body and
// the headers set on the reply. Headers is nil when none were authored.
func (b *partBuilder) response(spec ExpectationSpec, field string, r *RespondSpec) (expectation.Processor, responder.Headers, error) {
	var processors []expectation.Processor

	if r.Delay > 0 {
		processors = append(processors, responder.Delay(r.Delay))
	}
	if r.Body != nil && r.Template != nil {
		return nil, nil, b.invalid(spec, field, "body and template are mutually exclusive")
	}
	if r.Body != nil {
		body, err := responder.FromValue(normalize(r.Body))
		if err != nil {
			return nil, nil, b.invalid(spec, field+".body", "%v", err)
		}
		processors = append(processors, body)
	}
	if r.Template != nil {
		tmpl, err := responder.NewTemplate(b.engine, normalize(r.Template))
		if err != nil {
			return nil, nil, b.invalid(spec, field+".template", "%v", err)
		}
		processors = append(processors, tmpl)
	}
	if r.Fault != "" {
		processors = append(processors, responder.Fault(r.Fault))
	}

	var headers responder.Headers
	if len(r.Headers) > 0 {
		headers = make(responder.Headers, len(r.Headers))
		for k, v := range r.Headers {
			headers[k] = v
		}
	}

	return expectation.Chain(processors...), headers, nil
}

func (b *partBuilder) invalid(spec ExpectationSpec, field, format string, args ...interface{}) error {
	return &expectation.ConfigurationError{
		Endpoint: spec.Endpoint,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	}
}

// normalize converts YAML-decoded values into the shapes encoding/json and
// the template engine understand.
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = normalize(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[fmt.Sprintf("%v", k)] = normalize(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
