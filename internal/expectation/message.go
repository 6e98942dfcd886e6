package expectation

import (
	"context"
	"time"
)

// Message is the representation of an exchange handed to predicates and
// processors. Transports fill the inbound fields; processors mutate Body,
// Headers and Fault to shape the response.
type Message struct {
	// ID uniquely identifies the exchange within a run
	ID string
	// Endpoint is the identity of the endpoint the message arrived at
	Endpoint string
	// Body is the raw payload
	Body []byte
	// Headers carries transport metadata (NATS headers, MCP metadata)
	Headers map[string]interface{}
	// Fault, when set by a processor, is returned to the caller as a failure
	Fault error
	// ReceivedAt records when the transport handed the message over
	ReceivedAt time.Time

	ctx context.Context
}

// Context returns the context of the delivery the message belongs to. It is
// never nil.
func (m *Message) Context() context.Context {
	if m.ctx != nil {
		return m.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of m bound to ctx.
func (m *Message) WithContext(ctx context.Context) *Message {
	if ctx == nil {
		panic("nil context")
	}
	c := *m
	c.ctx = ctx
	return &c
}

// Header returns the named header value.
func (m *Message) Header(name string) (interface{}, bool) {
	if m.Headers == nil {
		return nil, false
	}
	v, ok := m.Headers[name]
	return v, ok
}

// SetHeader sets a header, allocating the map on first use.
func (m *Message) SetHeader(name string, value interface{}) {
	if m.Headers == nil {
		m.Headers = make(map[string]interface{})
	}
	m.Headers[name] = value
}

// Predicate decides whether a message satisfies an expectation.
// Implementations must be safe for concurrent use.
type Predicate interface {
	Matches(msg *Message) bool
}

// PredicateFunc adapts a function to the Predicate interface.
type PredicateFunc func(msg *Message) bool

// Matches calls f(msg).
func (f PredicateFunc) Matches(msg *Message) bool {
	return f(msg)
}

// Processor applies a response transformation to a message.
// Implementations must be safe for concurrent use.
type Processor interface {
	Process(msg *Message) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(msg *Message) error

// Process calls f(msg).
func (f ProcessorFunc) Process(msg *Message) error {
	return f(msg)
}

type matchAll struct{}

func (matchAll) Matches(*Message) bool { return true }

// MatchAll accepts every message.
var MatchAll Predicate = matchAll{}

type noOp struct{}

func (noOp) Process(*Message) error { return nil }

// NoOp leaves the message untouched.
var NoOp Processor = noOp{}

type allOf []Predicate

func (a allOf) Matches(msg *Message) bool {
	for _, p := range a {
		if !p.Matches(msg) {
			return false
		}
	}
	return true
}

// All returns a predicate that matches when every given predicate matches.
func All(predicates ...Predicate) Predicate {
	switch len(predicates) {
	case 0:
		return MatchAll
	case 1:
		return predicates[0]
	}
	return allOf(append([]Predicate(nil), predicates...))
}

type chain []Processor

func (c chain) Process(msg *Message) error {
	for _, p := range c {
		if err := p.Process(msg); err != nil {
			return err
		}
	}
	return nil
}

// Chain returns a processor that applies the given processors in order,
// stopping at the first error.
func Chain(processors ...Processor) Processor {
	switch len(processors) {
	case 0:
		return NoOp
	case 1:
		return processors[0]
	}
	return chain(append([]Processor(nil), processors...))
}
