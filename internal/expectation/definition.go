package expectation

import (
	"time"
)

// Definition is the merged expectation of one endpoint. It is produced by
// Part.Build and never mutated afterwards, so it can be shared between the
// goroutines delivering messages to the endpoint.
type Definition struct {
	endpoint             string
	ordering             Ordering
	endpointOrdered      bool
	predicates           []Predicate
	processors           []Processor
	expectedMessageCount int
	lenientSelector      Predicate
	lenientResponder     LenientResponder
	assertionTimeout     time.Duration
	feederWiring         *FeederWiring
}

// Endpoint returns the endpoint identity.
func (d *Definition) Endpoint() string { return d.endpoint }

// Ordering returns the endpoint's ordering mode.
func (d *Definition) Ordering() Ordering { return d.ordering }

// EndpointOrdered reports whether the endpoint is ordered against other endpoints.
func (d *Definition) EndpointOrdered() bool { return d.endpointOrdered }

// ExpectedMessageCount returns the number of non-lenient messages expected.
func (d *Definition) ExpectedMessageCount() int { return d.expectedMessageCount }

// AssertionTimeout returns how long the runtime should wait for the endpoint.
func (d *Definition) AssertionTimeout() time.Duration { return d.assertionTimeout }

// Predicates returns a copy of the per-message predicates in authoring order.
func (d *Definition) Predicates() []Predicate {
	return append([]Predicate(nil), d.predicates...)
}

// Processors returns a copy of the per-message response processors in
// authoring order.
func (d *Definition) Processors() []Processor {
	return append([]Processor(nil), d.processors...)
}

// Predicate returns the predicate for the i-th expected message.
func (d *Definition) Predicate(i int) Predicate { return d.predicates[i] }

// Processor returns the response processor for the i-th expected message.
func (d *Definition) Processor(i int) Processor { return d.processors[i] }

// IsLenient reports whether one of the merged parts was lenient.
func (d *Definition) IsLenient() bool { return d.lenientSelector != nil }

// LenientSelector returns the selector of the lenient part, or nil.
func (d *Definition) LenientSelector() Predicate { return d.lenientSelector }

// LenientResponder returns the responder of the lenient part, or nil.
func (d *Definition) LenientResponder() LenientResponder { return d.lenientResponder }

// FeederWiring returns a copy of the endpoint's feeder wiring.
func (d *Definition) FeederWiring() *FeederWiring { return d.feederWiring.clone() }
