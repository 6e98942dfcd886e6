package expectation

import (
	"time"
)

// DefaultAssertionTimeout is how long the verification runtime waits for an
// endpoint's expectations to be satisfied unless a part says otherwise.
const DefaultAssertionTimeout = 15 * time.Second

// Part is one incrementally authored slice of an endpoint's expectation.
// Configure it with the chained setters and fold it into the endpoint's
// definition with Build. A Part is not safe for concurrent configuration.
type Part struct {
	endpoint             string
	ordering             Ordering
	endpointOrdered      bool
	expectedMessageCount int
	predicates           [][]Predicate
	processors           [][]Processor
	lenientSelector      Predicate
	lenientStrategy      LenientStrategy
	assertionTimeout     time.Duration
	feederWiring         *FeederWiring
	invalidIndex         *int
}

// NewPart starts a part for the given endpoint with the defaults: one
// expected message, total ordering, endpoint ordered and a 15s assertion
// timeout.
func NewPart(endpoint string) *Part {
	return &Part{
		endpoint:             endpoint,
		ordering:             OrderingTotal,
		endpointOrdered:      true,
		expectedMessageCount: 1,
		assertionTimeout:     DefaultAssertionTimeout,
	}
}

// Endpoint returns the endpoint identity of the part.
func (p *Part) Endpoint() string {
	return p.endpoint
}

// ExpectedMessageCount sets how many messages this part expects. Negative
// values are rejected by Build.
func (p *Part) ExpectedMessageCount(n int) *Part {
	p.expectedMessageCount = n
	return p
}

// Ordering sets the endpoint's ordering mode.
func (p *Part) Ordering(o Ordering) *Part {
	p.ordering = o
	return p
}

// EndpointOrdered sets whether the endpoint holds a fixed position in the
// cross-endpoint timeline.
func (p *Part) EndpointOrdered(ordered bool) *Part {
	p.endpointOrdered = ordered
	return p
}

// EndpointNotOrdered is shorthand for EndpointOrdered(false).
func (p *Part) EndpointNotOrdered() *Part {
	return p.EndpointOrdered(false)
}

// Lenient marks the part lenient for every message.
func (p *Part) Lenient() *Part {
	return p.LenientSelector(MatchAll)
}

// LenientSelector marks the part lenient for messages matching selector.
// Passing nil clears leniency.
func (p *Part) LenientSelector(selector Predicate) *Part {
	p.lenientSelector = selector
	return p
}

// LenientStrategy replaces the round-robin responder used for lenient parts.
func (p *Part) LenientStrategy(strategy LenientStrategy) *Part {
	p.lenientStrategy = strategy
	return p
}

// AssertionTimeout sets how long the runtime waits for this endpoint.
// Only the first part's value is honoured.
func (p *Part) AssertionTimeout(d time.Duration) *Part {
	p.assertionTimeout = d
	return p
}

// FeederWiring sets how the endpoint is attached to its transport. Only the
// first part of an endpoint may set it.
func (p *Part) FeederWiring(w *FeederWiring) *Part {
	p.feederWiring = w
	return p
}

// Predicates appends one predicate per expected message, in order.
func (p *Part) Predicates(predicates ...Predicate) *Part {
	for _, predicate := range predicates {
		p.predicates = append(p.predicates, []Predicate{predicate})
	}
	return p
}

// AddPredicates adds predicates that all have to match the message at index.
func (p *Part) AddPredicates(index int, predicates ...Predicate) *Part {
	if index < 0 {
		p.markInvalid(index)
		return p
	}
	for len(p.predicates) <= index {
		p.predicates = append(p.predicates, nil)
	}
	p.predicates[index] = append(p.predicates[index], predicates...)
	return p
}

// Processors appends one response processor per expected message, in order.
func (p *Part) Processors(processors ...Processor) *Part {
	for _, processor := range processors {
		p.processors = append(p.processors, []Processor{processor})
	}
	return p
}

// AddProcessors adds processors that are applied in order to the message at
// index. For lenient parts the processors of all indexes, flattened in index
// order, become the cycled responses.
func (p *Part) AddProcessors(index int, processors ...Processor) *Part {
	if index < 0 {
		p.markInvalid(index)
		return p
	}
	for len(p.processors) <= index {
		p.processors = append(p.processors, nil)
	}
	p.processors[index] = append(p.processors[index], processors...)
	return p
}

func (p *Part) markInvalid(index int) {
	if p.invalidIndex == nil {
		p.invalidIndex = &index
	}
}

func (p *Part) authoredPredicateCount() int {
	n := 0
	for _, at := range p.predicates {
		n += len(at)
	}
	return n
}

func (p *Part) flattenedProcessors() []Processor {
	var flat []Processor
	for _, at := range p.processors {
		flat = append(flat, at...)
	}
	return flat
}
