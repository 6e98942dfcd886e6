package expectation

import (
	"sync/atomic"
)

// LenientResponder answers messages on a lenient endpoint. Process must be
// safe to call from many goroutines at once.
type LenientResponder interface {
	Processor
	// Responses returns the processors the responder selects from.
	Responses() []Processor
}

// LenientStrategy builds the responder for a lenient part from the part's
// authored response processors.
type LenientStrategy func(responses []Processor) LenientResponder

// CycleResponses is the default LenientStrategy.
func CycleResponses(responses []Processor) LenientResponder {
	return NewResponseCycler(responses)
}

// ResponseCycler hands out its responses in round-robin order. The counter is
// the only mutable state and is advanced with a lock-free fetch-and-add.
type ResponseCycler struct {
	responses []Processor
	index     atomic.Uint64
}

// NewResponseCycler creates a cycler over a copy of responses. An empty list
// is valid: every message is accepted and left untouched.
func NewResponseCycler(responses []Processor) *ResponseCycler {
	return &ResponseCycler{
		responses: append([]Processor(nil), responses...),
	}
}

// Next returns the next response processor, or NoOp when there are none.
func (c *ResponseCycler) Next() Processor {
	n := uint64(len(c.responses))
	if n == 0 {
		return NoOp
	}
	i := c.index.Add(1) - 1
	return c.responses[i%n]
}

// Process applies the next response to msg.
func (c *ResponseCycler) Process(msg *Message) error {
	return c.Next().Process(msg)
}

// Responses returns a copy of the cycled processors.
func (c *ResponseCycler) Responses() []Processor {
	return append([]Processor(nil), c.responses...)
}
