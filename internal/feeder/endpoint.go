package feeder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mockspec/internal/expectation"
	"mockspec/pkg/logging"
)

// Outcome classifies a delivered message.
type Outcome string

const (
	OutcomeMatched    Outcome = "matched"
	OutcomeMismatched Outcome = "mismatched"
	OutcomeUnexpected Outcome = "unexpected"
	OutcomeLenient    Outcome = "lenient"
	OutcomeFailed     Outcome = "failed"
)

// Exchange records one delivered message and the answer it received.
type Exchange struct {
	// Index is the expectation the message was assigned to, or -1
	Index    int
	Request  *expectation.Message
	Response *expectation.Message
	Outcome  Outcome
	Err      error
}

// Endpoint verifies the messages of a single endpoint against its definition.
type Endpoint struct {
	def     *expectation.Definition
	clock   Clock
	metrics *Metrics

	mu        sync.Mutex
	next      int
	satisfied []bool
	received  int
	exchanges []Exchange
	done      chan struct{}
	doneOnce  sync.Once
}

func newEndpoint(def *expectation.Definition, clock Clock, metrics *Metrics) *Endpoint {
	e := &Endpoint{
		def:       def,
		clock:     clock,
		metrics:   metrics,
		satisfied: make([]bool, def.ExpectedMessageCount()),
		done:      make(chan struct{}),
	}
	if def.ExpectedMessageCount() == 0 {
		e.complete()
	}
	return e
}

// Name returns the endpoint identity.
func (e *Endpoint) Name() string {
	return e.def.Endpoint()
}

// Definition returns the merged definition the endpoint verifies against.
func (e *Endpoint) Definition() *expectation.Definition {
	return e.def
}

// Deliver stamps msg with an ID and receive time, assigns it to an
// expectation and returns the response produced by that expectation's
// processor. The returned message is a copy; msg itself is left as the
// recorded request.
func (e *Endpoint) Deliver(ctx context.Context, msg *expectation.Message) (*expectation.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = e.clock.Now()
	}
	msg.Endpoint = e.def.Endpoint()
	request := cloneMessage(msg)

	if e.def.IsLenient() && e.def.LenientSelector().Matches(request) {
		response := cloneMessage(request).WithContext(ctx)
		err := e.def.LenientResponder().Process(response)
		e.record(Exchange{Index: -1, Request: request, Response: response, Outcome: outcomeOf(OutcomeLenient, err), Err: err})
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: respond to lenient message %s: %w", e.Name(), request.ID, err)
		}
		return response, nil
	}

	e.mu.Lock()
	index, outcome := e.assignLocked(request)
	e.mu.Unlock()

	if outcome == OutcomeUnexpected {
		logging.Warn("Feeder", "Endpoint %s received unexpected message %s", e.Name(), request.ID)
		e.record(Exchange{Index: -1, Request: request, Outcome: outcome})
		return nil, fmt.Errorf("endpoint %s: %w", e.Name(), ErrUnexpectedMessage)
	}

	response := cloneMessage(request).WithContext(ctx)
	var err error
	if index >= 0 {
		err = e.def.Processor(index).Process(response)
	}
	if outcome == OutcomeMismatched {
		logging.Warn("Feeder", "Message %s on endpoint %s did not satisfy expectation %d", request.ID, e.Name(), index)
	}
	e.record(Exchange{Index: index, Request: request, Response: response, Outcome: outcomeOf(outcome, err), Err: err})
	if err != nil {
		return nil, fmt.Errorf("endpoint %s: respond to message %s: %w", e.Name(), request.ID, err)
	}
	return response, nil
}

// assignLocked picks the expectation for msg and updates the progress
// counters. It returns -1 when the message has no expectation to answer it.
func (e *Endpoint) assignLocked(msg *expectation.Message) (int, Outcome) {
	count := e.def.ExpectedMessageCount()

	if e.def.Ordering() == expectation.OrderingNone {
		if e.received >= count {
			return -1, OutcomeUnexpected
		}
		e.received++
		defer e.checkCompleteLocked()
		for i := 0; i < count; i++ {
			if !e.satisfied[i] && e.def.Predicate(i).Matches(msg) {
				e.satisfied[i] = true
				return i, OutcomeMatched
			}
		}
		return -1, OutcomeMismatched
	}

	if e.next >= count {
		return -1, OutcomeUnexpected
	}
	index := e.next
	e.next++
	e.received++
	defer e.checkCompleteLocked()
	if e.def.Predicate(index).Matches(msg) {
		e.satisfied[index] = true
		return index, OutcomeMatched
	}
	return index, OutcomeMismatched
}

func (e *Endpoint) checkCompleteLocked() {
	if e.received >= e.def.ExpectedMessageCount() {
		e.complete()
	}
}

func (e *Endpoint) complete() {
	e.doneOnce.Do(func() { close(e.done) })
}

func (e *Endpoint) record(ex Exchange) {
	e.mu.Lock()
	e.exchanges = append(e.exchanges, ex)
	e.mu.Unlock()
	e.metrics.observe(e.Name(), ex.Outcome)
	logging.Debug("Feeder", "Endpoint %s message %s: %s", e.Name(), ex.Request.ID, ex.Outcome)
}

// Exchanges returns the recorded exchanges in delivery order.
func (e *Endpoint) Exchanges() []Exchange {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Exchange, len(e.exchanges))
	copy(out, e.exchanges)
	return out
}

// Await blocks until the endpoint received its expected number of messages,
// its assertion timeout elapsed or ctx is cancelled, then verifies what was
// received. Lenient-only endpoints verify immediately.
func (e *Endpoint) Await(ctx context.Context) error {
	timer := time.NewTimer(e.def.AssertionTimeout())
	defer timer.Stop()

	timedOut := false
	select {
	case <-e.done:
	case <-timer.C:
		timedOut = true
	case <-ctx.Done():
		return ctx.Err()
	}
	return e.Verify(timedOut)
}

// Verify checks the exchanges recorded so far. timedOut marks the result as
// produced by an elapsed assertion timeout.
func (e *Endpoint) Verify(timedOut bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	verr := &VerificationError{
		Endpoint: e.Name(),
		Expected: e.def.ExpectedMessageCount(),
		TimedOut: timedOut && e.received < e.def.ExpectedMessageCount(),
	}
	for _, ex := range e.exchanges {
		switch ex.Outcome {
		case OutcomeUnexpected:
			verr.Unexpected++
		case OutcomeFailed:
			verr.Failed++
		}
	}
	verr.Received = e.received

	satisfied := 0
	for i, ok := range e.satisfied {
		if ok {
			satisfied++
			continue
		}
		if e.def.Ordering() != expectation.OrderingNone && i < e.next {
			verr.Mismatched = append(verr.Mismatched, i)
		}
	}
	if e.def.Ordering() == expectation.OrderingNone {
		for i, ok := range e.satisfied {
			if !ok && satisfied < e.received {
				verr.Mismatched = append(verr.Mismatched, i)
				satisfied++
			}
		}
	}

	if verr.Received == verr.Expected && len(verr.Mismatched) == 0 && verr.Unexpected == 0 && verr.Failed == 0 {
		return nil
	}
	return verr
}

func outcomeOf(outcome Outcome, err error) Outcome {
	if err != nil {
		return OutcomeFailed
	}
	return outcome
}

func cloneMessage(msg *expectation.Message) *expectation.Message {
	c := *msg
	if msg.Body != nil {
		c.Body = append([]byte(nil), msg.Body...)
	}
	if msg.Headers != nil {
		c.Headers = make(map[string]interface{}, len(msg.Headers))
		for k, v := range msg.Headers {
			c.Headers[k] = v
		}
	}
	return &c
}
