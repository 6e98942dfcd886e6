// Package feeder is the receiving side of mock endpoints.
//
// A Runtime holds one Endpoint per merged expectation definition. Transports
// hand every inbound message to Runtime.Deliver, which answers it with the
// processor of the expectation it satisfies and records the exchange. Await
// then blocks until every endpoint has received its expected messages or its
// assertion timeout elapsed, and reports what was missing, mismatched or
// unexpected as a *VerificationError.
//
// Within an endpoint, TOTAL and PARTIAL ordering consume expectations by
// position and NONE consumes the first unsatisfied expectation whose predicate
// accepts the message. Lenient endpoints answer messages accepted by their
// selector through the lenient responder without consuming expectations.
//
// Ordering across endpoints is not evaluated.
package feeder
