// Package expectation models what a mocked endpoint expects to receive and
// how it answers.
//
// Expectations are authored incrementally as Parts and folded, in authoring
// order, into one immutable Definition per endpoint:
//
//	def, err := expectation.NewPart("orders.create").
//	    ExpectedMessageCount(2).
//	    Predicates(isOrder, isOrder).
//	    Processors(accepted, rejected).
//	    Build(nil)
//
//	def, err = expectation.NewPart("orders.create").
//	    Lenient().
//	    Processors(accepted).
//	    Build(def)
//
// All parts of an endpoint must agree on ordering mode, endpoint ordering and
// feeder wiring, and at most one of them may be lenient. Violations surface
// from Build as *MergeConflictError; a malformed part yields a
// *ConfigurationError. Softer inconsistencies, such as differing assertion
// timeouts, are logged as warnings under the "Expectation" subsystem.
//
// Lenient endpoints accept any message matching their selector and answer with
// a ResponseCycler, which is safe for concurrent deliveries.
package expectation
