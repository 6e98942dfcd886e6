package expectation

import (
	"mockspec/pkg/logging"
)

const subsystem = "Expectation"

// Build validates the part and folds it into previous, the definition merged
// from the endpoint's earlier parts (nil for the first part). The returned
// definition lists previous's predicates and processors before this part's.
// On error nothing is returned and previous is left untouched.
func (p *Part) Build(previous *Definition) (*Definition, error) {
	if p.expectedMessageCount < 0 {
		return nil, newConfigurationError(p.endpoint, "expectedMessageCount",
			"the expected message count must be at least 0, got %d", p.expectedMessageCount)
	}
	if p.invalidIndex != nil {
		return nil, newConfigurationError(p.endpoint, "index",
			"message index %d is negative", *p.invalidIndex)
	}

	count := p.expectedMessageCount
	selector := p.lenientSelector
	var responder LenientResponder

	if selector != nil {
		if count > 0 {
			logging.Warn(subsystem, "Expectations for a lenient endpoint part %s will be ignored", p.endpoint)
		}
		count = 0

		strategy := p.lenientStrategy
		if strategy == nil {
			strategy = CycleResponses
		}
		responder = strategy(p.flattenedProcessors())

		if p.authoredPredicateCount() > 0 {
			logging.Warn(subsystem, "Endpoint %s part is marked as lenient but predicates have been provided - these will be ignored", p.endpoint)
		}
	}

	wiring := p.feederWiring
	if previous == nil {
		if wiring == nil {
			wiring = DefaultFeederWiring()
		}
		wiring = wiring.from(p.endpoint)
	}

	predicates := []Predicate{}
	processors := []Processor{}
	if selector == nil {
		var err error
		if predicates, err = materializePredicates(p.endpoint, p.predicates, count); err != nil {
			return nil, err
		}
		if processors, err = materializeProcessors(p.endpoint, p.processors, count); err != nil {
			return nil, err
		}
	}

	def := &Definition{
		endpoint:             p.endpoint,
		ordering:             p.ordering,
		endpointOrdered:      p.endpointOrdered,
		predicates:           predicates,
		processors:           processors,
		expectedMessageCount: count,
		lenientSelector:      selector,
		lenientResponder:     responder,
		assertionTimeout:     p.assertionTimeout,
		feederWiring:         wiring,
	}

	if previous == nil {
		logging.Debug(subsystem, "Built first part for endpoint %s expecting %d message(s)", p.endpoint, count)
		return def, nil
	}

	if err := p.checkMergeable(previous); err != nil {
		return nil, err
	}

	if previous.assertionTimeout != p.assertionTimeout {
		logging.Warn(subsystem, "The assertion time for a subsequent part on endpoint %s differs (%s vs %s) - the first will be used for the endpoint as a whole",
			p.endpoint, previous.assertionTimeout, p.assertionTimeout)
		def.assertionTimeout = previous.assertionTimeout
	}

	if selector == nil {
		def.predicates = append(append(make([]Predicate, 0, len(previous.predicates)+len(predicates)), previous.predicates...), predicates...)
		def.processors = append(append(make([]Processor, 0, len(previous.processors)+len(processors)), previous.processors...), processors...)
	} else {
		def.predicates = previous.predicates
		def.processors = previous.processors
	}

	def.expectedMessageCount = previous.expectedMessageCount + count
	def.feederWiring = previous.feederWiring
	def.endpointOrdered = previous.endpointOrdered
	if previous.lenientSelector != nil {
		def.lenientSelector = previous.lenientSelector
		def.lenientResponder = previous.lenientResponder
	}

	logging.Debug(subsystem, "Merged part into endpoint %s, now expecting %d message(s)", p.endpoint, def.expectedMessageCount)
	return def, nil
}

// checkMergeable enforces the invariants shared by all parts of an endpoint.
func (p *Part) checkMergeable(previous *Definition) error {
	if previous.endpoint != p.endpoint {
		return newMergeConflictError(p.endpoint, "endpoint",
			"cannot merge with a definition for endpoint %s", previous.endpoint)
	}
	if previous.endpointOrdered != p.endpointOrdered {
		return newMergeConflictError(p.endpoint, "endpointOrdered",
			"endpoint ordering must be the same for all parts (previous %t, this part %t)", previous.endpointOrdered, p.endpointOrdered)
	}
	if previous.ordering != p.ordering {
		return newMergeConflictError(p.endpoint, "ordering",
			"ordering must be the same for all parts (previous %s, this part %s)", previous.ordering, p.ordering)
	}
	if p.feederWiring != nil && previous.feederWiring != nil {
		return newMergeConflictError(p.endpoint, "feederWiring",
			"feeder wiring can only be specified in the first part")
	}
	if p.lenientSelector != nil && previous.lenientSelector != nil {
		return newMergeConflictError(p.endpoint, "lenient",
			"only one part of an endpoint can be lenient")
	}
	return nil
}

func materializePredicates(endpoint string, authored [][]Predicate, count int) ([]Predicate, error) {
	if len(authored) > count {
		return nil, newConfigurationError(endpoint, "predicates",
			"predicates were supplied for %d message(s) but only %d are expected", len(authored), count)
	}
	result := make([]Predicate, count)
	for i := range result {
		if i < len(authored) {
			result[i] = All(authored[i]...)
		} else {
			result[i] = MatchAll
		}
	}
	return result, nil
}

func materializeProcessors(endpoint string, authored [][]Processor, count int) ([]Processor, error) {
	if len(authored) > count {
		return nil, newConfigurationError(endpoint, "processors",
			"responses were supplied for %d message(s) but only %d are expected", len(authored), count)
	}
	result := make([]Processor, count)
	for i := range result {
		if i < len(authored) {
			result[i] = Chain(authored[i]...)
		} else {
			result[i] = NoOp
		}
	}
	return result, nil
}
