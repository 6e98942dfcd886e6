package responder

import (
	"mockspec/internal/expectation"
	"mockspec/pkg/logging"
)

// AddSyncResponses attaches request/reply responses to a part. The i-th body
// and the i-th header set both answer the i-th expected message; either list
// may be shorter than the other.
func AddSyncResponses(part *expectation.Part, bodies []expectation.Processor, headers []Headers) *expectation.Part {
	count := len(bodies)
	if len(headers) > count {
		count = len(headers)
	}

	logging.Debug("Responder", "%d body processors and %d header processors provided for endpoint %s",
		len(bodies), len(headers), part.Endpoint())

	for i := 0; i < count; i++ {
		if i < len(bodies) {
			part.AddProcessors(i, bodies[i])
		}
		if i < len(headers) {
			part.AddProcessors(i, headers[i])
		}
	}
	return part
}
