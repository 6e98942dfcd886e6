package feeder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedMessage is returned by Deliver when an endpoint receives a
// message it has no expectation left for.
var ErrUnexpectedMessage = errors.New("unexpected message")

// UnknownEndpointError is returned when a message arrives for an endpoint
// that has no definition.
type UnknownEndpointError struct {
	Endpoint string
}

func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("no expectations defined for endpoint %s", e.Endpoint)
}

// VerificationError describes how an endpoint failed its expectations.
type VerificationError struct {
	Endpoint string
	// Expected is the number of messages the definition expects
	Expected int
	// Received counts messages that were matched against an expectation
	Received int
	// Mismatched lists the expectation indexes whose predicate rejected the message
	Mismatched []int
	// Unexpected counts messages that arrived after all expectations were consumed
	Unexpected int
	// Failed counts exchanges whose processor returned an error
	Failed int
	// TimedOut is set when the assertion timeout elapsed before all messages arrived
	TimedOut bool
}

func (e *VerificationError) Error() string {
	var problems []string
	if missing := e.Expected - e.Received; missing > 0 {
		problems = append(problems, fmt.Sprintf("%d of %d expected messages missing", missing, e.Expected))
	}
	if len(e.Mismatched) > 0 {
		problems = append(problems, fmt.Sprintf("expectations %v not satisfied", e.Mismatched))
	}
	if e.Unexpected > 0 {
		problems = append(problems, fmt.Sprintf("%d unexpected messages", e.Unexpected))
	}
	if e.Failed > 0 {
		problems = append(problems, fmt.Sprintf("%d responses failed", e.Failed))
	}
	if e.TimedOut {
		problems = append(problems, "assertion timeout elapsed")
	}
	return fmt.Sprintf("endpoint %s failed verification: %s", e.Endpoint, strings.Join(problems, ", "))
}

// IsVerificationError checks if an error is a VerificationError.
func IsVerificationError(err error) bool {
	var verr *VerificationError
	return errors.As(err, &verr)
}

// IsUnknownEndpoint checks if an error is an UnknownEndpointError.
func IsUnknownEndpoint(err error) bool {
	var uerr *UnknownEndpointError
	return errors.As(err, &uerr)
}
