package config

import (
	"time"

	"mockspec/internal/expectation"
)

// File is the on-disk layout of an expectation file.
type File struct {
	Settings     *Settings         `yaml:"settings,omitempty"`
	Expectations []ExpectationSpec `yaml:"expectations"`
}

// ExpectationSpec is one authored part.
type ExpectationSpec struct {
	Endpoint             string               `yaml:"endpoint"`
	Ordering             expectation.Ordering `yaml:"ordering,omitempty"`
	EndpointOrdered      *bool                `yaml:"endpoint_ordered,omitempty"`
	ExpectedMessageCount *int                 `yaml:"expected_message_count,omitempty"`
	AssertionTimeout     time.Duration        `yaml:"assertion_timeout,omitempty"`
	Feeder               *FeederSpec          `yaml:"feeder,omitempty"`
	Lenient              *LenientSpec         `yaml:"lenient,omitempty"`
	Expect               []MessageExpectation `yaml:"expect,omitempty"`
}

// FeederSpec selects the transport for an endpoint.
type FeederSpec struct {
	Transport string            `yaml:"transport,omitempty"`
	Options   map[string]string `yaml:"options,omitempty"`
}

// LenientSpec marks a part lenient. Without a match every message is accepted.
type LenientSpec struct {
	Match   *MatchSpec    `yaml:"match,omitempty"`
	Respond []RespondSpec `yaml:"respond,omitempty"`
}

// MessageExpectation describes the expected message at one position and the
// response to it.
type MessageExpectation struct {
	Match   *MatchSpec   `yaml:"match,omitempty"`
	Respond *RespondSpec `yaml:"respond,omitempty"`
}

// MatchSpec combines predicates; every field that is set must match. Any
// holds alternatives of which one must match; Not must not match.
type MatchSpec struct {
	Body      *string                `yaml:"body,omitempty"`
	Contains  string                 `yaml:"contains,omitempty"`
	Glob      string                 `yaml:"glob,omitempty"`
	Headers   map[string]string      `yaml:"headers,omitempty"`
	Condition map[string]interface{} `yaml:"condition,omitempty"`
	Schema    interface{}            `yaml:"schema,omitempty"`
	Any       []MatchSpec            `yaml:"any,omitempty"`
	Not       *MatchSpec             `yaml:"not,omitempty"`
}

// RespondSpec shapes the response. Body is sent as-is (strings verbatim,
// structured values as JSON); Template is rendered against the request.
type RespondSpec struct {
	Body     interface{}       `yaml:"body,omitempty"`
	Template interface{}       `yaml:"template,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Fault    string            `yaml:"fault,omitempty"`
	Delay    time.Duration     `yaml:"delay,omitempty"`
}
