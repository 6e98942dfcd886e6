package expectation

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a malformed expectation part, such as a negative
// message count or more predicates than expected messages.
type ConfigurationError struct {
	// Endpoint is the endpoint identity of the offending part
	Endpoint string
	// Field names the part attribute that is invalid
	Field string
	// Message describes the problem
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid expectation for endpoint %s: %s: %s", e.Endpoint, e.Field, e.Message)
}

// MergeConflictError reports an expectation part that cannot be merged with
// the parts already defined for the same endpoint.
type MergeConflictError struct {
	// Endpoint is the endpoint identity of the part being merged
	Endpoint string
	// Attribute names the conflicting attribute (e.g. "ordering")
	Attribute string
	// Message describes the conflict
	Message string
}

// Error implements the error interface.
func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("cannot merge expectation part for endpoint %s: %s: %s", e.Endpoint, e.Attribute, e.Message)
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// IsMergeConflict reports whether err is or wraps a MergeConflictError.
func IsMergeConflict(err error) bool {
	var conflictErr *MergeConflictError
	return errors.As(err, &conflictErr)
}

func newConfigurationError(endpoint, field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Endpoint: endpoint,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	}
}

func newMergeConflictError(endpoint, attribute, format string, args ...interface{}) *MergeConflictError {
	return &MergeConflictError{
		Endpoint:  endpoint,
		Attribute: attribute,
		Message:   fmt.Sprintf(format, args...),
	}
}
