package matcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"mockspec/internal/expectation"
)

// BodyEquals matches messages whose body is exactly the given text.
type BodyEquals string

// Matches implements expectation.Predicate.
func (b BodyEquals) Matches(msg *expectation.Message) bool {
	return string(msg.Body) == string(b)
}

func (b BodyEquals) String() string {
	return fmt.Sprintf("body == %q", string(b))
}

// BodyContains matches messages whose body contains the given text.
type BodyContains string

// Matches implements expectation.Predicate.
func (b BodyContains) Matches(msg *expectation.Message) bool {
	return bytes.Contains(msg.Body, []byte(b))
}

func (b BodyContains) String() string {
	return fmt.Sprintf("body contains %q", string(b))
}

// HeaderEquals matches messages carrying a header with the expected value.
type HeaderEquals struct {
	Name  string
	Value interface{}
}

// Matches implements expectation.Predicate.
func (h HeaderEquals) Matches(msg *expectation.Message) bool {
	actual, ok := msg.Header(h.Name)
	return ok && valuesEqual(h.Value, actual)
}

func (h HeaderEquals) String() string {
	return fmt.Sprintf("header %s == %v", h.Name, h.Value)
}

// Condition matches JSON object bodies whose top-level fields equal the
// expected values. An empty condition matches every message.
type Condition map[string]interface{}

// Matches implements expectation.Predicate.
func (c Condition) Matches(msg *expectation.Message) bool {
	if len(c) == 0 {
		return true
	}

	fields, ok := DecodeObject(msg.Body)
	if !ok {
		return false
	}

	for key, expectedValue := range c {
		actualValue, exists := fields[key]
		if !exists || !valuesEqual(expectedValue, actualValue) {
			return false
		}
	}
	return true
}

func (c Condition) String() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c[k]))
	}
	return "condition{" + strings.Join(parts, ", ") + "}"
}

// Glob matches bodies against a doublestar pattern, e.g. "orders/**/created".
type Glob struct {
	pattern string
}

// NewGlob validates pattern and returns a glob predicate.
func NewGlob(pattern string) (*Glob, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return &Glob{pattern: pattern}, nil
}

// Matches implements expectation.Predicate.
func (g *Glob) Matches(msg *expectation.Message) bool {
	ok, err := doublestar.Match(g.pattern, string(msg.Body))
	return err == nil && ok
}

func (g *Glob) String() string {
	return fmt.Sprintf("body matches %q", g.pattern)
}

type anyOf []expectation.Predicate

func (a anyOf) Matches(msg *expectation.Message) bool {
	for _, p := range a {
		if p.Matches(msg) {
			return true
		}
	}
	return false
}

// Any matches when at least one of the predicates matches.
func Any(predicates ...expectation.Predicate) expectation.Predicate {
	return anyOf(append([]expectation.Predicate(nil), predicates...))
}

type not struct {
	inner expectation.Predicate
}

func (n not) Matches(msg *expectation.Message) bool {
	return !n.inner.Matches(msg)
}

// Not inverts a predicate.
func Not(p expectation.Predicate) expectation.Predicate {
	return not{inner: p}
}

// DecodeObject decodes a JSON object body. It reports false for empty or
// non-object bodies.
func DecodeObject(body []byte) (map[string]interface{}, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	return fields, fields != nil
}

// valuesEqual compares two values for equality, handling type conversions
// between YAML-authored and JSON-decoded values (e.g. int vs float64).
func valuesEqual(expected, actual interface{}) bool {
	if reflect.DeepEqual(expected, actual) {
		return true
	}
	return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
}
