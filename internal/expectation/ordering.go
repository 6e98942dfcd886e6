package expectation

import (
	"fmt"
	"strings"
)

// Ordering describes how strictly messages arriving at one endpoint must
// follow the order in which their expectations were authored.
type Ordering int

const (
	// OrderingTotal requires messages to arrive exactly in authored sequence.
	OrderingTotal Ordering = iota
	// OrderingPartial allows a message to arrive later than its position
	// implies, but never ahead of an earlier expectation.
	OrderingPartial
	// OrderingNone matches messages by content only.
	OrderingNone
)

// String returns the lower-case name used in expectation files.
func (o Ordering) String() string {
	switch o {
	case OrderingTotal:
		return "total"
	case OrderingPartial:
		return "partial"
	case OrderingNone:
		return "none"
	default:
		return fmt.Sprintf("ordering(%d)", int(o))
	}
}

// ParseOrdering converts a case-insensitive name into an Ordering.
// An empty string yields OrderingTotal.
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "total":
		return OrderingTotal, nil
	case "partial":
		return OrderingPartial, nil
	case "none":
		return OrderingNone, nil
	default:
		return OrderingTotal, fmt.Errorf("unknown ordering %q (expected total, partial or none)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Ordering) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Ordering) UnmarshalText(text []byte) error {
	parsed, err := ParseOrdering(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
