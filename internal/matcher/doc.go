// Package matcher provides the concrete predicates expectation files can use
// to match inbound messages: exact and substring body comparison, header
// comparison, JSON field conditions, doublestar globs and JSON Schema
// validation. All predicates are immutable and safe for concurrent use.
package matcher
