// Package errors provides error handling for ontomerge.
//
// It re-exports github.com/cockroachdb/errors so callers get stack traces,
// wrapping and user-facing hints from one import, and defines the typed
// errors shared across packages.
//
// Usage:
//
//	if err := store.AddEdge(e); err != nil {
//	    return errors.Wrapf(err, "copy edge %s", e)
//	}
//
//	return errors.WithHint(err, "declare the property in the ontology document")
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// ConfigurationError reports bad user input detected before any ontology
// mutation happens: an unparseable score, a missing taxon, an unknown
// property or reasoner name.
type ConfigurationError struct {
	Option string // flag or config key, e.g. "label-priority"
	Value  string // offending value, may be empty for missing options
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Option, e.Value, e.Reason)
}

// NewConfigurationError builds a ConfigurationError carrying a stack trace.
func NewConfigurationError(option, value, reason string) error {
	return crdb.WithStack(&ConfigurationError{Option: option, Value: value, Reason: reason})
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return crdb.As(err, &ce)
}

// StructuralError is returned by a store that rejects an edge, typically a
// self-loop on a hierarchy predicate produced by edge rewriting. Callers
// treat it as best-effort: the edge is dropped and processing continues.
type StructuralError struct {
	Edge   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural: %s: %s", e.Edge, e.Reason)
}

// IsStructuralError reports whether err wraps a StructuralError.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return crdb.As(err, &se)
}
