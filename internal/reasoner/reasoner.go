// Package reasoner answers the entailment questions the merge algorithms
// depend on: consistency, unsatisfiable classes, inferred equivalences and
// inferred superclasses.
//
// Reasoners are created per ontology through a Factory and classify it
// eagerly; queries afterwards are cheap lookups. Mutating the ontology does
// not update a reasoner created before the mutation.
package reasoner

import (
	"context"
	"sort"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/ontology"
)

// Reasoner is the entailment oracle consumed by the merge algorithms
type Reasoner interface {
	// Name identifies the implementation in logs and reports.
	Name() string
	// IsConsistent reports whether the ontology has a model.
	IsConsistent() bool
	// UnsatisfiableClasses lists classes that can have no instances,
	// excluding owl:Nothing, sorted.
	UnsatisfiableClasses() []string
	// EquivalentClasses lists every class equivalent to id, id included,
	// sorted.
	EquivalentClasses(id string) []string
	// SuperClasses lists the strict inferred superclasses of id, excluding
	// owl:Thing and id's equivalents, sorted.
	SuperClasses(id string) []string
}

// Factory classifies an ontology and returns a reasoner bound to it
type Factory func(ctx context.Context, s ontology.Store) (Reasoner, error)

// DefaultName is the reasoner used when none is configured
const DefaultName = "structural"

var registry = map[string]Factory{
	"structural": Structural,
	"asserted":   Asserted,
}

// Lookup returns the factory registered under name
func Lookup(name string) (Factory, error) {
	if name == "" {
		name = DefaultName
	}
	f, ok := registry[name]
	if !ok {
		return nil, errors.WithHintf(
			errors.NewConfigurationError("reasoner", name, "unknown reasoner"),
			"available reasoners: %v", Names())
	}
	return f, nil
}

// Names lists the registered reasoner names
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
