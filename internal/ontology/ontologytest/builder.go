// Package ontologytest builds small in-memory ontologies for tests.
package ontologytest

import (
	"testing"

	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"github.com/stretchr/testify/require"
)

// Builder adds classes and axioms to a graph, declaring endpoints on first use
type Builder struct {
	t testing.TB
	g *ontology.Graph
}

func New(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t, g: ontology.NewGraph()}
}

// Graph returns the graph built so far
func (b *Builder) Graph() *ontology.Graph { return b.g }

// Class declares id and, when given, sets its labels
func (b *Builder) Class(id string, labels ...string) *Builder {
	b.t.Helper()
	b.declare(id)
	if len(labels) > 0 {
		b.Annotate(id, vocabulary.Label, labels...)
	}
	return b
}

// Annotate appends plain literal values of kind to id
func (b *Builder) Annotate(id, kind string, values ...string) *Builder {
	b.t.Helper()
	b.declare(id)
	lits := b.g.Annotations(id, kind)
	for _, v := range values {
		lits = append(lits, model.Literal{Value: v})
	}
	require.NoError(b.t, b.g.SetAnnotations(id, kind, lits))
	return b
}

func (b *Builder) Sub(s, o string) *Builder      { return b.Rel(s, vocabulary.SubClassOf, o) }
func (b *Builder) Equiv(s, o string) *Builder    { return b.Rel(s, vocabulary.EquivalentTo, o) }
func (b *Builder) Disjoint(s, o string) *Builder { return b.Rel(s, vocabulary.DisjointWith, o) }

// Rel adds a named edge
func (b *Builder) Rel(s, p, o string) *Builder {
	b.t.Helper()
	b.declare(s)
	b.declare(o)
	_, err := b.g.AddEdge(model.Edge{Subject: s, Predicate: p, Object: o})
	require.NoError(b.t, err)
	return b
}

// Axiom adds an edge whose target is a class expression
func (b *Builder) Axiom(s, p string, x model.Expression) *Builder {
	b.t.Helper()
	b.declare(s)
	for _, id := range x.Signature() {
		b.declare(id)
	}
	_, err := b.g.AddEdge(model.Edge{Subject: s, Predicate: p, Expression: &x})
	require.NoError(b.t, err)
	return b
}

func (b *Builder) declare(id string) {
	b.t.Helper()
	if !b.g.HasNode(id) {
		require.NoError(b.t, b.g.AddNode(model.NewNode(id)))
	}
}

// Labels returns the label values of id
func Labels(s ontology.Store, id string) []string {
	var out []string
	for _, l := range s.Annotations(id, vocabulary.Label) {
		out = append(out, l.Value)
	}
	return out
}
