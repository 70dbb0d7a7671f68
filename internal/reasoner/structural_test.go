package reasoner

import (
	"context"
	"testing"

	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology/ontologytest"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructural_EquivalenceFromToldAxioms(t *testing.T) {
	g := ontologytest.New(t).
		Equiv("A:1", "B:1").
		Equiv("B:1", "C:1").
		Sub("D:1", "E:1").
		Sub("E:1", "D:1").
		Class("F:1").
		Graph()

	r, err := Structural(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, []string{"A:1", "B:1", "C:1"}, r.EquivalentClasses("C:1"))
	assert.Equal(t, []string{"D:1", "E:1"}, r.EquivalentClasses("D:1"), "subclass cycles collapse")
	assert.Equal(t, []string{"F:1"}, r.EquivalentClasses("F:1"))
	assert.Equal(t, []string{"Z:1"}, r.EquivalentClasses("Z:1"), "unknown classes are their own group")
}

func TestStructural_IdenticalDefinitions(t *testing.T) {
	def := model.And(model.ClassOf("UBERON:0000061"), model.Some(vocabulary.PartOf, model.ClassOf("UBERON:0002107")))
	g := ontologytest.New(t).
		Axiom("FMA:1", vocabulary.EquivalentTo, def).
		Axiom("MA:1", vocabulary.EquivalentTo, def).
		Graph()

	r, err := Structural(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []string{"FMA:1", "MA:1"}, r.EquivalentClasses("MA:1"))
	assert.Equal(t, []string{"UBERON:0000061"}, r.SuperClasses("FMA:1"))

	a, err := Asserted(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []string{"MA:1"}, a.EquivalentClasses("MA:1"), "asserted mode does not compare definitions")
}

func TestStructural_SuperClasses(t *testing.T) {
	g := ontologytest.New(t).
		Sub("A:1", "B:1").
		Sub("B:1", "C:1").
		Sub("C:1", vocabulary.Thing).
		Equiv("B:1", "B:2").
		Axiom("A:1", vocabulary.SubClassOf, model.And(model.ClassOf("D:1"), model.Some(vocabulary.PartOf, model.ClassOf("E:1")))).
		Graph()

	r, err := Structural(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []string{"B:1", "B:2", "C:1", "D:1"}, r.SuperClasses("A:1"))
	assert.Equal(t, []string{"C:1"}, r.SuperClasses("B:1"), "equivalents and owl:Thing are not strict superclasses")
	assert.Empty(t, r.SuperClasses("C:1"))
}

func TestStructural_Unsatisfiable(t *testing.T) {
	g := ontologytest.New(t).
		Sub("A:1", vocabulary.Nothing).
		Disjoint("X:1", "Y:1").
		Sub("B:1", "X:1").
		Sub("B:1", "Y:1").
		Sub("C:1", "B:1").
		Rel("D:1", vocabulary.PartOf, "A:1").
		Class("OK:1").
		Graph()

	r, err := Structural(context.Background(), g)
	require.NoError(t, err)
	assert.True(t, r.IsConsistent())
	assert.Equal(t, []string{"A:1", "B:1", "C:1", "D:1"}, r.UnsatisfiableClasses())

	a, err := Asserted(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []string{"A:1"}, a.UnsatisfiableClasses())
}

func TestStructural_Inconsistent(t *testing.T) {
	g := ontologytest.New(t).
		Equiv(vocabulary.Thing, vocabulary.Nothing).
		Class("A:1").
		Graph()

	r, err := Structural(context.Background(), g)
	require.NoError(t, err)
	assert.False(t, r.IsConsistent())
}

func TestStructural_HonoursContext(t *testing.T) {
	g := ontologytest.New(t).Class("A:1").Graph()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Structural(ctx, g)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartition(t *testing.T) {
	g := ontologytest.New(t).
		Equiv("A:1", "B:1").
		Equiv("C:1", "D:1").
		Equiv("C:1", vocabulary.Thing).
		Class("E:1").
		Graph()

	r, err := Structural(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A:1", "B:1"}, {"C:1", "D:1"}}, Partition(r, g.Nodes()))
}

func TestComponents(t *testing.T) {
	adj := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a", "d"},
		"d": {},
	}
	got := components([]string{"a", "b", "c", "d"}, func(id string) []string { return adj[id] })
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d"}}, got)
}
