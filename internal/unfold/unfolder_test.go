package unfold

import (
	"context"
	"strings"
	"testing"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/ontology/ontologytest"
	"github.com/ppiankov/ontomerge/internal/reasoner"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	human     = "NCBITaxon:9606"
	organism  = vocabulary.Organism
	head      = "UBERON:0000033"
	nose      = "UBERON:0000004"
	eye       = "UBERON:0000970"
	brain     = "UBERON:0000955"
	connected = "RO:0002170"
)

// anatomy is a generic head region parameterised on "organism", with the
// human taxon declared as an organism
func anatomy(t *testing.T) *ontologytest.Builder {
	return ontologytest.New(t).
		Class(human, "Homo sapiens").
		Class(organism, "organism").
		Sub(human, organism).
		Class(head, "head").
		Class(nose, "nose").
		Class(eye, "eye").
		Class(brain, "brain").
		Annotate(head, vocabulary.Definition, "The anterior region of the body containing the brain.").
		Annotate(nose, vocabulary.Comment, "The nose of the head.").
		Rel(head, vocabulary.PartOf, organism).
		Rel(nose, vocabulary.PartOf, head).
		Rel(eye, vocabulary.PartOf, head)
}

func humanSpec() Spec {
	return Spec{Taxon: human, Property: vocabulary.PartOf, Suffix: "human specific"}
}

func copyOf(id string) string { return id + "-NCBITaxon-9606" }

func snapshot(s ontology.Store, ids ...string) map[string]interface{} {
	out := make(map[string]interface{})
	for _, id := range ids {
		n, _ := s.Node(id)
		out[id+"/node"] = n
		out[id+"/out"] = s.Outgoing(id)
	}
	return out
}

func hasEdge(s ontology.Store, subj, pred, obj string) bool {
	key := model.Edge{Subject: subj, Predicate: pred, Object: obj}.Key()
	for _, e := range s.Outgoing(subj) {
		if e.Key() == key {
			return true
		}
	}
	return false
}

func TestMerge_HumanRegion(t *testing.T) {
	g := anatomy(t).Graph()
	before := snapshot(g, head, nose, eye)

	res, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, humanSpec())
	require.NoError(t, err)

	require.Len(t, res.Copies, 3)
	assert.Equal(t, 3, res.Stats.CopiesCreated)
	assert.Zero(t, res.Stats.CopiesReplaced)

	for _, id := range []string{head, nose, eye} {
		cid := copyOf(id)
		require.True(t, g.HasNode(cid), cid)
		labels := ontologytest.Labels(g, cid)
		require.Len(t, labels, 1)
		assert.True(t, strings.HasSuffix(labels[0], "human specific"), labels[0])
		assert.True(t, hasEdge(g, cid, vocabulary.PartOf, human))
		assert.True(t, hasEdge(g, cid, vocabulary.SubClassOf, id))
	}
	assert.True(t, hasEdge(g, copyOf(nose), vocabulary.PartOf, copyOf(head)))
	assert.False(t, hasEdge(g, copyOf(head), vocabulary.PartOf, organism))
	assert.False(t, g.HasNode(copyOf(brain)), "brain is not part of the region")

	assert.Equal(t, before, snapshot(g, head, nose, eye), "generic originals are unchanged")
	assert.Equal(t, []string{"head human specific"}, ontologytest.Labels(g, copyOf(head)))
}

func TestMerge_RewritesTextualLabelReferences(t *testing.T) {
	g := anatomy(t).Graph()

	_, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, humanSpec())
	require.NoError(t, err)

	assert.Equal(t,
		[]model.Literal{{Value: "The nose human specific of the head."}},
		g.Annotations(copyOf(nose), vocabulary.Comment),
	)
	assert.Equal(t,
		[]model.Literal{{Value: "The anterior region of the body containing the brain."}},
		g.Annotations(copyOf(head), vocabulary.Definition),
		"the definition does not mention the label",
	)
}

func TestMerge_LabelInsideLongerWordIsNotAReference(t *testing.T) {
	const ear = "UBERON:0001690"
	g := ontologytest.New(t).
		Class(human, "Homo sapiens").
		Class(organism, "organism").
		Sub(human, organism).
		Class(ear, "ear").
		Annotate(ear, vocabulary.Definition, "Sense organ of hearing and balance. The ear sits beside the head; ear-like folds excepted.").
		Rel(ear, vocabulary.PartOf, organism).
		Graph()

	_, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, humanSpec())
	require.NoError(t, err)

	assert.Equal(t, []string{"ear human specific"}, ontologytest.Labels(g, copyOf(ear)))
	assert.Equal(t,
		[]model.Literal{{Value: "Sense organ of hearing and balance. The ear human specific sits beside the head; ear human specific-like folds excepted."}},
		g.Annotations(copyOf(ear), vocabulary.Definition),
	)
}

func TestReplaceWord(t *testing.T) {
	tests := []struct {
		in, old, want string
	}{
		{"hearing ear", "ear", "hearing EAR"},
		{"ear, ear.", "ear", "EAR, EAR."},
		{"earring", "ear", "earring"},
		{"near ear", "ear", "near EAR"},
		{"pre-ear", "ear", "pre-EAR"},
		{"eareareear", "ear", "eareareear"},
		{"no match", "ear", "no match"},
		{"anything", "", "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, replaceWord(tt.in, tt.old, "EAR"))
		})
	}
}

func TestMerge_PropertyUsedOnlyInsideExpression(t *testing.T) {
	g := ontology.NewGraph()
	for _, id := range []string{human, organism, head} {
		require.NoError(t, g.AddNode(model.NewNode(id)))
	}
	_, err := g.AddEdge(model.Edge{Subject: human, Predicate: vocabulary.SubClassOf, Object: organism})
	require.NoError(t, err)
	x := model.Some(vocabulary.PartOf, model.ClassOf(organism))
	_, err = g.AddEdge(model.Edge{Subject: head, Predicate: vocabulary.SubClassOf, Expression: &x})
	require.NoError(t, err)

	res, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, humanSpec())
	require.NoError(t, err)
	require.Len(t, res.Copies, 1)
	assert.True(t, hasEdge(g, copyOf(head), vocabulary.PartOf, human))
}

func TestMerge_Idempotent(t *testing.T) {
	g := anatomy(t).Graph()
	u := NewTaxonUnfolder()

	first, err := u.Merge(context.Background(), g, reasoner.Structural, humanSpec())
	require.NoError(t, err)
	afterFirst := ontology.Fingerprint(g)
	nodes := g.Nodes()

	second, err := u.Merge(context.Background(), g, reasoner.Structural, humanSpec())
	require.NoError(t, err)

	assert.Equal(t, afterFirst, ontology.Fingerprint(g))
	assert.Equal(t, nodes, g.Nodes())
	assert.Zero(t, second.Stats.CopiesCreated)
	assert.Equal(t, 3, second.Stats.CopiesReplaced)

	require.Len(t, second.Copies, len(first.Copies))
	for i := range first.Copies {
		assert.Equal(t, first.Copies[i].Copy, second.Copies[i].Copy)
		assert.True(t, second.Copies[i].Replaced)
	}
}

func TestMerge_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		spec   Spec
		option string
	}{
		{"missing taxon", Spec{Property: vocabulary.PartOf}, "taxon"},
		{"unknown taxon", Spec{Taxon: "NCBITaxon:10090", Property: vocabulary.PartOf}, "taxon"},
		{"unknown property", Spec{Taxon: human, Property: "RO:9999999"}, "property"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := anatomy(t).Graph()
			before := ontology.Fingerprint(g)

			_, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, tt.spec)
			require.Error(t, err)
			var cfg *errors.ConfigurationError
			require.True(t, errors.As(err, &cfg))
			assert.Equal(t, tt.option, cfg.Option)
			assert.Equal(t, before, ontology.Fingerprint(g))
		})
	}
}

func TestMerge_DefaultsPropertyAndSuffix(t *testing.T) {
	g := anatomy(t).Graph()

	_, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, Spec{Taxon: human})
	require.NoError(t, err)
	assert.Equal(t, []string{"nose species specific"}, ontologytest.Labels(g, copyOf(nose)))
}

func TestMerge_UnsatisfiableAbortsBeforeMutation(t *testing.T) {
	g := anatomy(t).Disjoint(head, eye).Sub(nose, head).Sub(nose, eye).Graph()
	before := ontology.Fingerprint(g)

	_, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, humanSpec())
	f, ok := reasoner.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, []string{nose}, f.Classes)
	assert.Equal(t, before, ontology.Fingerprint(g))
}

func TestMerge_IncludeProperties(t *testing.T) {
	build := func() *ontology.Graph {
		return anatomy(t).
			Rel(eye, connected, nose).
			Rel(eye, connected, brain).
			Graph()
	}

	g := build()
	_, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, humanSpec())
	require.NoError(t, err)
	assert.False(t, hasEdge(g, copyOf(eye), connected, copyOf(nose)))

	g = build()
	sp := humanSpec()
	sp.IncludeProperties = []string{connected}
	_, err = NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, sp)
	require.NoError(t, err)
	assert.True(t, hasEdge(g, copyOf(eye), connected, copyOf(nose)), "region endpoints point at copies")
	assert.True(t, hasEdge(g, copyOf(eye), connected, brain), "external endpoints are unchanged")
}

func TestMerge_IntersectionAxioms(t *testing.T) {
	skull := "UBERON:0003129"
	bone := "UBERON:0001474"
	build := func() *ontology.Graph {
		return anatomy(t).
			Class(skull, "skull").
			Axiom(skull, vocabulary.EquivalentTo, model.And(
				model.ClassOf(bone),
				model.Some(vocabulary.PartOf, model.ClassOf(head)),
			)).
			Graph()
	}

	t.Run("translated", func(t *testing.T) {
		g := build()
		sp := humanSpec()
		sp.TranslateIntersections = true

		_, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, sp)
		require.NoError(t, err)
		cid := copyOf(skull)
		require.True(t, g.HasNode(cid), "classes related through restrictions are in the region")
		assert.True(t, hasEdge(g, cid, vocabulary.SubClassOf, bone))
		assert.True(t, hasEdge(g, cid, vocabulary.PartOf, copyOf(head)))
		for _, e := range g.Outgoing(cid) {
			assert.Nil(t, e.Expression, "no expressions after translation: %s", e.Key())
		}
	})

	t.Run("kept as expression", func(t *testing.T) {
		g := build()

		_, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, humanSpec())
		require.NoError(t, err)
		cid := copyOf(skull)

		want := model.And(model.ClassOf(bone), model.Some(vocabulary.PartOf, model.ClassOf(copyOf(head))))
		var found bool
		for _, e := range g.Outgoing(cid) {
			if e.Expression != nil {
				assert.Equal(t, vocabulary.SubClassOf, e.Predicate)
				found = found || e.Expression.Equal(want)
			}
		}
		assert.True(t, found)
	})
}

func TestMerge_EmptyRegion(t *testing.T) {
	g := ontologytest.New(t).
		Class(human).
		Rel("UBERON:1", vocabulary.PartOf, "UBERON:2").
		Graph()

	res, err := NewTaxonUnfolder().Merge(context.Background(), g, reasoner.Structural, humanSpec())
	require.NoError(t, err)
	assert.Empty(t, res.Copies)
	require.Len(t, res.Signals, 1)
	assert.Equal(t, model.SignalEmptyRegion, res.Signals[0].Type)
}

func TestNaming(t *testing.T) {
	n := newNaming(human)
	assert.Equal(t, "UBERON:1-NCBITaxon-9606", n.copyID("UBERON:1"))
	assert.True(t, n.isCopy("UBERON:1-NCBITaxon-9606"))
	assert.False(t, n.isCopy("UBERON:1"))

	purl := newNaming(vocabulary.OBOPurl + "NCBITaxon_10090")
	assert.Equal(t, "UBERON:1-NCBITaxon-10090", purl.copyID("UBERON:1"))

	plain := newNaming("http://example.org/taxa#mouse")
	assert.Equal(t, "UBERON:1-mouse", plain.copyID("UBERON:1"))
}
