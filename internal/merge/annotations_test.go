package merge

import (
	"context"
	"testing"

	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology/ontologytest"
	"github.com/ppiankov/ontomerge/internal/reasoner"
	"github.com/ppiankov/ontomerge/internal/score"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKind(t *testing.T) {
	table, err := score.ParsePriorities("label-priority", []string{"UBERON", "FMA"})
	require.NoError(t, err)

	lit := func(v string) model.Literal { return model.Literal{Value: v} }

	tests := []struct {
		name   string
		table  *score.Table
		values []sourced
		want   []model.Literal
	}{
		{
			name:  "highest scored source wins",
			table: table,
			values: []sourced{
				{"MA:1", lit("heart (mouse)")},
				{"FMA:1", lit("Heart")},
				{"UBERON:1", lit("heart")},
			},
			want: []model.Literal{lit("heart")},
		},
		{
			name:  "scored value beats unscored ones",
			table: table,
			values: []sourced{
				{"MA:1", lit("a")},
				{"FMA:1", lit("b")},
				{"ZFA:1", lit("c")},
			},
			want: []model.Literal{lit("b")},
		},
		{
			name:  "first value wins among equal scores",
			table: table,
			values: []sourced{
				{"FMA:2", lit("rep")},
				{"FMA:1", lit("other")},
			},
			want: []model.Literal{lit("rep")},
		},
		{
			name:  "no scored source keeps union",
			table: table,
			values: []sourced{
				{"MA:1", lit("a")},
				{"ZFA:1", lit("b")},
				{"ZFA:1", lit("a")},
			},
			want: []model.Literal{lit("a"), lit("b")},
		},
		{
			name:  "no table keeps union with exact dedup",
			table: nil,
			values: []sourced{
				{"MA:1", lit("a")},
				{"ZFA:1", model.Literal{Value: "a", Lang: "en"}},
				{"ZFA:1", lit("a")},
			},
			want: []model.Literal{lit("a"), {Value: "a", Lang: "en"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveKind(tt.table, tt.values))
		})
	}
}

func TestMerge_AnnotationsFollowPriorities(t *testing.T) {
	g := ontologytest.New(t).
		Class("UBERON:1", "heart").
		Class("FMA:1", "Heart").
		Class("MA:1", "heart").
		Annotate("FMA:1", vocabulary.Definition, "A hollow muscular organ.").
		Annotate("MA:1", vocabulary.Comment, "mouse").
		Annotate("UBERON:1", vocabulary.Comment, "generic").
		Annotate("MA:1", "oboInOwl:hasExactSynonym", "cardium").
		Annotate("FMA:1", "oboInOwl:hasExactSynonym", "cardium").
		Equiv("UBERON:1", "FMA:1").
		Equiv("FMA:1", "MA:1").
		Graph()

	scores := identity(t, "UBERON")
	labels, err := score.ParsePriorities("label-priority", []string{"FMA", "UBERON"})
	require.NoError(t, err)
	scores.SetAnnotation(vocabulary.Label, labels)

	_, err = NewEquivalenceResolver(WithScores(scores)).Merge(context.Background(), g, reasoner.Structural)
	require.NoError(t, err)
	require.Equal(t, []string{"UBERON:1"}, g.Nodes())

	assert.Equal(t, []string{"Heart"}, ontologytest.Labels(g, "UBERON:1"))
	assert.Equal(t, []model.Literal{{Value: "A hollow muscular organ."}}, g.Annotations("UBERON:1", vocabulary.Definition))
	assert.Equal(t, []model.Literal{{Value: "generic"}, {Value: "mouse"}}, g.Annotations("UBERON:1", vocabulary.Comment))
	assert.Equal(t, []model.Literal{{Value: "cardium"}}, g.Annotations("UBERON:1", "oboInOwl:hasExactSynonym"))
}
