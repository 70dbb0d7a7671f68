package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExpression_String(t *testing.T) {
	x := And(ClassOf("UBERON:0002101"), Some("BFO:0000050", ClassOf("NCBITaxon:9606")))
	assert.Equal(t, ExprIntersection, x.Kind())
	assert.Equal(t,
		"ObjectIntersectionOf(UBERON:0002101 ObjectSomeValuesFrom(BFO:0000050 NCBITaxon:9606))",
		x.String())
	assert.Equal(t, []string{"UBERON:0002101", "NCBITaxon:9606"}, x.Signature())
}

func TestExpression_RenameIsDeep(t *testing.T) {
	x := Some("BFO:0000050", And(ClassOf("A:1"), ClassOf("B:1")))
	renamed := x.Rename(func(id string) string {
		if id == "A:1" {
			return "C:1"
		}
		return id
	})

	assert.Equal(t, "ObjectSomeValuesFrom(BFO:0000050 ObjectIntersectionOf(C:1 B:1))", renamed.String())
	assert.Equal(t, "ObjectSomeValuesFrom(BFO:0000050 ObjectIntersectionOf(A:1 B:1))", x.String())
}

func TestEdge_KeyAndTargets(t *testing.T) {
	named := Edge{Subject: "A:1", Predicate: "rdfs:subClassOf", Object: "B:1"}
	assert.Equal(t, "A:1 rdfs:subClassOf B:1", named.Key())
	assert.Equal(t, []string{"B:1"}, named.Targets())
	assert.True(t, named.Mentions("B:1"))
	assert.False(t, named.IsSelfLoop())

	x := Some("BFO:0000050", ClassOf("A:1"))
	anon := Edge{Subject: "A:1", Predicate: "rdfs:subClassOf", Expression: &x}
	assert.False(t, anon.IsSelfLoop())
	assert.True(t, anon.Mentions("A:1"))

	loop := named.Rename(func(string) string { return "A:1" })
	assert.True(t, loop.IsSelfLoop())
}

func TestLiteral_UnmarshalYAMLShorthand(t *testing.T) {
	var got struct {
		Values []Literal `yaml:"values"`
	}
	src := "values:\n  - manus\n  - {value: main, lang: fr}\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &got))
	assert.Equal(t, []Literal{{Value: "manus"}, {Value: "main", Lang: "fr"}}, got.Values)
}

func TestNode_CloneIsIndependent(t *testing.T) {
	n := NewNode("A:1")
	n.Annotations["rdfs:label"] = []Literal{{Value: "a"}}
	c := n.Clone()
	c.Annotations["rdfs:label"][0].Value = "changed"
	assert.Equal(t, "a", n.Annotations["rdfs:label"][0].Value)
	assert.Equal(t, []string{"rdfs:label"}, n.AnnotationKinds())
}
