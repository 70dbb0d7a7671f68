package model

// Document is the serialised form of an ontology, shared by the YAML, JSON
// and TOML codecs
type Document struct {
	Ontology   string            `json:"ontology,omitempty" yaml:"ontology,omitempty" toml:"ontology,omitempty"`
	Prefixes   map[string]string `json:"prefixes,omitempty" yaml:"prefixes,omitempty" toml:"prefixes,omitempty"`
	Properties []string          `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
	Classes    []ClassEntry      `json:"classes" yaml:"classes" toml:"classes"`
}

// ClassEntry is one class with its annotations and outgoing axioms
type ClassEntry struct {
	ID          string               `json:"id" yaml:"id" toml:"id"`
	Annotations map[string][]Literal `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
	Axioms      []Axiom              `json:"axioms,omitempty" yaml:"axioms,omitempty" toml:"axioms,omitempty"`
}

// Axiom is an outgoing edge of a class, with the subject implied
type Axiom struct {
	Predicate  string      `json:"predicate" yaml:"predicate" toml:"predicate"`
	Object     string      `json:"object,omitempty" yaml:"object,omitempty" toml:"object,omitempty"`
	Expression *Expression `json:"expression,omitempty" yaml:"expression,omitempty" toml:"expression,omitempty"`
}
