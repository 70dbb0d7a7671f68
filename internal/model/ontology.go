package model

import (
	"sort"
	"strings"

	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"gopkg.in/yaml.v3"
)

// Literal is an annotation value with an optional language tag
type Literal struct {
	Value string `json:"value" yaml:"value" toml:"value"`
	Lang  string `json:"lang,omitempty" yaml:"lang,omitempty" toml:"lang,omitempty"`
}

// UnmarshalYAML accepts either a plain scalar or a {value, lang} mapping
func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		l.Value = node.Value
		l.Lang = ""
		return nil
	}
	type plain Literal
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*l = Literal(p)
	return nil
}

func (l Literal) String() string {
	if l.Lang == "" {
		return `"` + l.Value + `"`
	}
	return `"` + l.Value + `"@` + l.Lang
}

// Node is an ontology class. Edges are owned by the store, not the node
type Node struct {
	ID          string               `json:"id" yaml:"id"`
	Annotations map[string][]Literal `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// NewNode creates a node with an empty annotation map
func NewNode(id string) Node {
	return Node{ID: id, Annotations: make(map[string][]Literal)}
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	c := Node{ID: n.ID, Annotations: make(map[string][]Literal, len(n.Annotations))}
	for k, v := range n.Annotations {
		c.Annotations[k] = append([]Literal(nil), v...)
	}
	return c
}

// AnnotationKinds returns the annotation property ids used on the node, sorted
func (n Node) AnnotationKinds() []string {
	kinds := make([]string, 0, len(n.Annotations))
	for k, v := range n.Annotations {
		if len(v) > 0 {
			kinds = append(kinds, k)
		}
	}
	sort.Strings(kinds)
	return kinds
}

// Edge is a typed, directed relation. The target is either a named class
// (Object) or an anonymous class expression (Expression), never both.
type Edge struct {
	Subject    string      `json:"subject" yaml:"subject"`
	Predicate  string      `json:"predicate" yaml:"predicate"`
	Object     string      `json:"object,omitempty" yaml:"object,omitempty"`
	Expression *Expression `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// Key identifies the edge by content; two edges with the same key are the same axiom
func (e Edge) Key() string {
	return e.Subject + " " + e.Predicate + " " + e.target()
}

func (e Edge) String() string {
	return e.Key()
}

func (e Edge) target() string {
	if e.Expression != nil {
		return e.Expression.String()
	}
	return e.Object
}

// Targets returns the named classes the edge points at
func (e Edge) Targets() []string {
	if e.Expression != nil {
		return e.Expression.Signature()
	}
	if e.Object == "" {
		return nil
	}
	return []string{e.Object}
}

// Mentions reports whether id is the subject or one of the targets
func (e Edge) Mentions(id string) bool {
	if e.Subject == id {
		return true
	}
	for _, t := range e.Targets() {
		if t == id {
			return true
		}
	}
	return false
}

// IsSelfLoop reports whether the edge points from a class to itself
func (e Edge) IsSelfLoop() bool {
	return e.Expression == nil && e.Object == e.Subject
}

// Rename returns a copy of the edge with every class id passed through fn
func (e Edge) Rename(fn func(string) string) Edge {
	r := Edge{Subject: fn(e.Subject), Predicate: e.Predicate}
	if e.Expression != nil {
		x := e.Expression.Rename(fn)
		r.Expression = &x
	} else {
		r.Object = fn(e.Object)
	}
	return r
}

// ExpressionKind classifies a class expression
type ExpressionKind string

const (
	ExprClass        ExpressionKind = "class"        // named class
	ExprSome         ExpressionKind = "some"         // ObjectSomeValuesFrom
	ExprIntersection ExpressionKind = "intersection" // ObjectIntersectionOf
)

// Expression is a class expression restricted to the constructors the
// merge algorithms need to inspect.
type Expression struct {
	Class        string       `json:"class,omitempty" yaml:"class,omitempty" toml:"class,omitempty"`
	Property     string       `json:"property,omitempty" yaml:"property,omitempty" toml:"property,omitempty"`
	Filler       *Expression  `json:"filler,omitempty" yaml:"filler,omitempty" toml:"filler,omitempty"`
	Intersection []Expression `json:"intersection,omitempty" yaml:"intersection,omitempty" toml:"intersection,omitempty"`
}

// ClassOf wraps a named class as an expression
func ClassOf(id string) Expression {
	return Expression{Class: id}
}

// Some builds ObjectSomeValuesFrom(property filler)
func Some(property string, filler Expression) Expression {
	return Expression{Property: property, Filler: &filler}
}

// And builds ObjectIntersectionOf(operands...)
func And(operands ...Expression) Expression {
	return Expression{Intersection: operands}
}

// Kind returns the constructor of the expression
func (x Expression) Kind() ExpressionKind {
	switch {
	case len(x.Intersection) > 0:
		return ExprIntersection
	case x.Property != "":
		return ExprSome
	default:
		return ExprClass
	}
}

// String renders the expression in OWL functional-style syntax
func (x Expression) String() string {
	switch x.Kind() {
	case ExprIntersection:
		parts := make([]string, len(x.Intersection))
		for i, op := range x.Intersection {
			parts[i] = op.String()
		}
		return "ObjectIntersectionOf(" + strings.Join(parts, " ") + ")"
	case ExprSome:
		filler := vocabulary.Thing
		if x.Filler != nil {
			filler = x.Filler.String()
		}
		return "ObjectSomeValuesFrom(" + x.Property + " " + filler + ")"
	default:
		return x.Class
	}
}

// Signature returns the named classes referenced by the expression, in
// order of first appearance
func (x Expression) Signature() []string {
	var out []string
	seen := make(map[string]bool)
	x.walk(func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	})
	return out
}

// Properties returns the object properties used by the expression
func (x Expression) Properties() []string {
	var out []string
	seen := make(map[string]bool)
	var visit func(Expression)
	visit = func(e Expression) {
		switch e.Kind() {
		case ExprIntersection:
			for _, op := range e.Intersection {
				visit(op)
			}
		case ExprSome:
			if !seen[e.Property] {
				seen[e.Property] = true
				out = append(out, e.Property)
			}
			if e.Filler != nil {
				visit(*e.Filler)
			}
		}
	}
	visit(x)
	return out
}

func (x Expression) walk(fn func(string)) {
	switch x.Kind() {
	case ExprIntersection:
		for _, op := range x.Intersection {
			op.walk(fn)
		}
	case ExprSome:
		if x.Filler != nil {
			x.Filler.walk(fn)
		}
	default:
		fn(x.Class)
	}
}

// Rename returns a deep copy with every named class passed through fn
func (x Expression) Rename(fn func(string) string) Expression {
	switch x.Kind() {
	case ExprIntersection:
		ops := make([]Expression, len(x.Intersection))
		for i, op := range x.Intersection {
			ops[i] = op.Rename(fn)
		}
		return Expression{Intersection: ops}
	case ExprSome:
		r := Expression{Property: x.Property}
		if x.Filler != nil {
			f := x.Filler.Rename(fn)
			r.Filler = &f
		}
		return r
	default:
		return Expression{Class: fn(x.Class)}
	}
}

// Equal compares two expressions structurally
func (x Expression) Equal(y Expression) bool {
	return x.String() == y.String()
}
