// Package ontology holds the ontology graph: the Store interface consumed by
// the merge algorithms, an arena-backed in-memory implementation, and the
// document codecs used to load and save it.
package ontology

import (
	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/model"
)

// Sentinel errors for store operations.
var (
	// ErrEmptyID indicates that a node or edge carries an empty identifier.
	ErrEmptyID = errors.New("ontology: empty identifier")

	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("ontology: node not found")

	// ErrNodeExists indicates AddNode was called for an id already present.
	ErrNodeExists = errors.New("ontology: node already exists")
)

// Store is the ontology storage the merge algorithms operate on. Nodes are
// addressed by id only; edges are values identified by their content.
type Store interface {
	// Node returns a copy of the node with the given id.
	Node(id string) (model.Node, bool)
	// HasNode reports whether id is present.
	HasNode(id string) bool
	// Nodes lists every node id in lexicographic order.
	Nodes() []string
	// AddNode inserts a new node.
	AddNode(node model.Node) error
	// RemoveNode deletes a node together with every edge mentioning it.
	RemoveNode(id string) error

	// Edges lists every edge mentioning id, as subject or target.
	Edges(id string) []model.Edge
	// Outgoing lists edges whose subject is id.
	Outgoing(id string) []model.Edge
	// Incoming lists edges that target id, by name or inside an expression.
	Incoming(id string) []model.Edge
	// AllEdges lists every edge in key order.
	AllEdges() []model.Edge
	// AddEdge inserts an edge. It reports false if the edge already exists.
	AddEdge(edge model.Edge) (bool, error)
	// RemoveEdge deletes an edge. It reports false if it was absent.
	RemoveEdge(edge model.Edge) bool

	// Annotations returns the values of one annotation property on a node.
	Annotations(id, kind string) []model.Literal
	// SetAnnotations replaces the values of one annotation property.
	// An empty slice removes the property from the node.
	SetAnnotations(id, kind string, values []model.Literal) error

	// HasProperty reports whether an object property is declared or used.
	HasProperty(id string) bool
	// AddProperty declares an object property.
	AddProperty(id string)
	// Properties lists declared object properties in lexicographic order.
	Properties() []string

	NodeCount() int
	EdgeCount() int
}
