package ontology

import (
	"sort"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
)

var _ Store = (*Graph)(nil)

// Graph is the in-memory Store. Edges live in an arena keyed by a numeric
// id; per-node index tables point into the arena, so rewriting and removal
// are index updates and nodes never hold references to each other.
//
// Graph is not safe for concurrent mutation: a merge owns its ontology for
// the duration of the call.
type Graph struct {
	// Ontology is the document-level identifier, carried through load/save.
	Ontology string
	// Prefixes is the document prefix map, carried through load/save.
	Prefixes map[string]string

	nodes      map[string]*model.Node
	edges      map[uint64]model.Edge // arena
	byKey      map[string]uint64
	out        map[string]map[uint64]struct{} // subject -> edge ids
	in         map[string]map[uint64]struct{} // target -> edge ids
	properties map[string]struct{}
	nextEdgeID uint64
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Prefixes:   make(map[string]string),
		nodes:      make(map[string]*model.Node),
		edges:      make(map[uint64]model.Edge),
		byKey:      make(map[string]uint64),
		out:        make(map[string]map[uint64]struct{}),
		in:         make(map[string]map[uint64]struct{}),
		properties: make(map[string]struct{}),
	}
}

// Node returns a copy of the node
func (g *Graph) Node(id string) (model.Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return model.Node{}, false
	}
	return n.Clone(), true
}

// HasNode reports whether id is present
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes lists node ids in lexicographic order
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddNode inserts a new node
func (g *Graph) AddNode(node model.Node) error {
	if node.ID == "" {
		return ErrEmptyID
	}
	if _, ok := g.nodes[node.ID]; ok {
		return errors.Wrapf(ErrNodeExists, "add %s", node.ID)
	}
	c := node.Clone()
	g.nodes[node.ID] = &c
	return nil
}

// RemoveNode deletes the node and every edge mentioning it
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return errors.Wrapf(ErrNodeNotFound, "remove %s", id)
	}
	for eid := range g.out[id] {
		g.removeEdgeID(eid)
	}
	for eid := range g.in[id] {
		g.removeEdgeID(eid)
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.nodes, id)
	return nil
}

// Edges lists edges mentioning id, in key order
func (g *Graph) Edges(id string) []model.Edge {
	ids := make(map[uint64]struct{}, len(g.out[id])+len(g.in[id]))
	for eid := range g.out[id] {
		ids[eid] = struct{}{}
	}
	for eid := range g.in[id] {
		ids[eid] = struct{}{}
	}
	return g.collect(ids)
}

// Outgoing lists edges whose subject is id
func (g *Graph) Outgoing(id string) []model.Edge {
	return g.collect(g.out[id])
}

// Incoming lists edges targeting id
func (g *Graph) Incoming(id string) []model.Edge {
	return g.collect(g.in[id])
}

// AllEdges lists every edge in key order
func (g *Graph) AllEdges() []model.Edge {
	out := make([]model.Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sortEdges(out)
	return out
}

// AddEdge inserts an edge after checking that every endpoint exists.
// Self-loops on class-axiom predicates are rejected with a StructuralError.
func (g *Graph) AddEdge(edge model.Edge) (bool, error) {
	if edge.Subject == "" || edge.Predicate == "" || (edge.Object == "" && edge.Expression == nil) {
		return false, errors.Wrapf(ErrEmptyID, "add edge %q", edge.Key())
	}
	if edge.IsSelfLoop() && vocabulary.IsHierarchy(edge.Predicate) {
		return false, errors.WithStack(&errors.StructuralError{Edge: edge.Key(), Reason: "self-loop"})
	}
	if !g.HasNode(edge.Subject) {
		return false, errors.Wrapf(ErrNodeNotFound, "edge subject %s", edge.Subject)
	}
	for _, t := range edge.Targets() {
		if !g.HasNode(t) {
			return false, errors.Wrapf(ErrNodeNotFound, "edge target %s", t)
		}
	}

	key := edge.Key()
	if _, ok := g.byKey[key]; ok {
		return false, nil
	}

	g.nextEdgeID++
	eid := g.nextEdgeID
	g.edges[eid] = edge
	g.byKey[key] = eid
	link(g.out, edge.Subject, eid)
	for _, t := range edge.Targets() {
		link(g.in, t, eid)
	}
	if !vocabulary.IsHierarchy(edge.Predicate) {
		g.properties[edge.Predicate] = struct{}{}
	}
	if edge.Expression != nil {
		for _, p := range edge.Expression.Properties() {
			g.AddProperty(p)
		}
	}
	return true, nil
}

// RemoveEdge deletes an edge by content
func (g *Graph) RemoveEdge(edge model.Edge) bool {
	eid, ok := g.byKey[edge.Key()]
	if !ok {
		return false
	}
	g.removeEdgeID(eid)
	return true
}

// Annotations returns a copy of the values of one annotation property
func (g *Graph) Annotations(id, kind string) []model.Literal {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return append([]model.Literal(nil), n.Annotations[kind]...)
}

// SetAnnotations replaces the values of one annotation property
func (g *Graph) SetAnnotations(id, kind string, values []model.Literal) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "annotate %s", id)
	}
	if len(values) == 0 {
		delete(n.Annotations, kind)
		return nil
	}
	if n.Annotations == nil {
		n.Annotations = make(map[string][]model.Literal)
	}
	n.Annotations[kind] = append([]model.Literal(nil), values...)
	return nil
}

// HasProperty reports whether an object property is declared or used
func (g *Graph) HasProperty(id string) bool {
	_, ok := g.properties[id]
	return ok
}

// AddProperty declares an object property
func (g *Graph) AddProperty(id string) {
	if id != "" {
		g.properties[id] = struct{}{}
	}
}

// Properties lists declared object properties
func (g *Graph) Properties() []string {
	out := make([]string, 0, len(g.properties))
	for p := range g.properties {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Clone returns an independent deep copy of the graph
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	c.Ontology = g.Ontology
	for k, v := range g.Prefixes {
		c.Prefixes[k] = v
	}
	for p := range g.properties {
		c.properties[p] = struct{}{}
	}
	for _, id := range g.Nodes() {
		_ = c.AddNode(*g.nodes[id])
	}
	for _, e := range g.AllEdges() {
		_, _ = c.AddEdge(e)
	}
	return c
}

func (g *Graph) removeEdgeID(eid uint64) {
	e, ok := g.edges[eid]
	if !ok {
		return
	}
	unlink(g.out, e.Subject, eid)
	for _, t := range e.Targets() {
		unlink(g.in, t, eid)
	}
	delete(g.byKey, e.Key())
	delete(g.edges, eid)
}

func (g *Graph) collect(ids map[uint64]struct{}) []model.Edge {
	out := make([]model.Edge, 0, len(ids))
	for eid := range ids {
		out = append(out, g.edges[eid])
	}
	sortEdges(out)
	return out
}

func link(index map[string]map[uint64]struct{}, id string, eid uint64) {
	set, ok := index[id]
	if !ok {
		set = make(map[uint64]struct{})
		index[id] = set
	}
	set[eid] = struct{}{}
}

func unlink(index map[string]map[uint64]struct{}, id string, eid uint64) {
	if set, ok := index[id]; ok {
		delete(set, eid)
		if len(set) == 0 {
			delete(index, id)
		}
	}
}

func sortEdges(edges []model.Edge) {
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Key() < edges[j].Key()
	})
}
