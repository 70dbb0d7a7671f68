package reasoner

import (
	"context"
	"sort"

	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
)

// Mode selects how much the classifier infers
type Mode int

const (
	// ModeStructural infers subsumption from told subclass and equivalence
	// axioms, intersection conjuncts and structurally identical
	// definitions, and propagates unsatisfiability through disjointness and
	// existential restrictions.
	ModeStructural Mode = iota
	// ModeAsserted only closes told equivalence axioms and treats a class
	// as unsatisfiable only if it is declared a subclass of owl:Nothing.
	ModeAsserted
)

func (m Mode) String() string {
	if m == ModeAsserted {
		return "asserted"
	}
	return "structural"
}

// Structural is the Factory for ModeStructural
func Structural(ctx context.Context, s ontology.Store) (Reasoner, error) {
	c, err := Classify(ctx, s, ModeStructural)
	if err != nil {
		return nil, err
	}
	return FromClosure(c), nil
}

// Asserted is the Factory for ModeAsserted
func Asserted(ctx context.Context, s ontology.Store) (Reasoner, error) {
	c, err := Classify(ctx, s, ModeAsserted)
	if err != nil {
		return nil, err
	}
	return FromClosure(c), nil
}

// checkEvery bounds how often long loops poll the context
const checkEvery = 1024

// told is the axiom view the classifier works on
type told struct {
	classes  []string
	sub      map[string]map[string]bool // class -> told superclasses
	equiv    map[string]map[string]bool // class -> told equivalentClass partners
	disjoint [][2]string
	exists   map[string][]string // class -> named fillers of existential restrictions
}

func newTold(s ontology.Store, mode Mode) *told {
	t := &told{
		classes: s.Nodes(),
		sub:     make(map[string]map[string]bool),
		equiv:   make(map[string]map[string]bool),
		exists:  make(map[string][]string),
	}
	definitions := make(map[string][]string)

	for _, e := range s.AllEdges() {
		switch e.Predicate {
		case vocabulary.SubClassOf:
			if e.Expression == nil {
				t.addSub(e.Subject, e.Object)
				continue
			}
			if mode == ModeStructural {
				t.addConjuncts(e.Subject, *e.Expression)
			}
		case vocabulary.EquivalentTo:
			if e.Expression == nil {
				t.addEquiv(e.Subject, e.Object)
				t.addSub(e.Subject, e.Object)
				t.addSub(e.Object, e.Subject)
				continue
			}
			if mode == ModeStructural {
				t.addConjuncts(e.Subject, *e.Expression)
				key := e.Expression.String()
				definitions[key] = append(definitions[key], e.Subject)
			}
		case vocabulary.DisjointWith:
			if e.Expression == nil {
				t.disjoint = append(t.disjoint, [2]string{e.Subject, e.Object})
			}
		default:
			if mode == ModeStructural && e.Expression == nil {
				t.exists[e.Subject] = append(t.exists[e.Subject], e.Object)
			}
		}
	}

	// Classes defined by the same expression are equivalent.
	for _, members := range definitions {
		for i := 1; i < len(members); i++ {
			t.addSub(members[0], members[i])
			t.addSub(members[i], members[0])
		}
	}
	return t
}

func (t *told) addSub(a, b string) {
	if a == b {
		return
	}
	if t.sub[a] == nil {
		t.sub[a] = make(map[string]bool)
	}
	t.sub[a][b] = true
}

func (t *told) addEquiv(a, b string) {
	if a == b {
		return
	}
	for _, p := range [][2]string{{a, b}, {b, a}} {
		if t.equiv[p[0]] == nil {
			t.equiv[p[0]] = make(map[string]bool)
		}
		t.equiv[p[0]][p[1]] = true
	}
}

// addConjuncts records what a class expression entails about its subject:
// named conjuncts become superclasses and existential restrictions with a
// named filler feed unsatisfiability propagation.
func (t *told) addConjuncts(subject string, x model.Expression) {
	switch x.Kind() {
	case model.ExprClass:
		t.addSub(subject, x.Class)
	case model.ExprSome:
		if x.Filler != nil && x.Filler.Kind() == model.ExprClass {
			t.exists[subject] = append(t.exists[subject], x.Filler.Class)
		}
	case model.ExprIntersection:
		for _, op := range x.Intersection {
			t.addConjuncts(subject, op)
		}
	}
}

func (t *told) successors(id string, fromEquiv bool) []string {
	src := t.sub[id]
	if fromEquiv {
		src = t.equiv[id]
	}
	out := make([]string, 0, len(src))
	for n := range src {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Classify computes the closure of s under the given mode
func Classify(ctx context.Context, s ontology.Store, mode Mode) (*Closure, error) {
	log := logger.ComponentLogger("reasoner")
	t := newTold(s, mode)

	var groups [][]string
	if mode == ModeAsserted {
		groups = components(t.classes, func(id string) []string { return t.successors(id, true) })
	} else {
		groups = components(t.classes, func(id string) []string { return t.successors(id, false) })
	}
	groupOf := make(map[string]int, len(t.classes))
	for i, g := range groups {
		for _, id := range g {
			groupOf[id] = i
		}
	}

	// Reachability over told subsumption, including the node itself.
	reach := make(map[string]map[string]bool, len(t.classes))
	for i, id := range t.classes {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		reach[id] = t.reachable(id)
	}

	unsat := t.unsatisfiable(reach, mode)

	c := &Closure{
		Reasoner:   mode.String(),
		Consistent: !unsat[vocabulary.Thing],
		Supers:     make(map[string][]string),
	}
	for _, id := range t.classes {
		if unsat[id] && id != vocabulary.Nothing && id != vocabulary.Thing {
			c.Unsatisfiable = append(c.Unsatisfiable, id)
		}
		var supers []string
		for r := range reach[id] {
			if r == id || r == vocabulary.Thing {
				continue
			}
			if gi, ok := groupOf[id]; ok {
				if gj, ok := groupOf[r]; ok && gi == gj {
					continue
				}
			}
			supers = append(supers, r)
		}
		if len(supers) > 0 {
			sort.Strings(supers)
			c.Supers[id] = supers
		}
	}
	for _, g := range groups {
		if len(g) > 1 {
			c.Groups = append(c.Groups, g)
		}
	}

	log.Debugw("Classification complete",
		logger.FieldReasoner, c.Reasoner,
		logger.FieldCount, len(t.classes),
		"groups", len(c.Groups),
		"unsatisfiable", len(c.Unsatisfiable),
		"consistent", c.Consistent,
	)
	return c, nil
}

func (t *told) reachable(id string) map[string]bool {
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for n := range t.sub[cur] {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// unsatisfiable runs the propagation rules to a fixpoint. reach includes
// each class itself.
func (t *told) unsatisfiable(reach map[string]map[string]bool, mode Mode) map[string]bool {
	unsat := make(map[string]bool)
	for id, r := range reach {
		if r[vocabulary.Nothing] {
			unsat[id] = true
		}
	}
	unsat[vocabulary.Nothing] = true
	if mode == ModeAsserted {
		return unsat
	}

	for id, r := range reach {
		for _, d := range t.disjoint {
			if r[d[0]] && r[d[1]] {
				unsat[id] = true
				break
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, id := range t.classes {
			if unsat[id] {
				continue
			}
			if t.entailsUnsat(id, reach[id], unsat) {
				unsat[id] = true
				changed = true
			}
		}
	}
	return unsat
}

func (t *told) entailsUnsat(id string, r map[string]bool, unsat map[string]bool) bool {
	for s := range r {
		if s != id && unsat[s] {
			return true
		}
		for _, f := range t.exists[s] {
			if unsat[f] {
				return true
			}
		}
	}
	return false
}

// components returns the strongly connected components of the graph over
// ids, each sorted, ordered by first member. Singletons are included.
func components(ids []string, next func(string) []string) [][]string {
	index := make(map[string]int, len(ids))
	low := make(map[string]int, len(ids))
	onStack := make(map[string]bool)
	var stack []string
	var out [][]string
	counter := 0

	var visit func(v string)
	visit = func(v string) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range next(v) {
			if _, seen := index[w]; !seen {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			out = append(out, comp)
		}
	}

	for _, id := range ids {
		if _, seen := index[id]; !seen {
			visit(id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
