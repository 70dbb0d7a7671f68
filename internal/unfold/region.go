package unfold

import (
	"strings"

	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/reasoner"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
)

// naming derives copy identifiers for one taxon
type naming struct {
	token string
}

func newNaming(taxon string) naming {
	prefix, local := vocabulary.Split(taxon)
	if prefix == "" {
		if i := strings.LastIndexAny(local, "/#"); i >= 0 {
			local = local[i+1:]
		}
		return naming{token: local}
	}
	return naming{token: prefix + "-" + local}
}

// copyID returns the identifier of the taxon-specific copy of id
func (n naming) copyID(id string) string {
	return id + "-" + n.token
}

// isCopy reports whether id was produced by copyID for this taxon
func (n naming) isCopy(id string) bool {
	return strings.HasSuffix(id, "-"+n.token)
}

// placeholders returns the taxon and its named inferred superclasses: the
// generic classes that unfolding-property edges may point at
func placeholders(s ontology.Store, r reasoner.Reasoner, taxon string) map[string]bool {
	seeds := map[string]bool{taxon: true}
	for _, id := range r.SuperClasses(taxon) {
		if s.HasNode(id) && !vocabulary.IsBuiltin(id) {
			seeds[id] = true
		}
	}
	return seeds
}

// collectRegion walks unfolding-property edges backwards from the
// placeholders. Placeholders, built-ins and existing copies are never part
// of the region.
func collectRegion(s ontology.Store, property string, seeds map[string]bool, n naming) map[string]bool {
	region := make(map[string]bool)
	queue := sortedKeys(seeds)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range s.Incoming(cur) {
			id := e.Subject
			if region[id] || seeds[id] || vocabulary.IsBuiltin(id) || n.isCopy(id) {
				continue
			}
			if !relates(e, property, cur) {
				continue
			}
			region[id] = true
			queue = append(queue, id)
		}
	}
	return region
}

// relates reports whether e states that its subject is related to target
// through property, either as a named edge or as an existential restriction
// in a subclass or equivalence axiom
func relates(e model.Edge, property, target string) bool {
	if e.Expression == nil {
		return e.Predicate == property && e.Object == target
	}
	if e.Predicate != vocabulary.SubClassOf && e.Predicate != vocabulary.EquivalentTo {
		return false
	}
	for _, c := range conjuncts(*e.Expression) {
		if c.Kind() == model.ExprSome && c.Property == property &&
			c.Filler != nil && c.Filler.Kind() == model.ExprClass && c.Filler.Class == target {
			return true
		}
	}
	return false
}

// conjuncts flattens nested intersections
func conjuncts(x model.Expression) []model.Expression {
	if x.Kind() != model.ExprIntersection {
		return []model.Expression{x}
	}
	var out []model.Expression
	for _, op := range x.Intersection {
		out = append(out, conjuncts(op)...)
	}
	return out
}
