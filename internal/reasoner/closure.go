package reasoner

import (
	"sort"

	"github.com/ppiankov/ontomerge/internal/vocabulary"
)

// Closure is the full result of classifying an ontology. It is plain data
// so it can be cached between jobs.
type Closure struct {
	Reasoner      string              `json:"reasoner"`
	Consistent    bool                `json:"consistent"`
	Unsatisfiable []string            `json:"unsatisfiable,omitempty"`
	Groups        [][]string          `json:"groups,omitempty"` // equivalence groups of two or more classes
	Supers        map[string][]string `json:"supers,omitempty"`
}

// ClosureReasoner answers queries from a precomputed Closure
type ClosureReasoner struct {
	closure *Closure
	groupOf map[string]int
}

var _ Reasoner = (*ClosureReasoner)(nil)

// FromClosure wraps a closure as a Reasoner
func FromClosure(c *Closure) *ClosureReasoner {
	r := &ClosureReasoner{closure: c, groupOf: make(map[string]int)}
	for i, g := range c.Groups {
		for _, id := range g {
			r.groupOf[id] = i
		}
	}
	return r
}

// Closure returns the underlying classification result
func (r *ClosureReasoner) Closure() *Closure { return r.closure }

func (r *ClosureReasoner) Name() string { return r.closure.Reasoner }

func (r *ClosureReasoner) IsConsistent() bool { return r.closure.Consistent }

func (r *ClosureReasoner) UnsatisfiableClasses() []string {
	return append([]string(nil), r.closure.Unsatisfiable...)
}

func (r *ClosureReasoner) EquivalentClasses(id string) []string {
	if i, ok := r.groupOf[id]; ok {
		return append([]string(nil), r.closure.Groups[i]...)
	}
	return []string{id}
}

func (r *ClosureReasoner) SuperClasses(id string) []string {
	return append([]string(nil), r.closure.Supers[id]...)
}

// Partition groups ids into equivalence groups of two or more classes.
// Built-in classes never join a group. Groups are sorted and ordered by
// first member.
func Partition(r Reasoner, ids []string) [][]string {
	seen := make(map[string]bool, len(ids))
	var groups [][]string
	for _, id := range ids {
		if seen[id] || vocabulary.IsBuiltin(id) {
			continue
		}
		var g []string
		for _, m := range r.EquivalentClasses(id) {
			if vocabulary.IsBuiltin(m) {
				continue
			}
			seen[m] = true
			g = append(g, m)
		}
		if len(g) > 1 {
			sort.Strings(g)
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
