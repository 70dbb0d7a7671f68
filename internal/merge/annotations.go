package merge

import (
	"sort"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/score"
)

// sourced is an annotation value together with the class it came from
type sourced struct {
	source string
	value  model.Literal
}

// mergeAnnotations writes the merged annotations of rep and absorbed onto
// rep. Sources are visited representative first, then absorbed members by
// identifier.
func (r *EquivalenceResolver) mergeAnnotations(s ontology.Store, rep string, absorbed []string) error {
	sources := append([]string{rep}, absorbed...)

	byKind := make(map[string][]sourced)
	for _, id := range sources {
		n, ok := s.Node(id)
		if !ok {
			return errors.Wrapf(ontology.ErrNodeNotFound, "annotations of %s", id)
		}
		for _, kind := range n.AnnotationKinds() {
			for _, v := range n.Annotations[kind] {
				byKind[kind] = append(byKind[kind], sourced{source: id, value: v})
			}
		}
	}

	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		values := resolveKind(r.scores.Annotation(kind), byKind[kind])
		if err := s.SetAnnotations(rep, kind, values); err != nil {
			return errors.Wrapf(err, "set %s on %s", kind, rep)
		}
	}
	return nil
}

// resolveKind keeps the single best-scored value when any source is listed
// in table, and the exact-deduplicated union otherwise
func resolveKind(table *score.Table, values []sourced) []model.Literal {
	best := -1
	bestScore := score.Minimum
	for i, v := range values {
		sc, listed := table.Score(v.source)
		if !listed {
			continue
		}
		if best < 0 || sc > bestScore {
			best, bestScore = i, sc
		}
	}
	if best >= 0 {
		return []model.Literal{values[best].value}
	}

	seen := make(map[model.Literal]bool, len(values))
	out := make([]model.Literal, 0, len(values))
	for _, v := range values {
		if seen[v.value] {
			continue
		}
		seen[v.value] = true
		out = append(out, v.value)
	}
	return out
}
