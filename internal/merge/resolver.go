// Package merge collapses groups of equivalent classes into a single
// representative class.
package merge

import (
	"context"
	"sort"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/reasoner"
	"github.com/ppiankov/ontomerge/internal/score"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"go.uber.org/zap"
)

// EquivalenceResolver merges every equivalence group the reasoner reports
type EquivalenceResolver struct {
	scores    *score.Set
	preserved score.PrefixSet
	logger    *zap.SugaredLogger
}

// Option configures an EquivalenceResolver
type Option func(*EquivalenceResolver)

// WithScores sets the identity and annotation priority tables
func WithScores(s *score.Set) Option {
	return func(r *EquivalenceResolver) {
		if s != nil {
			r.scores = s
		}
	}
}

// WithPreserved sets the prefixes whose classes are never absorbed
func WithPreserved(p score.PrefixSet) Option {
	return func(r *EquivalenceResolver) {
		r.preserved = p
	}
}

// WithLogger injects a logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *EquivalenceResolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewEquivalenceResolver creates a resolver. Without options every prefix
// scores the minimum and representatives are chosen by identifier.
func NewEquivalenceResolver(opts ...Option) *EquivalenceResolver {
	r := &EquivalenceResolver{
		scores:    score.NewSet(),
		preserved: score.NewPrefixSet(),
		logger:    logger.ComponentLogger("merge"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes what Merge changed
type Result struct {
	Reasoner string
	Groups   []model.GroupResult
	Stats    model.Stats
	Signals  []model.Signal
}

// Merge checks s with a reasoner built by factory and collapses each
// equivalence group into its representative. Nothing is mutated when the
// check fails. Groups are processed one at a time; an unexpected store error
// stops the run with earlier groups already merged.
func (r *EquivalenceResolver) Merge(ctx context.Context, s ontology.Store, factory reasoner.Factory) (*Result, error) {
	rs, err := reasoner.Check(ctx, s, factory)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Reasoner: rs.Name(),
		Stats: model.Stats{
			NodesBefore: s.NodeCount(),
			EdgesBefore: s.EdgeCount(),
		},
	}

	groups := reasoner.Partition(rs, s.Nodes())
	r.logger.Debugw("Equivalence groups computed",
		logger.FieldOperation, model.OpMergeEquivalentSets,
		logger.FieldCount, len(groups),
	)

	for _, g := range groups {
		gr, err := r.mergeGroup(s, g, res)
		if err != nil {
			return res, errors.Wrapf(err, "merge group %v", g)
		}
		res.Groups = append(res.Groups, gr)
	}

	res.Stats.NodesAfter = s.NodeCount()
	res.Stats.EdgesAfter = s.EdgeCount()

	r.logger.Infow("Equivalence merge complete",
		logger.FieldOperation, model.OpMergeEquivalentSets,
		"groups", len(res.Groups),
		"absorbed", res.Stats.NodesAbsorbed,
		"preserved", res.Stats.NodesPreserved,
		"edges_dropped", res.Stats.EdgesDropped,
	)
	return res, nil
}

func (r *EquivalenceResolver) mergeGroup(s ontology.Store, group []string, res *Result) (model.GroupResult, error) {
	var members []string
	for _, id := range group {
		if s.HasNode(id) {
			members = append(members, id)
		}
	}
	gr := r.splitGroup(members)
	if len(gr.Absorbed) == 0 && len(gr.Preserved) == 0 {
		return gr, nil
	}

	r.logger.Debugw("Merging group",
		logger.FieldGroup, members,
		logger.FieldRepresentative, gr.Representative,
	)

	if len(gr.Absorbed) > 0 {
		if err := r.mergeAnnotations(s, gr.Representative, gr.Absorbed); err != nil {
			return gr, err
		}
	}

	absorbed := make(map[string]bool, len(gr.Absorbed))
	for _, id := range gr.Absorbed {
		absorbed[id] = true
	}
	rename := func(id string) string {
		if absorbed[id] {
			return gr.Representative
		}
		return id
	}
	for _, id := range gr.Absorbed {
		if err := r.rewriteEdges(s, id, rename, res); err != nil {
			return gr, err
		}
	}

	for _, id := range gr.Preserved {
		linked, err := linkEquivalent(s, id, gr.Representative)
		if err != nil {
			return gr, err
		}
		res.Stats.NodesPreserved++
		res.Signals = append(res.Signals, model.Signal{
			Type:        model.SignalPreservedMember,
			Severity:    model.SeverityInfo,
			Description: id + " is preserved and kept equivalent to " + gr.Representative,
			Data: map[string]interface{}{
				"node":           id,
				"representative": gr.Representative,
				"edge_added":     linked,
			},
		})
	}

	for _, id := range gr.Absorbed {
		if err := s.RemoveNode(id); err != nil {
			return gr, errors.Wrapf(err, "remove absorbed %s", id)
		}
		res.Stats.NodesAbsorbed++
	}
	return gr, nil
}

// rewriteEdges moves every edge mentioning id onto the representative
func (r *EquivalenceResolver) rewriteEdges(s ontology.Store, id string, rename func(string) string, res *Result) error {
	for _, e := range s.Edges(id) {
		s.RemoveEdge(e)
		moved := e.Rename(rename)

		if moved.IsSelfLoop() {
			r.logger.Debugw("Dropping self-loop", logger.FieldEdge, moved.Key())
			res.Stats.EdgesDropped++
			continue
		}
		added, err := s.AddEdge(moved)
		if err != nil {
			if !errors.IsStructuralError(err) {
				return errors.Wrapf(err, "rewrite %s", e.Key())
			}
			r.logger.Warnw("Dropping edge rejected by store",
				logger.FieldEdge, moved.Key(),
				logger.FieldError, err.Error(),
			)
			res.Stats.EdgesDropped++
			res.Signals = append(res.Signals, model.Signal{
				Type:        model.SignalDroppedEdge,
				Severity:    model.SeverityWarning,
				Description: "edge dropped during rewrite: " + moved.Key(),
				Data: map[string]interface{}{
					"original": e.Key(),
					"reason":   err.Error(),
				},
			})
			continue
		}
		if added {
			res.Stats.EdgesRewritten++
		}
	}
	return nil
}

// linkEquivalent adds id equivalentClass rep unless the two are already
// linked in either direction
func linkEquivalent(s ontology.Store, id, rep string) (bool, error) {
	fwd := model.Edge{Subject: id, Predicate: vocabulary.EquivalentTo, Object: rep}
	bwd := model.Edge{Subject: rep, Predicate: vocabulary.EquivalentTo, Object: id}
	for _, e := range s.Outgoing(rep) {
		if e.Key() == bwd.Key() {
			return false, nil
		}
	}
	added, err := s.AddEdge(fwd)
	if err != nil {
		return false, errors.Wrapf(err, "link preserved %s", id)
	}
	return added, nil
}

// splitGroup picks the representative and sorts the other members into
// absorbed and preserved
func (r *EquivalenceResolver) splitGroup(members []string) model.GroupResult {
	ranked := append([]string(nil), members...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return r.outranks(ranked[i], ranked[j])
	})

	gr := model.GroupResult{}
	if len(ranked) == 0 {
		return gr
	}
	gr.Representative = ranked[0]
	for _, id := range ranked[1:] {
		if r.preserved.Contains(id) {
			gr.Preserved = append(gr.Preserved, id)
		} else {
			gr.Absorbed = append(gr.Absorbed, id)
		}
	}
	sort.Strings(gr.Absorbed)
	sort.Strings(gr.Preserved)
	return gr
}

// outranks orders candidates by identity score, then preserved before
// unpreserved, then identifier
func (r *EquivalenceResolver) outranks(a, b string) bool {
	sa, _ := r.scores.Identity.Score(a)
	sb, _ := r.scores.Identity.Score(b)
	if sa != sb {
		return sa > sb
	}
	pa, pb := r.preserved.Contains(a), r.preserved.Contains(b)
	if pa != pb {
		return pa
	}
	return a < b
}
