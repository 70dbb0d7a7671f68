// Package unfold materialises taxon-specific copies of the part of an
// ontology that is parameterised by an unfolding property.
//
// Given a taxon such as NCBITaxon:9606, every class related to the taxon or
// to one of its generic superclasses through the unfolding property
// (transitively, in reverse) gets a copy that is a subclass of the original,
// carries a suffixed label and points at the concrete taxon.
package unfold

import (
	"context"
	"sort"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/reasoner"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"go.uber.org/zap"
)

// DefaultSuffix is appended to copy labels when none is configured
const DefaultSuffix = "species specific"

// Spec parameterises one unfolding run
type Spec struct {
	Taxon    string
	Property string
	Suffix   string
	// IncludeProperties are object properties whose edges are carried onto
	// copies in addition to the unfolding property.
	IncludeProperties []string
	// TranslateIntersections rewrites intersection axioms of originals into
	// one edge per conjunct on the copy.
	TranslateIntersections bool
}

func (sp Spec) withDefaults() Spec {
	if sp.Property == "" {
		sp.Property = vocabulary.PartOf
	}
	if sp.Suffix == "" {
		sp.Suffix = DefaultSuffix
	}
	return sp
}

// Validate checks sp against the ontology it will run on
func (sp Spec) Validate(s ontology.Store) error {
	if sp.Taxon == "" {
		return errors.NewConfigurationError("taxon", "", "a target taxon is required")
	}
	if !s.HasNode(sp.Taxon) {
		return errors.WithHint(
			errors.NewConfigurationError("taxon", sp.Taxon, "class not found in ontology"),
			"the taxon must be declared as a class in the input ontology")
	}
	if !s.HasProperty(sp.Property) {
		return errors.WithHint(
			errors.NewConfigurationError("property", sp.Property, "object property not found in ontology"),
			"declare the property or use it in at least one axiom")
	}
	return nil
}

// TaxonUnfolder creates taxon-specific copies of an unfolding region
type TaxonUnfolder struct {
	logger *zap.SugaredLogger
}

// Option configures a TaxonUnfolder
type Option func(*TaxonUnfolder)

// WithLogger injects a logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(u *TaxonUnfolder) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewTaxonUnfolder creates an unfolder with the given options
func NewTaxonUnfolder(opts ...Option) *TaxonUnfolder {
	u := &TaxonUnfolder{logger: logger.ComponentLogger("unfold")}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Result describes what Merge changed
type Result struct {
	Reasoner string
	Copies   []model.CopyResult
	Stats    model.Stats
	Signals  []model.Signal
}

// Merge validates sp, checks s with a reasoner built by factory and splices
// the taxon-specific copies into s. Running it again for the same taxon
// rebuilds the existing copies instead of adding new ones.
func (u *TaxonUnfolder) Merge(ctx context.Context, s ontology.Store, factory reasoner.Factory, sp Spec) (*Result, error) {
	sp = sp.withDefaults()
	if err := sp.Validate(s); err != nil {
		return nil, err
	}
	for _, p := range sp.IncludeProperties {
		if !s.HasProperty(p) {
			u.logger.Warnw("Include property not used in ontology", logger.FieldProperty, p)
		}
	}

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

	naming := newNaming(sp.Taxon)
	seeds := placeholders(s, rs, sp.Taxon)
	region := collectRegion(s, sp.Property, seeds, naming)

	u.logger.Debugw("Unfolding region computed",
		logger.FieldTaxon, sp.Taxon,
		logger.FieldProperty, sp.Property,
		"placeholders", sortedKeys(seeds),
		logger.FieldCount, len(region),
	)

	if len(region) == 0 {
		res.Signals = append(res.Signals, model.Signal{
			Type:        model.SignalEmptyRegion,
			Severity:    model.SeverityWarning,
			Description: "no class is related to " + sp.Taxon + " through " + sp.Property,
			Data: map[string]interface{}{
				"taxon":    sp.Taxon,
				"property": sp.Property,
			},
		})
	}

	c := &copier{
		store:   s,
		spec:    sp,
		naming:  naming,
		region:  region,
		seeds:   seeds,
		include: make(map[string]bool, len(sp.IncludeProperties)),
		logger:  u.logger,
		result:  res,
	}
	for _, p := range sp.IncludeProperties {
		c.include[p] = true
	}

	originals := sortedKeys(region)
	for _, id := range originals {
		if err := c.declare(id); err != nil {
			return res, err
		}
	}
	for _, id := range originals {
		if err := c.fill(id); err != nil {
			return res, err
		}
	}

	res.Stats.NodesAfter = s.NodeCount()
	res.Stats.EdgesAfter = s.EdgeCount()

	u.logger.Infow("Species merge complete",
		logger.FieldOperation, model.OpMergeSpecies,
		logger.FieldTaxon, sp.Taxon,
		"created", res.Stats.CopiesCreated,
		"replaced", res.Stats.CopiesReplaced,
		"edges_dropped", res.Stats.EdgesDropped,
	)
	return res, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
