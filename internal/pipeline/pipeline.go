// Package pipeline runs one merge job end to end: load the ontology, run
// the requested algorithm behind the reasoning check, save the result and
// describe what happened in a report.
package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/ppiankov/ontomerge/internal/cache"
	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/merge"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/reasoner"
	"github.com/ppiankov/ontomerge/internal/unfold"
	"go.uber.org/zap"
)

// Pipeline orchestrates merge jobs sharing one configuration
type Pipeline struct {
	config   *model.Config
	factory  reasoner.Factory
	resolver *merge.EquivalenceResolver
	unfolder *unfold.TaxonUnfolder
	renderer *Renderer
	cache    cache.Cache
	logger   *zap.SugaredLogger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithCache memoises reasoner closures by ontology content
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithLogger injects a logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSummaryWriter redirects the console summary, stdout by default
func WithSummaryWriter(w io.Writer) Option {
	return func(p *Pipeline) {
		p.renderer = NewRenderer(w)
	}
}

// NewPipeline validates cfg and creates a pipeline. Configuration errors
// surface here, before any ontology is read.
func NewPipeline(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	factory, err := reasoner.Lookup(cfg.Reasoner.Name)
	if err != nil {
		return nil, err
	}
	scores, preserved, err := ScoreSet(cfg.Equivalence)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:   cfg,
		renderer: NewRenderer(os.Stdout),
		logger:   logger.ComponentLogger("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}

	name := cfg.Reasoner.Name
	if name == "" {
		name = reasoner.DefaultName
	}
	if p.cache != nil {
		factory = reasoner.Cached(p.cache, cfg.Reasoner.CacheTTL, name, factory)
	}
	p.factory = factory
	p.resolver = merge.NewEquivalenceResolver(
		merge.WithScores(scores),
		merge.WithPreserved(preserved),
	)
	p.unfolder = unfold.NewTaxonUnfolder()
	return p, nil
}

// Job is one unit of work
type Job struct {
	Operation string `yaml:"operation"`
	Input     string `yaml:"input"`
	// Output is where the merged ontology is written. Empty runs the job
	// without saving, which is useful to preview the report.
	Output string `yaml:"output"`
	// Taxon overrides species.taxon for merge-species jobs.
	Taxon string `yaml:"taxon,omitempty"`
}

// Run executes job and returns its report. The output file is only written
// when the merge succeeds.
func (p *Pipeline) Run(ctx context.Context, job Job) (*model.Report, error) {
	start := time.Now()
	log := p.logger.With(logger.FieldOperation, job.Operation, logger.FieldFile, job.Input)

	if job.Operation != model.OpMergeEquivalentSets && job.Operation != model.OpMergeSpecies {
		return nil, errors.NewConfigurationError("operation", job.Operation,
			"expected "+model.OpMergeEquivalentSets+" or "+model.OpMergeSpecies)
	}

	g, err := ontology.Load(job.Input, "")
	if err != nil {
		return nil, err
	}
	log.Debugw("Ontology loaded", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	report := &model.Report{
		Operation: job.Operation,
		Input:     job.Input,
		Output:    job.Output,
		StartedAt: start.UTC(),
	}

	switch job.Operation {
	case model.OpMergeEquivalentSets:
		res, err := p.resolver.Merge(ctx, g, p.factory)
		if err != nil {
			return nil, err
		}
		report.Reasoner = res.Reasoner
		report.Stats = res.Stats
		report.Groups = res.Groups
		report.Signals = res.Signals
	case model.OpMergeSpecies:
		spec := p.SpeciesSpec()
		if job.Taxon != "" {
			spec.Taxon = job.Taxon
		}
		res, err := p.unfolder.Merge(ctx, g, p.factory, spec)
		if err != nil {
			return nil, err
		}
		report.Reasoner = res.Reasoner
		report.Stats = res.Stats
		report.Copies = res.Copies
		report.Signals = res.Signals
	}

	if job.Output != "" {
		format, err := p.outputFormat(job.Output)
		if err != nil {
			return nil, err
		}
		if err := ontology.Save(g, job.Output, format); err != nil {
			return nil, err
		}
	}

	report.DurationMS = time.Since(start).Milliseconds()
	log.Infow("Job complete",
		logger.FieldDurationMS, report.DurationMS,
		"nodes_after", report.Stats.NodesAfter,
	)
	return report, nil
}

// SpeciesSpec returns the unfolding parameters from the configuration
func (p *Pipeline) SpeciesSpec() unfold.Spec {
	c := p.config.Species
	return unfold.Spec{
		Taxon:                  c.Taxon,
		Property:               c.Property,
		Suffix:                 c.Suffix,
		IncludeProperties:      append([]string(nil), c.IncludeProperties...),
		TranslateIntersections: c.TranslateIntersections,
	}
}

func (p *Pipeline) outputFormat(path string) (ontology.Format, error) {
	if p.config.Output.Format != "" {
		return ontology.ParseFormat(p.config.Output.Format)
	}
	return ontology.DetectFormat(path)
}

// RenderReport writes the requested report files and prints the console
// summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return errors.Wrap(err, "render JSON")
		}
		if verbose {
			p.logger.Infow("Wrote JSON report", logger.FieldFile, jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return errors.Wrap(err, "render markdown")
		}
		if verbose {
			p.logger.Infow("Wrote Markdown report", logger.FieldFile, mdPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}
