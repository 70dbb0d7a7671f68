package model

import (
	"runtime"
	"time"

	"github.com/ppiankov/ontomerge/internal/vocabulary"
)

// Config is the complete ontomerge configuration.
// Field tags serve both viper (mapstructure) and `config show` (yaml).
type Config struct {
	Reasoner    ReasonerConfig    `yaml:"reasoner" mapstructure:"reasoner"`
	Equivalence EquivalenceConfig `yaml:"equivalence" mapstructure:"equivalence"`
	Species     SpeciesConfig     `yaml:"species" mapstructure:"species"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// ReasonerConfig selects the reasoner and its result cache lifetime
type ReasonerConfig struct {
	Name     string        `yaml:"name" mapstructure:"name"`
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// EquivalenceConfig holds the priority lists for merge-equivalent-sets.
// Each entry is PREFIX or PREFIX=SCORE; earlier entries rank higher.
type EquivalenceConfig struct {
	IRIPriority        []string `yaml:"iri_priority" mapstructure:"iri_priority"`
	LabelPriority      []string `yaml:"label_priority" mapstructure:"label_priority"`
	CommentPriority    []string `yaml:"comment_priority" mapstructure:"comment_priority"`
	DefinitionPriority []string `yaml:"definition_priority" mapstructure:"definition_priority"`
	Preserve           []string `yaml:"preserve" mapstructure:"preserve"`
}

// SpeciesConfig holds the unfolding parameters for merge-species
type SpeciesConfig struct {
	Taxon                  string   `yaml:"taxon,omitempty" mapstructure:"taxon"`
	Property               string   `yaml:"property" mapstructure:"property"`
	Suffix                 string   `yaml:"suffix" mapstructure:"suffix"`
	IncludeProperties      []string `yaml:"include_properties" mapstructure:"include_properties"`
	TranslateIntersections bool     `yaml:"translate_intersections" mapstructure:"translate_intersections"`
}

// ConcurrencyConfig bounds the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls serialisation and reporting
type OutputConfig struct {
	Format     string `yaml:"format,omitempty" mapstructure:"format"` // yaml, json, toml; empty = from file extension
	ReportJSON string `yaml:"report_json,omitempty" mapstructure:"report_json"`
	ReportMD   string `yaml:"report_md,omitempty" mapstructure:"report_md"`
	Verbose    bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LoggingConfig selects the log encoder
type LoggingConfig struct {
	JSON bool `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Reasoner: ReasonerConfig{
			Name:     "structural",
			CacheTTL: 10 * time.Minute,
		},
		Equivalence: EquivalenceConfig{},
		Species: SpeciesConfig{
			Property: vocabulary.PartOf,
			Suffix:   "species specific",
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
	}
}
