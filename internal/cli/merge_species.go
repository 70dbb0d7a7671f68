package cli

import (
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/pipeline"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"github.com/spf13/cobra"
)

var (
	speciesInput  string
	speciesOutput string
)

var mergeSpeciesCmd = &cobra.Command{
	Use:   model.OpMergeSpecies,
	Short: "Create taxon-specific copies of classes parameterised by a property",
	Long: `Runs the reasoner, then collects every class related to the target taxon,
or to one of its generic superclasses such as NCBITaxon:1, through the
unfolding property (part of by default), following the property backwards
transitively.

Each collected class gets a copy with the identifier
<class>-<taxon prefix>-<taxon id>. The copy is a subclass of the original,
its label carries the suffix, its unfolding-property edges point at the taxon
and at other copies, and edges over --include-property are carried along.
The generic classes are left as they are.

Running the command again for the same taxon rebuilds the existing copies.

Example:
  ontomerge merge-species -i uberon.yaml -o human.yaml -t NCBITaxon:9606 -s "human specific"
  ontomerge merge-species -i uberon.yaml -o mouse.yaml -t NCBITaxon:10090 -q RO:0002170 -x`,
	Args:    cobra.NoArgs,
	PreRunE: bindMergeSpeciesFlags,
	RunE:    runMergeSpecies,
}

var mergeSpeciesKeys = map[string]string{
	"species.taxon":                   "taxon",
	"species.property":                "property",
	"species.suffix":                  "suffix",
	"species.include_properties":      "include-property",
	"species.translate_intersections": "translate-oio-expr",
}

func init() {
	rootCmd.AddCommand(mergeSpeciesCmd)

	f := mergeSpeciesCmd.Flags()
	addOutputFlags(f, &speciesInput, &speciesOutput)
	f.StringP("taxon", "t", "", "target taxon class, e.g. NCBITaxon:9606")
	f.StringP("property", "p", vocabulary.PartOf, "unfolding object property")
	f.StringP("suffix", "s", "species specific", "suffix appended to copy labels")
	f.StringArrayP("include-property", "q", nil, "object property carried onto copies (repeatable)")
	f.BoolP("translate-oio-expr", "x", false, "rewrite intersection axioms into one edge per conjunct on copies")
}

func bindMergeSpeciesFlags(cmd *cobra.Command, args []string) error {
	return bindFlags(cmd, mergeKeys(outputKeys, mergeSpeciesKeys))
}

func runMergeSpecies(cmd *cobra.Command, args []string) error {
	if err := requireFlag("input", speciesInput); err != nil {
		return err
	}
	if err := requireFlag("output", speciesOutput); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireFlag("taxon", cfg.Species.Taxon); err != nil {
		return err
	}
	return runSingle(cmd.Context(), cfg, pipeline.Job{
		Operation: model.OpMergeSpecies,
		Input:     speciesInput,
		Output:    speciesOutput,
	})
}
