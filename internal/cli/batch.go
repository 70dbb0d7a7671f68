package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/ontomerge/internal/cache"
	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/pipeline"
	"github.com/ppiankov/ontomerge/internal/worker"
	"github.com/spf13/cobra"
)

var (
	reportDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Run many merge jobs from a manifest in parallel",
	Long: `Batch runs the jobs listed in a YAML manifest concurrently. Every job reads
and writes its own ontology; priorities, species parameters and the reasoner
come from the configuration and apply to all jobs. Reasoner results are
cached, so jobs over identical ontologies classify them once.

Manifest:
  operation: merge-equivalent-sets   # default for jobs that do not set one
  jobs:
    - input: uberon-ext.yaml
      output: out/uberon.yaml
    - operation: merge-species
      input: uberon.yaml
      output: out/human.yaml
      taxon: NCBITaxon:9606

Example:
  ontomerge batch jobs.yaml --workers 4 --report-dir ./reports`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindBatchFlags,
	RunE:    runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	f := batchCmd.Flags()
	f.IntP("workers", "w", 0, "number of concurrent jobs (default: number of CPUs)")
	f.StringP("reasoner", "r", "", "reasoner for all jobs")
	f.StringVar(&reportDir, "report-dir", "", "write a JSON and Markdown report per job into this directory")
	f.DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

// bindBatchFlags binds only the flags that were set, so an unset --workers
// does not override the configured pool size with zero
func bindBatchFlags(cmd *cobra.Command, args []string) error {
	keys := make(map[string]string)
	for key, name := range map[string]string{
		"concurrency.workers": "workers",
		"reasoner.name":       "reasoner",
	} {
		if cmd.Flags().Changed(name) {
			keys[key] = name
		}
	}
	return bindFlags(cmd, keys)
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c := cache.NewMemoryCache(cfg.Reasoner.CacheTTL, 2*cfg.Reasoner.CacheTTL)
	p, err := pipeline.NewPipeline(cfg, pipeline.WithCache(c), pipeline.WithSummaryWriter(os.Stderr))
	if err != nil {
		return err
	}

	if reportDir != "" {
		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return errors.Wrap(err, "create report directory")
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Manifest:   %s\n", manifest)
	fmt.Fprintf(os.Stderr, "  Workers:    %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Reasoner:   %s\n", cfg.Reasoner.Name)
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, manifest)
	if err != nil {
		return err
	}

	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Job.Input, result.Error)
			continue
		}

		var jsonPath, mdPath string
		if reportDir != "" {
			slug := fmt.Sprintf("%03d-%s", result.Index, sanitizeFilename(result.Job.Input))
			jsonPath = filepath.Join(reportDir, slug+".json")
			mdPath = filepath.Join(reportDir, slug+".md")
		}
		if err := p.RenderReport(result.Report, jsonPath, mdPath, cfg.Output.Verbose); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Job.Input, err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d jobs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(results)-failures)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "\n")

	if failures > 0 {
		return errors.Newf("%d of %d jobs failed", failures, len(results))
	}
	return nil
}

// sanitizeFilename turns an input path into a report file stem
func sanitizeFilename(s string) string {
	s = filepath.Base(s)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	s = strings.NewReplacer(
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	).Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
