package worker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// Runner runs one merge job
type Runner interface {
	Run(ctx context.Context, job pipeline.Job) (*model.Report, error)
}

// MergeJob adapts a pipeline job to the pool
type MergeJob struct {
	Index  int
	Job    pipeline.Job
	Runner Runner
}

// Execute executes the merge job
func (j *MergeJob) Execute(ctx context.Context) Result {
	report, err := j.Runner.Run(ctx, j.Job)
	return &JobResult{
		Index:  j.Index,
		Job:    j.Job,
		Report: report,
		Error:  err,
	}
}

// JobResult represents the result of a merge job
type JobResult struct {
	Index  int
	Job    pipeline.Job
	Report *model.Report
	Error  error
}

// GetError returns the error from the job result
func (r *JobResult) GetError() error {
	return r.Error
}

// Manifest lists the jobs of a batch run
type Manifest struct {
	// Operation is used by jobs that do not name one.
	Operation string         `yaml:"operation"`
	Jobs      []pipeline.Job `yaml:"jobs"`
}

// BatchProcessor processes multiple merge jobs concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessJobs runs jobs concurrently and returns their results in job order.
// One failing job does not stop the others. Jobs not yet started when ctx is
// cancelled are skipped and have no result.
func (b *BatchProcessor) ProcessJobs(ctx context.Context, jobs []pipeline.Job) []*JobResult {
	if len(jobs) == 0 {
		return []*JobResult{}
	}
	log := logger.ComponentLogger("worker")

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, job := range jobs {
			if !pool.Submit(&MergeJob{Index: i, Job: job, Runner: b.runner}) {
				return
			}
		}
	}()

	results := make([]*JobResult, 0, len(jobs))
	for r := range pool.Results() {
		jr := r.(*JobResult)
		if jr.Error != nil {
			log.Warnw("Job failed", logger.FieldJobID, jr.Index, logger.FieldFile, jr.Job.Input, logger.FieldError, jr.Error.Error())
		} else {
			log.Debugw("Job finished", logger.FieldJobID, jr.Index, logger.FieldFile, jr.Job.Input)
		}
		results = append(results, jr)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// ProcessFile reads a manifest and processes its jobs concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*JobResult, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	return b.ProcessJobs(ctx, m.Jobs), nil
}

// ReadManifest parses a YAML manifest. Relative paths are resolved against
// the manifest's directory. Two jobs may not write the same output.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	if m.Operation == "" {
		m.Operation = model.OpMergeEquivalentSets
	}

	base := filepath.Dir(path)
	outputs := make(map[string]int, len(m.Jobs))
	for i := range m.Jobs {
		job := &m.Jobs[i]
		if job.Operation == "" {
			job.Operation = m.Operation
		}
		if job.Input == "" {
			return nil, errors.NewConfigurationError("manifest", path, "job "+strconv.Itoa(i)+" has no input")
		}
		job.Input = resolve(base, job.Input)
		if job.Output == "" {
			continue
		}
		job.Output = resolve(base, job.Output)
		if prev, dup := outputs[job.Output]; dup {
			return nil, errors.WithDetailf(
				errors.NewConfigurationError("manifest", job.Output, "output written by more than one job"),
				"jobs %d and %d", prev, i)
		}
		outputs[job.Output] = i
	}
	return &m, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
