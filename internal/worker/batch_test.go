package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/pipeline"
)

// MockRunner implements Runner
type MockRunner struct {
	FailInput string

	mu   sync.Mutex
	seen []string
}

func (m *MockRunner) Run(ctx context.Context, job pipeline.Job) (*model.Report, error) {
	time.Sleep(5 * time.Millisecond) // Simulate work
	m.mu.Lock()
	m.seen = append(m.seen, job.Input)
	m.mu.Unlock()
	if job.Input == m.FailInput {
		return nil, errors.New("merge error")
	}
	return &model.Report{Operation: job.Operation, Input: job.Input}, nil
}

func jobs(inputs ...string) []pipeline.Job {
	out := make([]pipeline.Job, len(inputs))
	for i, in := range inputs {
		out[i] = pipeline.Job{Operation: model.OpMergeEquivalentSets, Input: in}
	}
	return out
}

func TestBatchProcessor_ProcessJobs(t *testing.T) {
	runner := &MockRunner{}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessJobs(context.Background(), jobs("a.yaml", "b.yaml", "c.yaml"))

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("expected results in job order, got index %d at %d", res.Index, i)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Job.Input, res.Error)
		}
		if res.Report == nil || res.Report.Input != res.Job.Input {
			t.Errorf("expected report for %s", res.Job.Input)
		}
	}
}

func TestBatchProcessor_ManyJobsDoNotBlock(t *testing.T) {
	runner := &MockRunner{}
	processor := NewBatchProcessor(runner, 1)

	inputs := make([]string, 25)
	for i := range inputs {
		inputs[i] = filepath.Join("in", string(rune('a'+i))+".yaml")
	}

	done := make(chan []*JobResult)
	go func() { done <- processor.ProcessJobs(context.Background(), jobs(inputs...)) }()

	select {
	case results := <-done:
		if len(results) != len(inputs) {
			t.Errorf("expected %d results, got %d", len(inputs), len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch with more jobs than the pool buffers did not finish")
	}
}

func TestBatchProcessor_ProcessJobs_Error(t *testing.T) {
	runner := &MockRunner{FailInput: "b.yaml"}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessJobs(context.Background(), jobs("a.yaml", "b.yaml"))
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != nil {
		t.Errorf("expected a.yaml to succeed, got %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected error for b.yaml, got nil")
	}
	if results[1].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessor_ProcessJobs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockRunner{}, 2)

	results := processor.ProcessJobs(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestJobResult_GetError(t *testing.T) {
	r1 := &JobResult{Job: pipeline.Job{Input: "a.yaml"}}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("merge failed")
	r2 := &JobResult{Job: pipeline.Job{Input: "a.yaml"}, Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadManifest(t *testing.T) {
	path := writeManifest(t, `operation: merge-equivalent-sets
jobs:
  - input: uberon.yaml
    output: out/uberon.yaml
  - operation: merge-species
    input: /data/anatomy.json
    output: /data/human.json
    taxon: NCBITaxon:9606
`)

	m, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if len(m.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(m.Jobs))
	}

	dir := filepath.Dir(path)
	first := m.Jobs[0]
	if first.Operation != model.OpMergeEquivalentSets {
		t.Errorf("expected default operation, got %q", first.Operation)
	}
	if first.Input != filepath.Join(dir, "uberon.yaml") {
		t.Errorf("expected input relative to manifest, got %s", first.Input)
	}
	if first.Output != filepath.Join(dir, "out", "uberon.yaml") {
		t.Errorf("expected output relative to manifest, got %s", first.Output)
	}

	second := m.Jobs[1]
	if second.Operation != model.OpMergeSpecies || second.Taxon != "NCBITaxon:9606" {
		t.Errorf("unexpected second job: %+v", second)
	}
	if second.Input != "/data/anatomy.json" {
		t.Errorf("expected absolute path unchanged, got %s", second.Input)
	}
}

func TestReadManifest_Errors(t *testing.T) {
	tests := map[string]string{
		"missing input":    "jobs:\n  - output: a.yaml\n",
		"duplicate output": "jobs:\n  - {input: a.yaml, output: o.yaml}\n  - {input: b.yaml, output: o.yaml}\n",
		"invalid yaml":     "jobs: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadManifest(writeManifest(t, content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := ReadManifest("no_such_manifest.yaml"); err == nil {
		t.Error("expected error for non-existent manifest, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeManifest(t, "operation: merge-equivalent-sets\njobs:\n  - input: a.yaml\n  - input: b.yaml\n")

	runner := &MockRunner{}
	results, err := NewBatchProcessor(runner, 2).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestReadManifest_DefaultOperation(t *testing.T) {
	m, err := ReadManifest(writeManifest(t, "jobs:\n  - input: a.yaml\n"))
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if m.Jobs[0].Operation != model.OpMergeEquivalentSets {
		t.Errorf("expected %s, got %q", model.OpMergeEquivalentSets, m.Jobs[0].Operation)
	}
}
