package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeResult implements Result
type fakeResult struct {
	input string
	err   error
}

func (r *fakeResult) GetError() error {
	return r.err
}

// fakeMerge stands in for a merge job: it sleeps for the configured time
// and optionally fails
type fakeMerge struct {
	input   string
	delay   time.Duration
	fail    bool
	onStart func()
	onEnd   func()
}

func (j *fakeMerge) Execute(ctx context.Context) Result {
	if j.onStart != nil {
		j.onStart()
	}
	if j.onEnd != nil {
		defer j.onEnd()
	}
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &fakeResult{input: j.input, err: ctx.Err()}
		}
	}
	if j.fail {
		return &fakeResult{input: j.input, err: errors.New("ontology is inconsistent")}
	}
	return &fakeResult{input: j.input}
}

// submitAll queues jobs from a goroutine so that the caller can drain
// results while the pool works
func submitAll(p *Pool, jobs []Job) {
	go func() {
		for _, j := range jobs {
			p.Submit(j)
		}
		p.Close()
	}()
}

func drain(p *Pool) []Result {
	var out []Result
	for r := range p.Results() {
		out = append(out, r)
	}
	return out
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{5, 5},
		{0, 1},
		{-3, 1},
	}
	for _, tt := range tests {
		if got := NewPool(context.Background(), tt.in).workers; got != tt.want {
			t.Errorf("NewPool(%d): expected %d workers, got %d", tt.in, tt.want, got)
		}
	}
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := NewPool(context.Background(), 3)
	pool.Start()

	var jobs []Job
	for i := 0; i < 40; i++ {
		jobs = append(jobs, &fakeMerge{input: "ontology.yaml"})
	}
	submitAll(pool, jobs)

	results := drain(pool)
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for _, r := range results {
		if r.GetError() != nil {
			t.Errorf("unexpected error: %v", r.GetError())
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 4
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var running, peak int32
	var mu sync.Mutex
	var jobs []Job
	for i := 0; i < 30; i++ {
		jobs = append(jobs, &fakeMerge{
			delay: 5 * time.Millisecond,
			onStart: func() {
				n := atomic.AddInt32(&running, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
			},
			onEnd: func() { atomic.AddInt32(&running, -1) },
		})
	}
	submitAll(pool, jobs)

	if got := len(drain(pool)); got != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), got)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > workers {
		t.Errorf("%d jobs ran at once with %d workers", peak, workers)
	}
}

func TestPool_WaitCollectsFailures(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&fakeMerge{input: "bad.yaml", fail: true})
	pool.Submit(&fakeMerge{input: "good.yaml"})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	var failed []string
	for _, r := range results {
		if r.GetError() != nil {
			failed = append(failed, r.(*fakeResult).input)
		}
	}
	if len(failed) != 1 || failed[0] != "bad.yaml" {
		t.Errorf("expected only bad.yaml to fail, got %v", failed)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&fakeMerge{})
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected Submit to refuse jobs after shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ShutdownInterruptsRunningJob(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&fakeMerge{
		delay:   time.Minute,
		onStart: func() { close(started) },
	})
	<-started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		drain(pool)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not interrupt the running job")
	}
}

func TestPool_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&fakeMerge{
		delay:   time.Minute,
		onStart: func() { close(started) },
	})
	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		drain(pool)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after parent cancellation")
	}

	if pool.Submit(&fakeMerge{}) {
		t.Error("expected Submit to refuse jobs after parent cancellation")
	}
}
