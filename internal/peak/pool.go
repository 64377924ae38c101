package peak

import (
	"context"
	"sync"
	"time"

	"github.com/litescript/ls-skywatch/internal/logging"
)

// Job is one search tagged with the key its result is reported under.
type Job struct {
	Key   string
	Query Query
}

// JobResult is the outcome of one Job. Exactly one of Result and Err is set.
type JobResult struct {
	Key    string
	Result Result
	Err    error
}

// Pool manages a fixed number of goroutines running searches in parallel.
type Pool struct {
	workers int
	log     *logging.Logger
}

// NewPool creates a pool with the given number of workers (at least one).
func NewPool(workers int, log *logging.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Pool{workers: workers, log: log}
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// SearchBatch runs every job and returns one result per job that ran, in
// completion order. Jobs not started before ctx is done are dropped.
func (p *Pool) SearchBatch(ctx context.Context, jobs []Job) []JobResult {
	if len(jobs) == 0 {
		return nil
	}
	start := time.Now()

	in := make(chan Job, p.workers*2)
	out := make(chan JobResult, p.workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range in {
				res, err := Search(job.Query)
				select {
				case out <- JobResult{Key: job.Key, Result: res, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Feed jobs in a goroutine.
	go func() {
		defer close(in)
		for _, job := range jobs {
			select {
			case in <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close results when all workers are done.
	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]JobResult, 0, len(jobs))
	var failed int
	for r := range out {
		if r.Err != nil {
			failed++
		}
		results = append(results, r)
	}

	p.log.Debug("searched %d/%d jobs (%d failed) on %d workers in %v",
		len(results), len(jobs), failed, p.workers, time.Since(start).Round(time.Millisecond))
	return results
}
