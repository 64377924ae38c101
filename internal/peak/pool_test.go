package peak

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func dailyJobs(n int) []Job {
	start := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	jobs := make([]Job, n)
	for i := range jobs {
		day := start.AddDate(0, 0, i)
		jobs[i] = Job{
			Key: day.Format("2006-01-02"),
			Query: Query{
				Observer: seoul,
				Target:   FixedTarget{Label: "Orion", RAdeg: 83, DecDeg: 5},
				Start:    day,
				End:      day.Add(23 * time.Hour),
			},
		}
	}
	return jobs
}

func TestPoolSearchBatch(t *testing.T) {
	jobs := dailyJobs(12)
	pool := NewPool(4, nil)

	results := pool.SearchBatch(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	for i, r := range results {
		if r.Key != jobs[i].Key {
			t.Fatalf("results[%d].Key = %q, want %q", i, r.Key, jobs[i].Key)
		}
		if r.Err != nil {
			t.Errorf("%s: %v", r.Key, r.Err)
			continue
		}
		want, _ := Search(jobs[i].Query)
		if diff := cmp.Diff(want, r.Result); diff != "" {
			t.Errorf("%s: pooled result differs from direct search:\n%s", r.Key, diff)
		}
	}
}

func TestPoolKeepsErrors(t *testing.T) {
	jobs := dailyJobs(3)
	jobs[1].Query.Target = nil

	results := NewPool(2, nil).SearchBatch(context.Background(), jobs)
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Key)
		}
	}
	if len(failed) != 1 || failed[0] != jobs[1].Key {
		t.Errorf("failed keys = %v, want [%s]", failed, jobs[1].Key)
	}
}

func TestPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan []JobResult)
	go func() { done <- NewPool(2, nil).SearchBatch(ctx, dailyJobs(50)) }()

	select {
	case results := <-done:
		if len(results) > 50 {
			t.Errorf("got %d results for 50 jobs", len(results))
		}
	case <-time.After(30 * time.Second):
		t.Fatal("SearchBatch did not return after cancellation")
	}
}

func TestNewPoolMinimumWorkers(t *testing.T) {
	for _, n := range []int{-1, 0} {
		if got := NewPool(n, nil).Workers(); got != 1 {
			t.Errorf("NewPool(%d).Workers() = %d, want 1", n, got)
		}
	}
}

func TestPoolEmpty(t *testing.T) {
	if got := NewPool(2, nil).SearchBatch(context.Background(), nil); got != nil {
		t.Errorf("empty batch = %v", got)
	}
}
