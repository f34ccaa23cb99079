// Package async provides the bounded worker pool batch callers use to
// throttle concurrent pipeline runs. The pipeline itself does no admission
// control; the shared LLM credential's rate limit is respected here.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkalu-dev/kyc-audit/constants"
	"github.com/mkalu-dev/kyc-audit/internal/pipeline"
)

// Job is the smallest useful unit: one image to push through the pipeline.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// JobResult pairs a job with its outcome.
type JobResult struct {
	Job    Job
	Status constants.RunStatus
	Result *pipeline.Result
	Err    error
}

// Pool runs jobs over a fixed number of workers. Each worker drives its own
// pipeline runs; there is no shared mutable state between documents.
type Pool struct {
	workers int
	orch    *pipeline.Orchestrator
	logger  *slog.Logger
}

func NewPool(workers int, orch *pipeline.Orchestrator, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{workers: workers, orch: orch, logger: logger}
}

// Process runs every path and returns results in input order. A cancelled
// context marks the remaining jobs failed without starting them.
func (p *Pool) Process(ctx context.Context, paths []string) []JobResult {
	jobs := make(chan int)
	results := make([]JobResult, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				job := Job{Path: paths[i], SubmittedAt: time.Now().UTC(), TraceID: uuid.New().String()}
				if err := ctx.Err(); err != nil {
					results[i] = JobResult{Job: job, Status: constants.RunStatusFailed, Err: err}
					continue
				}
				res, err := p.orch.Run(ctx, job.Path)
				if err != nil {
					results[i] = JobResult{Job: job, Status: constants.RunStatusFailed, Err: err}
					continue
				}
				results[i] = JobResult{Job: job, Status: constants.RunStatusDone, Result: res}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
