// Package queue serializes scrape jobs. The shared browser and datastore
// connection are not designed for concurrent use, so the queue enforces a
// single in-flight job at a time; BatchSize controls how many pending jobs
// one ExecuteBatch call drains, not parallelism.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alwedo/jobscout/datasource"
	"github.com/alwedo/jobscout/metrics"
	"github.com/alwedo/jobscout/scraper"
	"github.com/alwedo/jobscout/scraper/platform"
	"github.com/google/uuid"
)

// ErrQueueState marks an invariant violation: executing an empty queue or
// registering an execution while the queue is idle. Never expected in
// correct operation.
var ErrQueueState = errors.New("queue: invalid queue state")

// Status is the lifecycle state of a queued job. Jobs only move forward:
// queued -> running -> finished.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
)

// Outcome reports how an executed job ended, independent of its lifecycle
// status.
type Outcome string

const (
	OutcomeNone    Outcome = "none"
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Params is the process-wide queue configuration, fixed at construction.
type Params struct {
	BatchSize  int
	ConnString string
}

type job struct {
	id      string
	scraper *scraper.JobScraper
	status  Status
	outcome Outcome
	done    chan error
}

// JobStatus is the read-only view of one queued job for status reporting.
type JobStatus struct {
	ID      string   `json:"id"`
	Role    string   `json:"role"`
	Tags    []string `json:"tags"`
	Status  Status   `json:"status"`
	Outcome Outcome  `json:"outcome"`
}

// Queue holds pending and executed scrape jobs. Construct one per process
// with New and inject it wherever jobs are submitted; there is no global
// instance.
type Queue struct {
	logger    *slog.Logger
	params    Params
	platforms []platform.Platform

	// execMu serializes ExecuteBatch callers; mu guards the lists.
	execMu sync.Mutex
	mu     sync.Mutex

	ds      datasource.Datasource
	pending []*job
	history []*job
	idle    bool
}

// New builds the queue with its fixed configuration, the active datasource
// and the platform strategies injected into every dispatched job.
func New(logger *slog.Logger, params Params, ds datasource.Datasource, platforms ...platform.Platform) *Queue {
	return &Queue{
		logger:    logger,
		params:    params,
		platforms: platforms,
		ds:        ds,
		idle:      true,
	}
}

// SetDatasource replaces the datasource used by subsequently dispatched
// jobs. Jobs already running keep the reference they were dispatched with.
func (q *Queue) SetDatasource(ds datasource.Datasource) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ds = ds
}

// Add wraps the scraper with a generated id and appends it to the pending
// list. Never blocks; execution happens on the next ExecuteBatch.
func (q *Queue) Add(s *scraper.JobScraper) string {
	j := &job{
		id:      uuid.NewString(),
		scraper: s,
		status:  StatusQueued,
		outcome: OutcomeNone,
		done:    make(chan error, 1),
	}

	q.mu.Lock()
	q.pending = append(q.pending, j)
	q.mu.Unlock()

	q.logger.Info("job queued",
		slog.String("id", j.id),
		slog.String("role", s.Params().Role))
	return j.id
}

// ExecuteBatch drains up to BatchSize pending jobs, strictly one at a time.
// It fails with ErrQueueState when there is nothing pending and nothing
// running. A dispatch failure is wrapped and returned without retrying;
// re-adding the job is the caller's decision.
func (q *Queue) ExecuteBatch(ctx context.Context) error {
	q.execMu.Lock()
	defer q.execMu.Unlock()

	q.mu.Lock()
	empty := len(q.pending) == 0 && q.idle
	q.mu.Unlock()
	if empty {
		return fmt.Errorf("queue should not be empty in Queue.ExecuteBatch: %w", ErrQueueState)
	}

	for range q.params.BatchSize {
		dispatched, err := q.executeHead(ctx)
		if err != nil {
			return fmt.Errorf("an error occurred while scraping the data in Queue.ExecuteBatch: %w", err)
		}
		if !dispatched {
			break
		}
	}
	return nil
}

// executeHead dispatches the head of the pending list and awaits its
// completion. Returns false when nothing is pending.
func (q *Queue) executeHead(ctx context.Context) (bool, error) {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return false, nil
	}
	j := q.pending[0]
	q.pending = q.pending[1:]
	j.status = StatusRunning
	q.idle = false
	q.history = append(q.history, j)

	j.scraper.SetDatasource(q.ds)
	for _, p := range q.platforms {
		j.scraper.RegisterPlatform(p)
	}
	q.mu.Unlock()

	q.logger.Info("job dispatched", slog.String("id", j.id))

	go func() {
		j.done <- j.scraper.Init(ctx)
	}()
	err := <-j.done

	q.mu.Lock()
	if err != nil {
		j.outcome = OutcomeError
	} else {
		j.outcome = OutcomeSuccess
	}
	q.mu.Unlock()
	metrics.JobsExecuted.WithLabelValues(string(j.outcome)).Inc()

	if rerr := q.RegisterExecution(j.id); rerr != nil {
		return true, rerr
	}
	return true, err
}

// RegisterExecution marks the job finished and recomputes the idle flag.
// It fails with ErrQueueState when the queue considers itself idle, which
// guards against duplicate completion signals.
func (q *Queue) RegisterExecution(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.idle {
		return fmt.Errorf("queue should not be idle in Queue.RegisterExecution: %w", ErrQueueState)
	}

	for _, j := range q.history {
		if j.id == id {
			j.status = StatusFinished
			break
		}
	}

	q.idle = true
	for _, j := range q.history {
		if j.status == StatusRunning {
			q.idle = false
			break
		}
	}

	q.logger.Info("job finished", slog.String("id", id))
	return nil
}

// Status returns a snapshot of every known job, pending first, then the
// dispatch history in order.
func (q *Queue) Status() []JobStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]JobStatus, 0, len(q.pending)+len(q.history))
	for _, j := range q.pending {
		out = append(out, q.view(j))
	}
	for _, j := range q.history {
		out = append(out, q.view(j))
	}
	return out
}

func (q *Queue) view(j *job) JobStatus {
	p := j.scraper.Params()
	return JobStatus{
		ID:      j.id,
		Role:    p.Role,
		Tags:    p.Tags,
		Status:  j.status,
		Outcome: j.outcome,
	}
}
